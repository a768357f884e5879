package pluginregistry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	pluginapi.DefaultHandler
}

func (fakeHandler) GenerateImage(context.Context, pluginapi.Settings, pluginapi.DeviceConfig) (pluginapi.Frame, error) {
	return pluginapi.Frame{}, nil
}

func (fakeHandler) RunActive(ctx context.Context, display pluginapi.Display, settings pluginapi.Settings, device pluginapi.DeviceConfig, provenance pluginapi.Provenance) error {
	<-ctx.Done()
	return nil
}

func TestMain(m *testing.M) {
	Register(pluginapi.Metadata{PluginID: "fake-plugin", DisplayName: "Fake", Version: "0.0.1"}, func() pluginapi.Handler {
		return fakeHandler{}
	})
	os.Exit(m.Run())
}

func TestNewConstructsRegisteredPlugin(t *testing.T) {
	r := New()
	handler, err := r.New("fake-plugin")
	require.NoError(t, err)
	require.NotNil(t, handler)
}

func TestNewUnknownPlugin(t *testing.T) {
	r := New()
	_, err := r.New("does-not-exist")
	require.Error(t, err)
	var target *ErrUnknownPlugin
	require.ErrorAs(t, err, &target)
}

func TestMetadataFallsBackToCompileTimeDefault(t *testing.T) {
	r := New()
	meta, ok := r.Metadata("fake-plugin")
	require.True(t, ok)
	require.Equal(t, "Fake", meta.DisplayName)
}

func TestLoadManifestsOverlaysDisplayName(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "fake-plugin")
	require.NoError(t, os.MkdirAll(pluginDir, 0o755))
	manifest := `{"plugin_id": "fake-plugin", "display_name": "Fake (manifest)", "version": "0.0.2"}`
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "plugin-info.json"), []byte(manifest), 0o644))

	r := New()
	require.NoError(t, r.LoadManifests(dir))

	meta, ok := r.Metadata("fake-plugin")
	require.True(t, ok)
	require.Equal(t, "Fake (manifest)", meta.DisplayName)
}

func TestLoadManifestsMissingDirIsNotAnError(t *testing.T) {
	r := New()
	require.NoError(t, r.LoadManifests(filepath.Join(t.TempDir(), "nope")))
}

func TestListMetadataIsSorted(t *testing.T) {
	r := New()
	list := r.ListMetadata()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		require.LessOrEqual(t, list[i-1].PluginID, list[i].PluginID)
	}
}
