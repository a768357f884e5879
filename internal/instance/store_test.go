package instance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sixthshift/artframed/internal/clockutil"
	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/sixthshift/artframed/internal/pluginregistry"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	pluginapi.DefaultHandler
	validateErr error
	enableCalls int
	disableCalls int
	changeCalls int
}

func (h *recordingHandler) ValidateSettings(pluginapi.Settings) error { return h.validateErr }
func (h *recordingHandler) OnEnable(pluginapi.Settings) error         { h.enableCalls++; return nil }
func (h *recordingHandler) OnDisable(pluginapi.Settings) error        { h.disableCalls++; return nil }
func (h *recordingHandler) OnSettingsChange(old, new pluginapi.Settings) error {
	h.changeCalls++
	return nil
}
func (h *recordingHandler) GenerateImage(context.Context, pluginapi.Settings, pluginapi.DeviceConfig) (pluginapi.Frame, error) {
	return pluginapi.Frame{}, nil
}
func (h *recordingHandler) RunActive(ctx context.Context, display pluginapi.Display, settings pluginapi.Settings, device pluginapi.DeviceConfig, provenance pluginapi.Provenance) error {
	<-ctx.Done()
	return nil
}

var shared = &recordingHandler{}

func newTestStore(t *testing.T) (*Store, *recordingHandler) {
	t.Helper()
	dir := t.TempDir()
	loc, _ := time.LoadLocation("UTC")
	vc := clockutil.NewVirtual(time.Date(2026, 7, 27, 9, 0, 0, 0, loc))

	h := &recordingHandler{}
	pluginregistry.Register(pluginapi.Metadata{PluginID: "recording-plugin"}, func() pluginapi.Handler {
		return h
	})

	reg := pluginregistry.New()
	store, err := Open(filepath.Join(dir, "plugin_instances.json"), vc, reg)
	require.NoError(t, err)
	return store, h
}

func TestCreateValidatesAndFiresOnEnable(t *testing.T) {
	store, h := newTestStore(t)

	inst, err := store.Create("recording-plugin", "My Instance", pluginapi.Settings{"a": 1})
	require.NoError(t, err)
	require.NotEmpty(t, inst.ID)
	require.True(t, inst.Enabled)
	require.Equal(t, 1, h.enableCalls)
}

func TestCreateRejectsInvalidSettings(t *testing.T) {
	store, h := newTestStore(t)
	h.validateErr = assertErr{"bad settings"}

	_, err := store.Create("recording-plugin", "X", pluginapi.Settings{})
	require.Error(t, err)
	require.Equal(t, 0, h.enableCalls)
}

func TestUpdateSettingsFiresOnSettingsChange(t *testing.T) {
	store, h := newTestStore(t)
	inst, err := store.Create("recording-plugin", "X", pluginapi.Settings{"a": 1})
	require.NoError(t, err)

	_, err = store.Update(inst.ID, nil, pluginapi.Settings{"a": 2})
	require.NoError(t, err)
	require.Equal(t, 1, h.changeCalls)
}

func TestDisableThenEnableFiresHooksOnce(t *testing.T) {
	store, h := newTestStore(t)
	inst, err := store.Create("recording-plugin", "X", pluginapi.Settings{})
	require.NoError(t, err)
	require.Equal(t, 1, h.enableCalls)

	_, err = store.Disable(inst.ID)
	require.NoError(t, err)
	require.Equal(t, 1, h.disableCalls)

	// Disabling again is a no-op: no second callback.
	_, err = store.Disable(inst.ID)
	require.NoError(t, err)
	require.Equal(t, 1, h.disableCalls)

	_, err = store.Enable(inst.ID)
	require.NoError(t, err)
	require.Equal(t, 2, h.enableCalls)
}

func TestDeleteFiresOnDisable(t *testing.T) {
	store, h := newTestStore(t)
	inst, err := store.Create("recording-plugin", "X", pluginapi.Settings{})
	require.NoError(t, err)

	require.NoError(t, store.Delete(inst.ID))
	require.Equal(t, 1, h.disableCalls)

	_, err = store.Get(inst.ID)
	require.Error(t, err)
}

func TestSettingsAreDefensivelyCloned(t *testing.T) {
	store, _ := newTestStore(t)
	original := pluginapi.Settings{"nested": map[string]any{"x": 1}}
	inst, err := store.Create("recording-plugin", "X", original)
	require.NoError(t, err)

	original["nested"].(map[string]any)["x"] = 999

	got, err := store.Get(inst.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Settings["nested"].(map[string]any)["x"])
}

func TestListFiltersByPlugin(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Create("recording-plugin", "A", pluginapi.Settings{})
	require.NoError(t, err)

	all := store.List("")
	require.Len(t, all, 1)

	filtered := store.List("other-plugin")
	require.Len(t, filtered, 0)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
