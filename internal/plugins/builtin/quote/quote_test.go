package quote

import (
	"context"
	"testing"

	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/stretchr/testify/require"
)

func TestValidateSettingsAcceptsRandom(t *testing.T) {
	h := &Handler{}
	require.NoError(t, h.ValidateSettings(pluginapi.Settings{"category": "random"}))
}

func TestValidateSettingsRejectsUnknownCategory(t *testing.T) {
	h := &Handler{}
	require.Error(t, h.ValidateSettings(pluginapi.Settings{"category": "nonexistent"}))
}

func TestCacheTTLIsOneDay(t *testing.T) {
	h := &Handler{}
	require.Equal(t, "24h0m0s", h.CacheTTL(pluginapi.Settings{}).String())
}

func TestGenerateImageProducesNonEmptyPayload(t *testing.T) {
	h := &Handler{}
	frame, err := h.GenerateImage(context.Background(), pluginapi.Settings{"category": "inspirational"}, pluginapi.DeviceConfig{Width: 800, Height: 480})
	require.NoError(t, err)
	require.NotEmpty(t, frame.Payload)
}

func TestPickIsStablePerDay(t *testing.T) {
	h := &Handler{}
	a := h.pick("random", 5)
	b := h.pick("random", 5)
	require.Equal(t, a, b)
}
