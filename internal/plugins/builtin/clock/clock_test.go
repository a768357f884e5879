package clock

import (
	"context"
	"testing"

	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/stretchr/testify/require"
)

func TestValidateSettingsRejectsBadTimeFormat(t *testing.T) {
	h := &Handler{}
	err := h.ValidateSettings(pluginapi.Settings{"time_format": "30h"})
	require.Error(t, err)
}

func TestValidateSettingsRejectsUnknownTimezone(t *testing.T) {
	h := &Handler{}
	err := h.ValidateSettings(pluginapi.Settings{"timezone": "Not/Real"})
	require.Error(t, err)
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	h := &Handler{}
	require.NoError(t, h.ValidateSettings(pluginapi.Settings{}))
}

func TestCacheTTLIsOneMinute(t *testing.T) {
	h := &Handler{}
	require.Equal(t, "1m0s", h.CacheTTL(pluginapi.Settings{}).String())
}

func TestGenerateImageProducesNonEmptyPayload(t *testing.T) {
	h := &Handler{}
	frame, err := h.GenerateImage(context.Background(), pluginapi.Settings{"timezone": "UTC"}, pluginapi.DeviceConfig{Width: 800, Height: 480})
	require.NoError(t, err)
	require.NotEmpty(t, frame.Payload)
}
