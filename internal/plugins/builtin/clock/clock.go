// Package clock implements the "clock" builtin plugin: a simple,
// self-refreshing display of the current time and date, adapted from
// original_source's clock.py.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/sixthshift/artframed/internal/pluginregistry"
)

const PluginID = "clock"

func init() {
	pluginregistry.Register(pluginapi.Metadata{
		PluginID:       PluginID,
		DisplayName:    "Clock",
		Implementation: "builtin",
		Version:        "1.0.0",
		SettingsSchema: map[string]any{
			"time_format": map[string]any{"type": "string", "enum": []string{"12h", "24h"}, "default": "24h"},
			"date_format": map[string]any{"type": "string", "enum": []string{"full", "short", "none"}, "default": "full"},
			"timezone":    map[string]any{"type": "string"},
		},
	}, func() pluginapi.Handler { return &Handler{} })
}

// Handler renders the current time and date, re-rendering itself every
// minute while active since rendering is too expensive to do per
// second.
type Handler struct {
	pluginapi.DefaultHandler
}

func (h *Handler) ValidateSettings(settings pluginapi.Settings) error {
	if tf, ok := settings["time_format"]; ok {
		s, _ := tf.(string)
		if s != "12h" && s != "24h" {
			return fmt.Errorf("time_format must be '12h' or '24h'")
		}
	}
	if df, ok := settings["date_format"]; ok {
		s, _ := df.(string)
		if s != "full" && s != "short" && s != "none" {
			return fmt.Errorf("date_format must be 'full', 'short', or 'none'")
		}
	}
	if tz, ok := settings["timezone"]; ok {
		s, _ := tz.(string)
		if s != "" {
			if _, err := time.LoadLocation(s); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", s, err)
			}
		}
	}
	return nil
}

// CacheTTL always reports one minute: the clock never needs to redraw
// more often than the minute digit changes.
func (h *Handler) CacheTTL(settings pluginapi.Settings) time.Duration {
	return time.Minute
}

func (h *Handler) GenerateImage(ctx context.Context, settings pluginapi.Settings, device pluginapi.DeviceConfig) (pluginapi.Frame, error) {
	loc := time.UTC
	tz, _ := settings["timezone"].(string)
	if tz == "" {
		tz = device.Timezone
	}
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	now := time.Now().In(loc)

	timeFormat, _ := settings["time_format"].(string)
	if timeFormat == "" {
		timeFormat = "24h"
	}
	dateFormat, _ := settings["date_format"].(string)
	if dateFormat == "" {
		dateFormat = "full"
	}

	var timeStr string
	if timeFormat == "12h" {
		timeStr = now.Format("03:04 PM")
	} else {
		timeStr = now.Format("15:04")
	}

	var dateStr string
	switch dateFormat {
	case "full":
		dateStr = now.Format("Monday, January 2, 2006")
	case "short":
		dateStr = now.Format("01/02/2006")
	}

	payload := fmt.Sprintf("%dx%d|%s|%s", device.Width, device.Height, timeStr, dateStr)
	return pluginapi.Frame{Payload: []byte(payload)}, nil
}

// RunActive redraws the clock on its own cadence, independent of
// whatever triggered it to become active, matching the original
// plugin's self-managed refresh loop.
func (h *Handler) RunActive(ctx context.Context, d pluginapi.Display, settings pluginapi.Settings, device pluginapi.DeviceConfig, provenance pluginapi.Provenance) error {
	ticker := time.NewTicker(h.CacheTTL(settings))
	defer ticker.Stop()

	render := func() error {
		frame, err := h.GenerateImage(ctx, settings, device)
		if err != nil {
			return err
		}
		frame.Provenance = provenance
		frame.Provenance.GeneratedAt = time.Now()
		return d.DisplayImage(frame)
	}

	if err := render(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := render(); err != nil {
				return err
			}
		}
	}
}
