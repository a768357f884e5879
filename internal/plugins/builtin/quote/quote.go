// Package quote implements the "quote_of_the_day" builtin plugin: a
// daily-rotating inspirational quote, adapted from original_source's
// quote_of_the_day.py (quotes are embedded rather than loaded from a
// sidecar JSON file, since this package ships as a single Go binary).
package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/sixthshift/artframed/internal/pluginregistry"
)

const PluginID = "quote_of_the_day"

type entry struct {
	Text     string
	Author   string
	Category string
}

var quotes = []entry{
	{"The only way to do great work is to love what you do.", "Steve Jobs", "inspirational"},
	{"Simplicity is the soul of efficiency.", "Austin Freeman", "productivity"},
	{"It always seems impossible until it's done.", "Nelson Mandela", "inspirational"},
	{"Make it work, make it right, make it fast.", "Kent Beck", "productivity"},
	{"The best time to plant a tree was 20 years ago. The second best time is now.", "Chinese Proverb", "inspirational"},
}

func categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range quotes {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}

func init() {
	pluginregistry.Register(pluginapi.Metadata{
		PluginID:       PluginID,
		DisplayName:    "Quote of the Day",
		Implementation: "builtin",
		Version:        "1.0.0",
		SettingsSchema: map[string]any{
			"category": map[string]any{"type": "string", "default": "random"},
		},
	}, func() pluginapi.Handler { return &Handler{} })
}

// Handler renders one quote, selected deterministically per calendar
// day so every refresh within a day shows the same quote.
type Handler struct {
	pluginapi.DefaultHandler
}

func (h *Handler) ValidateSettings(settings pluginapi.Settings) error {
	category, ok := settings["category"].(string)
	if !ok || category == "" || category == "random" {
		return nil
	}
	for _, c := range categories() {
		if c == category {
			return nil
		}
	}
	return fmt.Errorf("category must be one of: %v, random", categories())
}

// CacheTTL returns 24 hours: the quote only changes once a day.
func (h *Handler) CacheTTL(settings pluginapi.Settings) time.Duration {
	return 24 * time.Hour
}

func (h *Handler) pick(category string, day int) entry {
	pool := quotes
	if category != "" && category != "random" {
		pool = nil
		for _, q := range quotes {
			if q.Category == category {
				pool = append(pool, q)
			}
		}
		if len(pool) == 0 {
			pool = quotes
		}
	}
	return pool[day%len(pool)]
}

func (h *Handler) GenerateImage(ctx context.Context, settings pluginapi.Settings, device pluginapi.DeviceConfig) (pluginapi.Frame, error) {
	category, _ := settings["category"].(string)
	dayOrdinal := time.Now().YearDay()
	q := h.pick(category, dayOrdinal)

	payload := fmt.Sprintf("%dx%d|%q|- %s", device.Width, device.Height, q.Text, q.Author)
	return pluginapi.Frame{Payload: []byte(payload)}, nil
}

// RunActive generates once per activation, via the shared RunActiveOnce
// helper. It re-renders only when the orchestrator starts a new worker
// for it (the scheduled instance changes) or on a ForceRefresh; an
// instance that stays scheduled across midnight keeps the previous
// day's quote until then.
func (h *Handler) RunActive(ctx context.Context, d pluginapi.Display, settings pluginapi.Settings, device pluginapi.DeviceConfig, provenance pluginapi.Provenance) error {
	return pluginapi.RunActiveOnce(ctx, h.GenerateImage, d, settings, device, provenance)
}
