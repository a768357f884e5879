// Package pluginapi defines the stable contract between the
// orchestration core and content plugins: metadata, settings, frames,
// and the lifecycle methods described in spec.md §4.5. This package only
// fixes the shape plugins must have to be driven by the core; the
// builtin plugin bodies (clock, quote-of-the-day) live under
// internal/plugins/builtin.
package pluginapi

import (
	"context"
	"time"
)

// Settings is the opaque, plugin-defined configuration bag the core
// passes through untouched. It is always a defensive copy: plugin
// mutation of a Settings value handed to it must never leak back into
// the instance store (spec.md §5, "Shared-resource policy").
type Settings map[string]any

// Clone returns a deep-enough copy of s for the common case of
// JSON-shaped settings (maps, slices, and scalars).
func (s Settings) Clone() Settings {
	return cloneValue(s).(Settings)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Settings:
		out := make(Settings, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// DeviceConfig describes the physical panel to a plugin generating a
// frame: dimensions, rotation, and colour capabilities. The serve command
// assembles it from configuration; the instance test endpoint builds one
// from the Display Controller's reported size.
type DeviceConfig struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Rotation  int    `json:"rotation"`
	ColorMode string `json:"color_mode"`
	Timezone  string `json:"timezone"`
}

// Frame is a generated image payload plus provenance, ready to hand to
// the Display Controller. The payload format is opaque to the core:
// concrete pixel formats are out of scope (spec.md §1).
type Frame struct {
	Payload    []byte
	Provenance Provenance
}

// Provenance identifies what produced a Frame, so the display layer can
// report what's on-screen.
type Provenance struct {
	PluginID     string    `json:"plugin_id"`
	PluginName   string    `json:"plugin_name"`
	InstanceID   string    `json:"instance_id"`
	InstanceName string    `json:"instance_name"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Metadata is the static description of a plugin, loaded once at startup
// by the registry and immutable at runtime (spec.md §4.5 table).
type Metadata struct {
	PluginID       string `json:"plugin_id"`
	DisplayName    string `json:"display_name"`
	Implementation string `json:"implementation"` // factory/class handle
	Version        string `json:"version"`
	Icon           string `json:"icon,omitempty"`
	// SettingsSchema is opaque to the core (spec.md §3): it is surfaced
	// to clients verbatim and never interpreted here.
	SettingsSchema map[string]any `json:"settings_schema,omitempty"`
}

// Handler is the stable surface the orchestration core relies on. Every
// plugin implementation satisfies this interface. DefaultHandler does not
// supply GenerateImage or RunActive, so every plugin defines both; a
// plugin with no refresh cadence of its own can implement RunActive by
// calling RunActiveOnce.
type Handler interface {
	// ValidateSettings is pure; called on instance create/update.
	ValidateSettings(settings Settings) error

	// GenerateImage is pure with respect to core state; it may perform
	// network I/O of its own.
	GenerateImage(ctx context.Context, settings Settings, device DeviceConfig) (Frame, error)

	// CacheTTL advises the orchestrator how long generated content stays
	// fresh. Zero means "never cache, redraw each cycle". It is the
	// plugin's own responsibility to honour this inside RunActive; the
	// core itself never reads it.
	CacheTTL(settings Settings) time.Duration

	// OnEnable/OnDisable/OnSettingsChange are best-effort side effects:
	// the instance store swallows and logs their errors without undoing
	// the triggering mutation.
	OnEnable(settings Settings) error
	OnDisable(settings Settings) error
	OnSettingsChange(old, new Settings) error

	// RunActive is the worker body: it owns pushing frames to display
	// until stop is cancelled. Implementations MUST observe stop at
	// least once per minute of wall-clock (spec.md §5).
	RunActive(ctx context.Context, display Display, settings Settings, device DeviceConfig, provenance Provenance) error
}

// Display is the subset of the Display Controller a plugin worker is
// allowed to touch: pushing frames. Plugins never see store internals
// or driver capability management.
type Display interface {
	DisplayImage(frame Frame) error
}

// DefaultHandler embeds into a plugin implementation to provide the
// "no special lifecycle" defaults: always-valid settings, no caching,
// and no side effects. It has no RunActive; the generate-once, push,
// wait-on-stop body is RunActiveOnce, which a plugin calls explicitly.
type DefaultHandler struct{}

func (DefaultHandler) ValidateSettings(Settings) error                { return nil }
func (DefaultHandler) CacheTTL(Settings) time.Duration                { return 0 }
func (DefaultHandler) OnEnable(Settings) error                        { return nil }
func (DefaultHandler) OnDisable(Settings) error                       { return nil }
func (DefaultHandler) OnSettingsChange(old, new Settings) error       { return nil }

// RunActiveOnce implements the default RunActive body described in
// spec.md §4.5: generate once, push, then wait on stop. It takes the
// owning handler's GenerateImage so DefaultHandler itself stays a pure
// mixin (it has no GenerateImage of its own: every real plugin supplies
// one).
func RunActiveOnce(ctx context.Context, gen func(context.Context, Settings, DeviceConfig) (Frame, error), display Display, settings Settings, device DeviceConfig, provenance Provenance) error {
	frame, err := gen(ctx, settings, device)
	if err != nil {
		return err
	}
	frame.Provenance = provenance
	if err := display.DisplayImage(frame); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
