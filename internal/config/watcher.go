package config

import (
	"fmt"
	"os"
	"reflect"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ChangeFunc is notified with the field path ("display.width") and new
// value whenever Reload or Save observes a change, mirroring the original
// configuration manager's observer pattern.
type ChangeFunc func(field string, newValue any)

// Watcher holds the most recently loaded Config and lets callers
// register observers and trigger a validated reload from disk.
type Watcher struct {
	mu        sync.RWMutex
	path      string
	current   *Config
	observers []ChangeFunc
}

// NewWatcher wraps an already-loaded Config for path, the file it was
// loaded from.
func NewWatcher(path string, initial *Config) *Watcher {
	return &Watcher{path: path, current: initial}
}

// Current returns the presently active configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers fn to be called for each changed field on every
// later successful Reload or Save.
func (w *Watcher) OnChange(fn ChangeFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// Reload re-reads and re-validates configuration from disk, swapping it
// in only if valid, and notifies observers of what changed. A failed
// reload leaves the current configuration in place.
func (w *Watcher) Reload() error {
	next, err := Load(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	observers := append([]ChangeFunc(nil), w.observers...)
	w.mu.Unlock()

	for _, field := range diff(prev, next) {
		for _, fn := range observers {
			fn(field.path, field.value)
		}
	}
	return nil
}

// Save validates next, writes it to the watcher's config path (backing
// up the previous file to a timestamped ".bak" sibling first), and
// swaps it in as the current configuration. Named config file was
// never versioned by the original configuration manager; the
// backup-then-atomic-write idiom is adopted here so a bad save is
// always recoverable.
func (w *Watcher) Save(next *Config) error {
	if err := Validate(next); err != nil {
		return err
	}

	w.mu.RLock()
	path := w.path
	w.mu.RUnlock()

	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%d.bak", path, time.Now().Unix())
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, raw, 0o644); err != nil {
			return fmt.Errorf("write config backup: %w", err)
		}
	}

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config into place: %w", err)
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	observers := append([]ChangeFunc(nil), w.observers...)
	w.mu.Unlock()

	for _, field := range diff(prev, next) {
		for _, fn := range observers {
			fn(field.path, field.value)
		}
	}
	return nil
}

type changedField struct {
	path  string
	value any
}

// diff walks two Config values field by field and reports every leaf
// whose value changed, by mapstructure tag path.
func diff(prev, next *Config) []changedField {
	var out []changedField
	diffStruct("", reflect.ValueOf(*prev), reflect.ValueOf(*next), &out)
	return out
}

func diffStruct(prefix string, prev, next reflect.Value, out *[]changedField) {
	t := prev.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			tag = field.Name
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}

		pv, nv := prev.Field(i), next.Field(i)
		if pv.Kind() == reflect.Struct {
			diffStruct(path, pv, nv, out)
			continue
		}
		if !reflect.DeepEqual(pv.Interface(), nv.Interface()) {
			*out = append(*out, changedField{path: path, value: nv.Interface()})
		}
	}
}
