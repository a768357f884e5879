package instance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sixthshift/artframed/internal/clockutil"
	"github.com/sixthshift/artframed/internal/kvstore"
	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/sixthshift/artframed/internal/pluginregistry"
)

// ErrNotFound is returned when an instance_id has no matching record.
type ErrNotFound struct{ ID string }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("instance not found: %s", e.ID) }

// ErrInvalidSettings wraps a plugin's settings-validation rejection.
type ErrInvalidSettings struct {
	PluginID string
	Reason   string
}

func (e *ErrInvalidSettings) Error() string {
	return fmt.Sprintf("invalid settings for plugin %s: %s", e.PluginID, e.Reason)
}

type persistedInstance struct {
	ID        string             `json:"id"`
	PluginID  string             `json:"plugin_id"`
	Name      string             `json:"name"`
	Settings  pluginapi.Settings `json:"settings"`
	Enabled   bool               `json:"enabled"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type persistedDocument struct {
	Instances   []persistedInstance `json:"instances"`
	LastUpdated string              `json:"last_updated"`
}

// Store owns plugin_instances.json and mediates every plugin lifecycle
// callback (on_enable/on_disable/on_settings_change) as a best-effort
// side effect: a callback failure is logged and never undoes the
// triggering mutation (spec.md §7).
type Store struct {
	mu        sync.RWMutex
	path      string
	clock     clockutil.Clock
	registry  *pluginregistry.Registry
	instances map[string]Instance
}

// Open loads (or initializes) the instance store backed by path.
func Open(path string, clock clockutil.Clock, registry *pluginregistry.Registry) (*Store, error) {
	s := &Store{
		path:      path,
		clock:     clock,
		registry:  registry,
		instances: make(map[string]Instance),
	}

	var doc persistedDocument
	found, err := kvstore.Load(path, &doc)
	if err != nil {
		return nil, err
	}
	if found {
		for _, p := range doc.Instances {
			inst, err := fromPersisted(p)
			if err != nil {
				log.Warn().Err(err).Str("instance_id", p.ID).Msg("skipping malformed instance record")
				continue
			}
			s.instances[inst.ID] = inst
		}
	}

	return s, nil
}

func fromPersisted(p persistedInstance) (Instance, error) {
	created, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return Instance{}, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, p.UpdatedAt)
	if err != nil {
		return Instance{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return Instance{
		ID:        p.ID,
		PluginID:  p.PluginID,
		Name:      p.Name,
		Settings:  p.Settings,
		Enabled:   p.Enabled,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func (s *Store) snapshotLocked() map[string]Instance {
	out := make(map[string]Instance, len(s.instances))
	for k, v := range s.instances {
		out[k] = v
	}
	return out
}

func (s *Store) saveLocked() error {
	doc := persistedDocument{
		Instances:   make([]persistedInstance, 0, len(s.instances)),
		LastUpdated: s.clock.Now().Format(time.RFC3339),
	}
	for _, inst := range s.instances {
		doc.Instances = append(doc.Instances, persistedInstance{
			ID:        inst.ID,
			PluginID:  inst.PluginID,
			Name:      inst.Name,
			Settings:  inst.Settings,
			Enabled:   inst.Enabled,
			CreatedAt: inst.CreatedAt.Format(time.RFC3339),
			UpdatedAt: inst.UpdatedAt.Format(time.RFC3339),
		})
	}
	return kvstore.Save(s.path, &doc)
}

// runCallback invokes fn and logs (but never propagates) any error, per
// the best-effort lifecycle-hook contract.
func runCallback(instanceID, hook string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn().Err(err).Str("instance_id", instanceID).Str("hook", hook).Msg("plugin lifecycle callback failed")
	}
}

// Create validates settings against the plugin, persists a new
// instance, and fires on_enable best-effort.
func (s *Store) Create(pluginID, name string, settings pluginapi.Settings) (Instance, error) {
	handler, err := s.registry.New(pluginID)
	if err != nil {
		return Instance{}, err
	}
	if err := handler.ValidateSettings(settings); err != nil {
		return Instance{}, &ErrInvalidSettings{PluginID: pluginID, Reason: err.Error()}
	}

	now := s.clock.Now()
	inst := Instance{
		ID:        uuid.NewString(),
		PluginID:  pluginID,
		Name:      name,
		Settings:  settings.Clone(),
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	prior := s.snapshotLocked()
	s.instances[inst.ID] = inst
	if err := s.saveLocked(); err != nil {
		s.instances = prior
		s.mu.Unlock()
		return Instance{}, err
	}
	s.mu.Unlock()

	runCallback(inst.ID, "on_enable", func() error { return handler.OnEnable(inst.Settings) })
	return inst, nil
}

// Get returns a defensive copy of the instance with id, or ErrNotFound.
func (s *Store) Get(id string) (Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return Instance{}, &ErrNotFound{ID: id}
	}
	return inst.Clone(), nil
}

// List returns every instance, optionally filtered by plugin_id (empty
// string means no filter).
func (s *Store) List(pluginID string) []Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		if pluginID != "" && inst.PluginID != pluginID {
			continue
		}
		out = append(out, inst.Clone())
	}
	return out
}

// ListEnabled returns every enabled instance.
func (s *Store) ListEnabled() []Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		if inst.Enabled {
			out = append(out, inst.Clone())
		}
	}
	return out
}

// Count returns the number of stored instances.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

// Update changes name and/or settings. A nil settings leaves settings
// untouched; a non-nil settings is re-validated and triggers
// on_settings_change best-effort.
func (s *Store) Update(id string, name *string, settings pluginapi.Settings) (Instance, error) {
	s.mu.Lock()
	existing, ok := s.instances[id]
	if !ok {
		s.mu.Unlock()
		return Instance{}, &ErrNotFound{ID: id}
	}

	handler, err := s.registry.New(existing.PluginID)
	if err != nil {
		s.mu.Unlock()
		return Instance{}, err
	}

	oldSettings := existing.Settings
	updated := existing
	if settings != nil {
		if err := handler.ValidateSettings(settings); err != nil {
			s.mu.Unlock()
			return Instance{}, &ErrInvalidSettings{PluginID: existing.PluginID, Reason: err.Error()}
		}
		updated.Settings = settings.Clone()
	}
	if name != nil {
		updated.Name = *name
	}
	updated.UpdatedAt = s.clock.Now()

	prior := s.snapshotLocked()
	s.instances[id] = updated
	if err := s.saveLocked(); err != nil {
		s.instances = prior
		s.mu.Unlock()
		return Instance{}, err
	}
	s.mu.Unlock()

	if settings != nil {
		runCallback(id, "on_settings_change", func() error {
			return handler.OnSettingsChange(oldSettings, updated.Settings)
		})
	}
	return updated.Clone(), nil
}

// setEnabled is the shared body of Enable and Disable.
func (s *Store) setEnabled(id string, enabled bool) (Instance, error) {
	s.mu.Lock()
	existing, ok := s.instances[id]
	if !ok {
		s.mu.Unlock()
		return Instance{}, &ErrNotFound{ID: id}
	}

	if existing.Enabled == enabled {
		s.mu.Unlock()
		return existing.Clone(), nil
	}

	handler, err := s.registry.New(existing.PluginID)
	if err != nil {
		s.mu.Unlock()
		return Instance{}, err
	}

	updated := existing
	updated.Enabled = enabled
	updated.UpdatedAt = s.clock.Now()

	prior := s.snapshotLocked()
	s.instances[id] = updated
	if err := s.saveLocked(); err != nil {
		s.instances = prior
		s.mu.Unlock()
		return Instance{}, err
	}
	s.mu.Unlock()

	hook := "on_disable"
	callback := func() error { return handler.OnDisable(updated.Settings) }
	if enabled {
		hook = "on_enable"
		callback = func() error { return handler.OnEnable(updated.Settings) }
	}
	runCallback(id, hook, callback)
	return updated.Clone(), nil
}

// Enable marks the instance enabled, firing on_enable if it was
// previously disabled. Enabling an already-enabled instance is a no-op.
func (s *Store) Enable(id string) (Instance, error) { return s.setEnabled(id, true) }

// Disable marks the instance disabled, firing on_disable if it was
// previously enabled. Disabling an already-disabled instance is a
// no-op.
func (s *Store) Disable(id string) (Instance, error) { return s.setEnabled(id, false) }

// Delete removes the instance, firing on_disable best-effort first.
func (s *Store) Delete(id string) error {
	existing, err := s.Get(id)
	if err != nil {
		return err
	}

	if handler, handlerErr := s.registry.New(existing.PluginID); handlerErr == nil {
		runCallback(id, "on_disable", func() error { return handler.OnDisable(existing.Settings) })
	}

	s.mu.Lock()
	if _, ok := s.instances[id]; !ok {
		s.mu.Unlock()
		return &ErrNotFound{ID: id}
	}
	prior := s.snapshotLocked()
	delete(s.instances, id)
	if err := s.saveLocked(); err != nil {
		s.instances = prior
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return nil
}

// Test runs the instance's plugin generate_image once against device,
// reporting whether it succeeded. It never pushes to the display: this
// is a dry-run validation call (spec.md §6.2 POST .../test).
func (s *Store) Test(ctx context.Context, id string, device pluginapi.DeviceConfig) error {
	inst, err := s.Get(id)
	if err != nil {
		return err
	}
	handler, err := s.registry.New(inst.PluginID)
	if err != nil {
		return err
	}
	_, err = handler.GenerateImage(ctx, inst.Settings, device)
	return err
}
