// Package pluginregistry is the compile-time plugin table. Plugins are
// not dynamically loaded from disk at runtime: each one registers a
// factory from its own init() function, following the teacher's global
// registry pattern, and the registry only opens a metadata manifest
// tree to enrich what each factory already knows about itself.
package pluginregistry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sixthshift/artframed/internal/pluginapi"
)

// Factory constructs a fresh, stateless Handler instance. Registry.New
// calls it on every lookup, so each caller gets its own Handler and
// plugin implementations never share mutable state across callers.
type Factory func() pluginapi.Handler

type registration struct {
	metadata pluginapi.Metadata
	factory  Factory
}

var (
	mu    sync.RWMutex
	table = make(map[string]registration)
)

// Register adds a plugin to the compile-time table. Call it from a
// plugin package's init(); re-registering the same plugin_id overwrites
// the previous entry and logs a warning, mirroring hot-reload-by-
// re-registration semantics.
func Register(meta pluginapi.Metadata, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := table[meta.PluginID]; exists {
		log.Warn().Str("plugin_id", meta.PluginID).Msg("plugin already registered, overwriting")
	}
	table[meta.PluginID] = registration{metadata: meta, factory: factory}
}

// Registry is a read-only view over the compile-time table, optionally
// enriched with manifest metadata loaded from a plugin directory tree.
type Registry struct {
	mu        sync.RWMutex
	manifests map[string]pluginapi.Metadata
}

// New returns a Registry with no manifest overlay loaded yet.
func New() *Registry {
	return &Registry{manifests: make(map[string]pluginapi.Metadata)}
}

// LoadManifests walks dir for plugin-info.json files and replaces the
// manifest overlay with their contents. A loaded manifest's metadata
// takes the place of the compile-time metadata for its plugin_id as a
// whole (fields it omits are empty, not inherited); a manifest never
// introduces a plugin the compile-time table doesn't already have, per
// spec.md's REDESIGN FLAGS note ruling out dynamic class loading.
func (r *Registry) LoadManifests(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read plugin manifest dir: %w", err)
	}

	loaded := make(map[string]pluginapi.Metadata)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(dir, entry.Name(), "plugin-info.json")
		raw, err := os.ReadFile(manifestPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read manifest %s: %w", manifestPath, err)
		}

		var meta pluginapi.Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			log.Warn().Err(err).Str("path", manifestPath).Msg("skipping malformed plugin manifest")
			continue
		}
		if meta.PluginID == "" {
			meta.PluginID = entry.Name()
		}
		if !r.IsRegistered(meta.PluginID) {
			log.Warn().Str("plugin_id", meta.PluginID).Str("path", manifestPath).Msg("skipping manifest for unregistered plugin")
			continue
		}
		loaded[meta.PluginID] = meta
	}

	r.mu.Lock()
	r.manifests = loaded
	r.mu.Unlock()
	return nil
}

// ErrUnknownPlugin is returned when a plugin_id has no compile-time
// registration.
type ErrUnknownPlugin struct{ PluginID string }

func (e *ErrUnknownPlugin) Error() string {
	return fmt.Sprintf("unknown plugin_id %q", e.PluginID)
}

// New constructs a fresh Handler instance for pluginID.
func (r *Registry) New(pluginID string) (pluginapi.Handler, error) {
	mu.RLock()
	reg, ok := table[pluginID]
	mu.RUnlock()
	if !ok {
		return nil, &ErrUnknownPlugin{PluginID: pluginID}
	}
	return reg.factory(), nil
}

// IsRegistered reports whether pluginID has a compile-time factory.
func (r *Registry) IsRegistered(pluginID string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := table[pluginID]
	return ok
}

// Metadata returns the metadata for pluginID, preferring a loaded
// manifest over the compile-time default when both exist.
func (r *Registry) Metadata(pluginID string) (pluginapi.Metadata, bool) {
	r.mu.RLock()
	manifest, hasManifest := r.manifests[pluginID]
	r.mu.RUnlock()
	if hasManifest {
		return manifest, true
	}

	mu.RLock()
	reg, ok := table[pluginID]
	mu.RUnlock()
	if !ok {
		return pluginapi.Metadata{}, false
	}
	return reg.metadata, true
}

// ListMetadata returns metadata for every compile-time-registered
// plugin, manifest-enriched where available, sorted by plugin_id.
func (r *Registry) ListMetadata() []pluginapi.Metadata {
	mu.RLock()
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	mu.RUnlock()
	sort.Strings(ids)

	out := make([]pluginapi.Metadata, 0, len(ids))
	for _, id := range ids {
		meta, ok := r.Metadata(id)
		if ok {
			out = append(out, meta)
		}
	}
	return out
}
