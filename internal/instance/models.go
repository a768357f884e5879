// Package instance manages plugin instances: named, configured,
// enable/disable-able bindings of a plugin_id to a settings bag. This
// is the Instance Store component of spec.md §4.4.
package instance

import (
	"time"

	"github.com/sixthshift/artframed/internal/pluginapi"
)

// Instance is one configured binding of a plugin to settings.
type Instance struct {
	ID        string             `json:"id"`
	PluginID  string             `json:"plugin_id"`
	Name      string             `json:"name"`
	Settings  pluginapi.Settings `json:"settings"`
	Enabled   bool               `json:"enabled"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Clone returns a defensive copy, including a deep copy of Settings.
func (i Instance) Clone() Instance {
	i.Settings = i.Settings.Clone()
	return i
}
