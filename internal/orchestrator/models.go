package orchestrator

import (
	"time"

	"github.com/sixthshift/artframed/internal/instance"
)

// ContentSource describes what should be on the panel right now: either
// a resolved plugin instance, or nothing.
type ContentSource struct {
	Instance        *instance.Instance
	DurationSeconds int
	SourceType      string
	SourceID        string
	SourceName      string
}

// EmptyContentSource returns a ContentSource with nothing to display.
func EmptyContentSource() ContentSource {
	return ContentSource{SourceType: "none"}
}

// IsEmpty reports whether there is nothing to display.
func (c ContentSource) IsEmpty() bool {
	return c.Instance == nil
}

// Status is the orchestrator's current state, built for spec.md §6.2's
// status endpoints.
type Status struct {
	Running        bool       `json:"running"`
	Paused         bool       `json:"paused"`
	SourceType     string     `json:"source_type"`
	SourceName     string     `json:"source_name,omitempty"`
	SourceID       string     `json:"source_id,omitempty"`
	HasContent     bool       `json:"has_content"`
	ActiveInstance *ActiveRef `json:"instance,omitempty"`
	CurrentSlot    *SlotRef   `json:"slot,omitempty"`
	NextUpdate     time.Time  `json:"next_update"`
	LastRefresh    *time.Time `json:"last_refresh,omitempty"`
	CurrentTime    time.Time  `json:"current_time"`
}

// ActiveRef identifies the instance currently driving the display.
type ActiveRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PluginID string `json:"plugin_id"`
}

// SlotRef identifies the schedule slot covering the current moment.
type SlotRef struct {
	Day        int    `json:"day"`
	Hour       int    `json:"hour"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
}
