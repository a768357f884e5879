// Package scheduling implements the weekly 7x24 slot grid: the Schedule
// Store component of the content orchestration core.
package scheduling

import "fmt"

// TargetType enumerates what a TimeSlot can point at. The spec defines
// exactly one today, but keeping it as a type (rather than a bare string)
// leaves room for a future target kind without touching callers.
type TargetType string

// TargetInstance is the only target type the core currently supports: a
// plugin instance.
const TargetInstance TargetType = "instance"

// TimeSlot is one (day, hour) cell of the weekly grid. Day 0 is Monday,
// hour is 0-23.
type TimeSlot struct {
	Day        int        `json:"day"`
	Hour       int        `json:"hour"`
	TargetType TargetType `json:"target_type"`
	TargetID   string     `json:"target_id"`
}

// Key returns the "day-hour" string used as the on-disk map key and the
// HTTP snapshot key.
func (s TimeSlot) Key() string {
	return Key(s.Day, s.Hour)
}

// Key formats a (day, hour) pair the same way TimeSlot.Key does, without
// requiring a TimeSlot value.
func Key(day, hour int) string {
	return fmt.Sprintf("%d-%d", day, hour)
}

// Valid reports whether day and hour are within the grid's bounds.
func Valid(day, hour int) bool {
	return day >= 0 && day <= 6 && hour >= 0 && hour <= 23
}
