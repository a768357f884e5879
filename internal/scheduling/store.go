package scheduling

import (
	"fmt"
	"sync"
	"time"

	"github.com/sixthshift/artframed/internal/clockutil"
	"github.com/sixthshift/artframed/internal/kvstore"
)

// ErrInvalidArgument is returned when day or hour falls outside the
// weekly grid.
type ErrInvalidArgument struct {
	Day, Hour int
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid slot (day=%d, hour=%d): day must be 0..6, hour 0..23", e.Day, e.Hour)
}

// persistedSlot is the on-disk shape of one slot entry, matching
// schedules.json's {target_type, target_id} value.
type persistedSlot struct {
	TargetType TargetType `json:"target_type"`
	TargetID   string     `json:"target_id"`
}

// persistedSchedule is the full schedules.json document.
type persistedSchedule struct {
	Slots       map[string]persistedSlot `json:"slots"`
	LastUpdated string                   `json:"last_updated"`
}

// Store holds and persists up to 168 TimeSlot assignments keyed by
// (day, hour). It owns schedules.json exclusively (I1, I5 of spec.md).
type Store struct {
	mu    sync.RWMutex
	path  string
	clock clockutil.Clock
	slots map[string]TimeSlot // key: "day-hour"
}

// Open loads (or initializes) the schedule store backed by path.
func Open(path string, clock clockutil.Clock) (*Store, error) {
	s := &Store{
		path:  path,
		clock: clock,
		slots: make(map[string]TimeSlot),
	}

	var doc persistedSchedule
	found, err := kvstore.Load(path, &doc)
	if err != nil {
		return nil, err
	}
	if found {
		for key, p := range doc.Slots {
			var day, hour int
			if _, scanErr := fmt.Sscanf(key, "%d-%d", &day, &hour); scanErr != nil {
				continue
			}
			s.slots[key] = TimeSlot{Day: day, Hour: hour, TargetType: p.TargetType, TargetID: p.TargetID}
		}
	}

	return s, nil
}

// snapshotLocked returns a defensive copy of the in-memory map. Caller
// must hold at least a read lock.
func (s *Store) snapshotLocked() map[string]TimeSlot {
	out := make(map[string]TimeSlot, len(s.slots))
	for k, v := range s.slots {
		out[k] = v
	}
	return out
}

// saveLocked persists the current in-memory map. On failure the caller
// is responsible for restoring the prior snapshot (I5: a failed save
// rolls back the in-memory state).
func (s *Store) saveLocked() error {
	doc := persistedSchedule{
		Slots:       make(map[string]persistedSlot, len(s.slots)),
		LastUpdated: s.clock.Now().Format(time.RFC3339),
	}
	for k, slot := range s.slots {
		doc.Slots[k] = persistedSlot{TargetType: slot.TargetType, TargetID: slot.TargetID}
	}
	return kvstore.Save(s.path, &doc)
}

// SetSlot overwrites the assignment at (day, hour).
func (s *Store) SetSlot(day, hour int, targetType TargetType, targetID string) (TimeSlot, error) {
	if !Valid(day, hour) {
		return TimeSlot{}, &ErrInvalidArgument{Day: day, Hour: hour}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.snapshotLocked()
	slot := TimeSlot{Day: day, Hour: hour, TargetType: targetType, TargetID: targetID}
	s.slots[slot.Key()] = slot

	if err := s.saveLocked(); err != nil {
		s.slots = prior
		return TimeSlot{}, err
	}

	return slot, nil
}

// ClearSlot removes the assignment at (day, hour), reporting whether one
// existed.
func (s *Store) ClearSlot(day, hour int) (bool, error) {
	if !Valid(day, hour) {
		return false, &ErrInvalidArgument{Day: day, Hour: hour}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(day, hour)
	if _, exists := s.slots[key]; !exists {
		return false, nil
	}

	prior := s.snapshotLocked()
	delete(s.slots, key)

	if err := s.saveLocked(); err != nil {
		s.slots = prior
		return false, err
	}

	return true, nil
}

// GetSlot returns the slot at (day, hour), or (TimeSlot{}, false) if
// unassigned.
func (s *Store) GetSlot(day, hour int) (TimeSlot, bool, error) {
	if !Valid(day, hour) {
		return TimeSlot{}, false, &ErrInvalidArgument{Day: day, Hour: hour}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[Key(day, hour)]
	return slot, ok, nil
}

// GetCurrentSlot returns the slot covering the clock's current time, or
// (TimeSlot{}, false) if the current (day, hour) has no assignment.
func (s *Store) GetCurrentSlot() (TimeSlot, bool) {
	day, hour := s.clock.DayHour(s.clock.Now())
	slot, ok, _ := s.GetSlot(day, hour)
	return slot, ok
}

// BulkSlot is one entry in a bulk-set request.
type BulkSlot struct {
	Day        int
	Hour       int
	TargetType TargetType
	TargetID   string
}

// BulkSet applies every entry in slots to the in-memory map, then saves
// once. The operation is all-or-nothing against the in-memory map: an
// invalid entry aborts before any mutation, and a save failure rolls the
// whole batch back.
func (s *Store) BulkSet(slots []BulkSlot) (int, error) {
	for _, b := range slots {
		if !Valid(b.Day, b.Hour) {
			return 0, &ErrInvalidArgument{Day: b.Day, Hour: b.Hour}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.snapshotLocked()
	for _, b := range slots {
		slot := TimeSlot{Day: b.Day, Hour: b.Hour, TargetType: b.TargetType, TargetID: b.TargetID}
		s.slots[slot.Key()] = slot
	}

	if err := s.saveLocked(); err != nil {
		s.slots = prior
		return 0, err
	}

	return len(slots), nil
}

// ClearAll removes every assignment, returning the count removed.
func (s *Store) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.snapshotLocked()
	count := len(s.slots)
	s.slots = make(map[string]TimeSlot)

	if err := s.saveLocked(); err != nil {
		s.slots = prior
		return 0, err
	}

	return count, nil
}

// Snapshot returns every assigned slot keyed by "day-hour", for the HTTP
// surface.
func (s *Store) Snapshot() map[string]TimeSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Count returns the number of assigned slots.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
