// Package clockutil provides the single source of truth for "now" used
// throughout artframed. Every wall-clock decision in the daemon funnels
// through a Clock so tests can inject a virtual one instead of reading
// time.Now() in a dozen places.
package clockutil

import (
	"fmt"
	"time"
)

// Clock exposes the current time in a fixed IANA timezone along with the
// couple of derived quantities the scheduler needs.
type Clock interface {
	Now() time.Time
	Location() *time.Location
	SecondsUntilNextHour() int
	DayHour(t time.Time) (day, hour int)
}

// realClock wraps time.Now in a configured location. Successive calls are
// non-decreasing because time.Now is itself monotonic on the platforms Go
// supports.
type realClock struct {
	loc *time.Location
}

// New builds a Clock fixed to the given IANA timezone name (e.g.
// "Australia/Sydney"). An unknown timezone is a fatal configuration error,
// not a runtime one: callers are expected to bail out at boot.
func New(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return &realClock{loc: loc}, nil
}

// MustNew is New, panicking on error. Only appropriate for tests and
// compile-time-known timezones (e.g. "UTC").
func MustNew(timezone string) Clock {
	c, err := New(timezone)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *realClock) Location() *time.Location {
	return c.loc
}

// SecondsUntilNextHour always returns a value in [1, 3600], never 0, so a
// caller looping on it can't busy-wait across an hour boundary.
func (c *realClock) SecondsUntilNextHour() int {
	return secondsUntilNextHour(c.Now())
}

func secondsUntilNextHour(now time.Time) int {
	next := now.Truncate(time.Hour).Add(time.Hour)
	d := int(next.Sub(now).Seconds())
	if d <= 0 {
		d = 3600
	}
	if d > 3600 {
		d = 3600
	}
	return d
}

// DayHour converts a time to (day_of_week, hour) where day 0 is Monday,
// matching the weekly 7x24 schedule grid.
func (c *realClock) DayHour(t time.Time) (day, hour int) {
	return dayHour(t.In(c.loc))
}

func dayHour(t time.Time) (day, hour int) {
	// time.Weekday: Sunday=0 .. Saturday=6. The grid wants Monday=0.
	wd := int(t.Weekday())
	day = (wd + 6) % 7
	hour = t.Hour()
	return day, hour
}

// Virtual is a Clock whose time is controlled by tests. It supports the
// same monotonic-non-decreasing contract: Set never moves time backwards
// relative to the previous call unless the test explicitly wants that
// (e.g. to exercise wrap-around conditions), in which case it's on them.
type Virtual struct {
	loc *time.Location
	now time.Time
}

// NewVirtual creates a Virtual clock pinned at t, which must already carry
// the desired location (use t.In(loc) before passing it in).
func NewVirtual(t time.Time) *Virtual {
	return &Virtual{loc: t.Location(), now: t}
}

func (v *Virtual) Now() time.Time { return v.now }

func (v *Virtual) Location() *time.Location { return v.loc }

func (v *Virtual) SecondsUntilNextHour() int {
	return secondsUntilNextHour(v.now)
}

func (v *Virtual) DayHour(t time.Time) (day, hour int) {
	return dayHour(t.In(v.loc))
}

// Set moves the virtual clock to t.
func (v *Virtual) Set(t time.Time) { v.now = t }

// Advance moves the virtual clock forward by d.
func (v *Virtual) Advance(d time.Duration) { v.now = v.now.Add(d) }
