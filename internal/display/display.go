// Package display implements the Display Controller: the sole
// serialized writer to the panel (I4 of spec.md), tracking status and
// error counts and delegating pixel work to a Driver.
package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/sixthshift/artframed/internal/pluginapi"
)

// Status is the controller's reported operating state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusUpdating Status = "updating"
	StatusSleeping Status = "sleeping"
	StatusError    Status = "error"
)

// Driver is the hardware boundary. Concrete e-paper driver
// implementations (SPI panel control, waveform timing) are explicitly
// out of scope (spec.md §1 Non-goals); this interface exists so the
// controller has something concrete to serialize access to, and so
// tests can substitute a MockDriver.
type Driver interface {
	Initialize() error
	DisplayImage(payload []byte) error
	Clear() error
	Sleep() error
	Wake() error
	Size() (width, height int)
}

// State is a point-in-time snapshot of the controller, safe to copy and
// serve over HTTP.
type State struct {
	Status      Status              `json:"status"`
	Provenance  *pluginapi.Provenance `json:"provenance,omitempty"`
	LastRefresh *time.Time          `json:"last_refresh,omitempty"`
	ErrorCount  int                 `json:"error_count"`
}

// ErrDisplay wraps a driver failure with the operation that triggered
// it, matching spec.md §7's display-driver error code.
type ErrDisplay struct {
	Op  string
	Err error
}

func (e *ErrDisplay) Error() string { return fmt.Sprintf("display %s failed: %v", e.Op, e.Err) }
func (e *ErrDisplay) Unwrap() error { return e.Err }

// Controller is the single writer to the panel. Every exported method
// except Size takes the same mutex, so concurrent callers (the
// orchestrator's worker and an HTTP force-refresh, say) are strictly
// serialized.
type Controller struct {
	mu     sync.Mutex
	driver Driver
	state  State
}

// New wraps driver in a Controller with an idle initial state.
func New(driver Driver) *Controller {
	return &Controller{driver: driver, state: State{Status: StatusIdle}}
}

// Initialize prepares the underlying driver. Call once at boot.
func (c *Controller) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.driver.Initialize(); err != nil {
		c.state.Status = StatusError
		c.state.ErrorCount++
		return &ErrDisplay{Op: "initialize", Err: err}
	}
	c.state.Status = StatusIdle
	return nil
}

// DisplayImage pushes frame to the panel, updating provenance and
// refresh timestamp on success.
func (c *Controller) DisplayImage(frame pluginapi.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Status = StatusUpdating
	if err := c.driver.DisplayImage(frame.Payload); err != nil {
		c.state.Status = StatusError
		c.state.ErrorCount++
		return &ErrDisplay{Op: "display_image", Err: err}
	}

	now := frame.Provenance.GeneratedAt
	if now.IsZero() {
		now = time.Now()
	}
	prov := frame.Provenance
	c.state.Provenance = &prov
	c.state.LastRefresh = &now
	c.state.Status = StatusIdle
	c.state.ErrorCount = 0
	return nil
}

// Clear blanks the panel and resets provenance.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Status = StatusUpdating
	if err := c.driver.Clear(); err != nil {
		c.state.Status = StatusError
		c.state.ErrorCount++
		return &ErrDisplay{Op: "clear", Err: err}
	}
	c.state.Provenance = nil
	c.state.Status = StatusIdle
	c.state.ErrorCount = 0
	return nil
}

// Sleep puts the panel into its low-power mode.
func (c *Controller) Sleep() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.driver.Sleep(); err != nil {
		c.state.Status = StatusError
		c.state.ErrorCount++
		return &ErrDisplay{Op: "sleep", Err: err}
	}
	c.state.Status = StatusSleeping
	return nil
}

// Wake brings the panel back from low-power mode.
func (c *Controller) Wake() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.driver.Wake(); err != nil {
		c.state.Status = StatusError
		c.state.ErrorCount++
		return &ErrDisplay{Op: "wake", Err: err}
	}
	c.state.Status = StatusIdle
	return nil
}

// Size returns the panel's pixel dimensions.
func (c *Controller) Size() (width, height int) {
	return c.driver.Size()
}

// State returns a snapshot of the controller's current status.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
