// Package orchestrator implements the Content Orchestrator: the single
// source of truth for what should be on the panel right now, and the
// component that hands off between plugin workers as the schedule
// changes hour to hour (spec.md §4.7).
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/sixthshift/artframed/internal/clockutil"
	"github.com/sixthshift/artframed/internal/display"
	"github.com/sixthshift/artframed/internal/instance"
	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/sixthshift/artframed/internal/pluginregistry"
	"github.com/sixthshift/artframed/internal/scheduling"
)

// workerJoinTimeout bounds how long Stop/switch waits for an outgoing
// plugin worker to exit before giving up on it (spec.md §4.7.3, I3).
const workerJoinTimeout = 2 * time.Second

// Orchestrator owns exactly one active plugin worker at a time (I3) and
// is the only caller of the Display Controller's DisplayImage from the
// scheduling path (I4).
type Orchestrator struct {
	schedule   *scheduling.Store
	instances  *instance.Store
	registry   *pluginregistry.Registry
	displayCtl *display.Controller
	clock      clockutil.Clock
	device     pluginapi.DeviceConfig

	cronRunner *cron.Cron

	mu               sync.Mutex
	running          bool
	paused           bool
	activeInstanceID string
	workerCancel     context.CancelFunc
	workerDone       chan struct{}
	lastSource       *ContentSource
	currentItemStart time.Time
	lastRefresh      *time.Time
}

// New wires an Orchestrator over the given stores and controller.
func New(schedule *scheduling.Store, instances *instance.Store, registry *pluginregistry.Registry, displayCtl *display.Controller, clock clockutil.Clock, device pluginapi.DeviceConfig) *Orchestrator {
	return &Orchestrator{
		schedule:   schedule,
		instances:  instances,
		registry:   registry,
		displayCtl: displayCtl,
		clock:      clock,
		device:     device,
	}
}

// GetCurrentContentSource determines what should be displayed right
// now by resolving the schedule's current slot to an instance.
func (o *Orchestrator) GetCurrentContentSource() ContentSource {
	slot, ok := o.schedule.GetCurrentSlot()
	if !ok {
		return EmptyContentSource()
	}
	return o.resolveInstanceContent(slot)
}

func (o *Orchestrator) resolveInstanceContent(slot scheduling.TimeSlot) ContentSource {
	inst, err := o.instances.Get(slot.TargetID)
	if err != nil {
		log.Error().Str("instance_id", slot.TargetID).Msg("scheduled instance not found")
		return EmptyContentSource()
	}
	if !inst.Enabled {
		log.Warn().Str("instance_id", slot.TargetID).Msg("scheduled instance is disabled")
		return EmptyContentSource()
	}

	now := o.clock.Now()
	minutesRemaining := 60 - now.Minute()
	duration := minutesRemaining*60 - now.Second()
	if duration < 60 {
		duration = 60
	}

	return ContentSource{
		Instance:        &inst,
		DurationSeconds: duration,
		SourceType:      "schedule",
		SourceID:        slot.Key(),
		SourceName:      inst.Name,
	}
}

// Start begins the hourly schedule-check cron and performs an initial
// tick so the correct plugin is active immediately rather than waiting
// for the next hour boundary.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already running")
	}
	o.running = true
	o.mu.Unlock()

	o.cronRunner = cron.New(cron.WithLocation(o.clock.Location()))
	if _, err := o.cronRunner.AddFunc("@hourly", o.Tick); err != nil {
		return fmt.Errorf("schedule hourly tick: %w", err)
	}
	o.cronRunner.Start()

	o.Tick()
	return nil
}

// Tick re-evaluates the current content source and switches the active
// plugin worker if it has changed. It is the body of the hourly cron
// entry, and is exported so tests can invoke it directly with a virtual
// clock instead of waiting on wall-clock cron ticks.
func (o *Orchestrator) Tick() {
	o.mu.Lock()
	paused := o.paused
	o.mu.Unlock()
	if paused {
		return
	}

	source := o.GetCurrentContentSource()

	var newInstanceID string
	if !source.IsEmpty() {
		newInstanceID = source.Instance.ID
	}

	o.mu.Lock()
	changed := newInstanceID != o.activeInstanceID
	o.mu.Unlock()

	if changed {
		o.switchActivePlugin(source)
	}
}

// switchActivePlugin stops whatever worker is running and starts a new
// one for source, if any. Only one worker is ever active (I3).
func (o *Orchestrator) switchActivePlugin(source ContentSource) {
	o.stopActiveWorker()

	if source.IsEmpty() {
		o.mu.Lock()
		o.activeInstanceID = ""
		o.mu.Unlock()
		log.Info().Msg("no content scheduled, display idle")
		return
	}

	inst := source.Instance
	handler, err := o.registry.New(inst.PluginID)
	if err != nil {
		log.Error().Err(err).Str("plugin_id", inst.PluginID).Msg("cannot start active plugin")
		o.mu.Lock()
		o.activeInstanceID = ""
		o.mu.Unlock()
		return
	}

	meta, _ := o.registry.Metadata(inst.PluginID)
	provenance := pluginapi.Provenance{
		PluginID:     inst.PluginID,
		PluginName:   meta.DisplayName,
		InstanceID:   inst.ID,
		InstanceName: inst.Name,
		GeneratedAt:  o.clock.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.mu.Lock()
	o.activeInstanceID = inst.ID
	o.workerCancel = cancel
	o.workerDone = done
	o.lastSource = &source
	o.currentItemStart = o.clock.Now()
	now := o.clock.Now()
	o.lastRefresh = &now
	o.mu.Unlock()

	settings := inst.Settings.Clone()
	go func() {
		defer close(done)
		if err := handler.RunActive(ctx, o.displayCtl, settings, o.device, provenance); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("instance_id", inst.ID).Msg("plugin worker exited with error")
		}
	}()

	log.Info().Str("instance_id", inst.ID).Str("plugin_id", inst.PluginID).Msg("started active plugin worker")
}

// stopActiveWorker cancels the running worker (if any) and waits up to
// workerJoinTimeout for it to exit before giving up (I3).
func (o *Orchestrator) stopActiveWorker() {
	o.mu.Lock()
	cancel := o.workerCancel
	done := o.workerDone
	o.workerCancel = nil
	o.workerDone = nil
	o.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	select {
	case <-done:
	case <-time.After(workerJoinTimeout):
		log.Warn().Msg("plugin worker did not stop within timeout, abandoning it")
	}
}

// ForceRefresh generates and pushes the current content source once,
// outside of the worker's own cadence. It is idempotent: calling it
// repeatedly simply redraws the same content.
func (o *Orchestrator) ForceRefresh(ctx context.Context) error {
	source := o.GetCurrentContentSource()
	if source.IsEmpty() {
		return fmt.Errorf("no content scheduled for current time")
	}

	inst := source.Instance
	handler, err := o.registry.New(inst.PluginID)
	if err != nil {
		return err
	}

	frame, err := handler.GenerateImage(ctx, inst.Settings, o.device)
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}

	meta, _ := o.registry.Metadata(inst.PluginID)
	frame.Provenance = pluginapi.Provenance{
		PluginID:     inst.PluginID,
		PluginName:   meta.DisplayName,
		InstanceID:   inst.ID,
		InstanceName: inst.Name,
		GeneratedAt:  o.clock.Now(),
	}

	if err := o.displayCtl.DisplayImage(frame); err != nil {
		return fmt.Errorf("display image: %w", err)
	}

	now := o.clock.Now()
	o.mu.Lock()
	o.lastSource = &source
	o.currentItemStart = now
	o.lastRefresh = &now
	o.mu.Unlock()

	return nil
}

// Pause suspends automatic hour-boundary switching without stopping the
// currently active worker.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
}

// Resume re-enables automatic hour-boundary switching and immediately
// re-evaluates the schedule.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	o.paused = false
	o.mu.Unlock()
	o.Tick()
}

// Stop halts the cron scheduler and the active worker, then marks the
// orchestrator not-running.
func (o *Orchestrator) Stop() {
	if o.cronRunner != nil {
		stopCtx := o.cronRunner.Stop()
		<-stopCtx.Done()
	}
	o.stopActiveWorker()

	o.mu.Lock()
	o.running = false
	o.activeInstanceID = ""
	o.mu.Unlock()
}

// Status reports the orchestrator's current state for the HTTP API.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	running := o.running
	paused := o.paused
	lastRefresh := o.lastRefresh
	o.mu.Unlock()

	source := o.GetCurrentContentSource()
	now := o.clock.Now()
	nextUpdate := now.Truncate(time.Hour).Add(time.Hour)

	status := Status{
		Running:     running,
		Paused:      paused,
		SourceType:  source.SourceType,
		SourceName:  source.SourceName,
		SourceID:    source.SourceID,
		HasContent:  !source.IsEmpty(),
		NextUpdate:  nextUpdate,
		LastRefresh: lastRefresh,
		CurrentTime: now,
	}
	if source.Instance != nil {
		status.ActiveInstance = &ActiveRef{ID: source.Instance.ID, Name: source.Instance.Name, PluginID: source.Instance.PluginID}
	}
	if slot, ok := o.schedule.GetCurrentSlot(); ok {
		status.CurrentSlot = &SlotRef{Day: slot.Day, Hour: slot.Hour, TargetType: string(slot.TargetType), TargetID: slot.TargetID}
	}
	return status
}
