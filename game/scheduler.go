package game

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// Speed limits for the batch size knob.
const (
	minTicksPerBatch = 1
	speedFactor      = 2
)

// Observer receives a snapshot after every frame that changed the simulation.
type Observer func(Snapshot)

// Scheduler drives a controller in batches, one batch per frame. It is the
// bridge between the controller and a shell: the viewer calls Frame once per
// rendered frame, headless mode calls Run.
type Scheduler struct {
	ctrl     *Controller
	observer Observer

	running        atomic.Bool
	ticksPerBatch  int
	maxGenerations int // 0 = unlimited
}

// NewScheduler creates a stopped scheduler for the controller. observer may be nil.
func NewScheduler(ctrl *Controller, observer Observer) *Scheduler {
	s := &Scheduler{ctrl: ctrl, observer: observer}
	s.SetTicksPerBatch(ctrl.Config().Scheduler.TicksPerBatch)
	return s
}

// Start resumes stepping on the next frame. A generation abandoned by Stop is replayed.
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		slog.Info("scheduler started", "generation", s.ctrl.Generation(), "ticks_per_batch", s.ticksPerBatch)
	}
}

// Stop halts stepping and abandons the current generation. Safe from any goroutine.
func (s *Scheduler) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.ctrl.Stop()
	}
}

// Running reports whether frames advance the simulation.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Reset stops the scheduler and starts the controller over at generation 0.
func (s *Scheduler) Reset() error {
	s.running.Store(false)
	cfg := s.ctrl.Config()
	if err := s.ctrl.ResetAll(cfg.Islands.Count, cfg.Islands.AgentsPerIsland, cfg.Grid.Size); err != nil {
		return err
	}
	s.publish()
	return nil
}

// TicksPerBatch returns the ticks advanced per frame.
func (s *Scheduler) TicksPerBatch() int {
	return s.ticksPerBatch
}

// SetTicksPerBatch sets the ticks advanced per frame, clamped to
// [1, ticks per generation]. Batch size never changes results.
func (s *Scheduler) SetTicksPerBatch(n int) {
	s.ticksPerBatch = min(max(n, minTicksPerBatch), s.ctrl.Config().Evolution.TicksPerGeneration)
}

// SpeedUp doubles the batch size.
func (s *Scheduler) SpeedUp() {
	s.SetTicksPerBatch(s.ticksPerBatch * speedFactor)
}

// SlowDown halves the batch size.
func (s *Scheduler) SlowDown() {
	s.SetTicksPerBatch(s.ticksPerBatch / speedFactor)
}

// SetMaxGenerations makes the scheduler stop once the controller has finished
// n generations (0 = unlimited).
func (s *Scheduler) SetMaxGenerations(n int) {
	s.maxGenerations = n
}

// Frame advances one batch when running. When stopped it only applies a
// pending stop so the controller settles in Idle.
func (s *Scheduler) Frame(ctx context.Context) error {
	if !s.running.Load() {
		if s.ctrl.halt() {
			s.publish()
		}
		return nil
	}

	ticks := s.ticksPerBatch
	if s.maxGenerations > 0 {
		// Never cross a generation boundary, so the limit is hit exactly
		ticks = min(ticks, s.ctrl.Config().Evolution.TicksPerGeneration-s.ctrl.Tick())
	}
	err := s.ctrl.Advance(ctx, ticks)
	switch {
	case errors.Is(err, ErrStopped):
		// Stopped and restarted between frames; the next frame replays
	case err != nil:
		return err
	}

	if s.maxGenerations > 0 && s.ctrl.Generation() >= s.maxGenerations {
		s.running.Store(false)
		slog.Info("max generations reached", "generation", s.ctrl.Generation())
	}
	s.publish()
	return nil
}

// Run starts the scheduler and advances frames until it is stopped, the
// generation limit is reached or ctx is done. Returns ctx's error in the last case.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	for s.running.Load() {
		if err := s.Frame(ctx); err != nil {
			s.running.Store(false)
			return err
		}
	}
	// Apply a stop that arrived during the last frame
	return s.Frame(ctx)
}

func (s *Scheduler) publish() {
	if s.observer != nil {
		s.observer(s.ctrl.Snapshot())
	}
}
