package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// RunHeadless steps the controller until the generation limit (0 = unlimited)
// or until ctx is cancelled, then closes it. A cancelled run is not an error.
// The controller is closed on every path.
func RunHeadless(ctx context.Context, ctrl *Controller, maxGenerations int) error {
	sched := NewScheduler(ctrl, nil)
	sched.SetMaxGenerations(maxGenerations)

	slog.Info("starting headless simulation",
		"seed", ctrl.Seed(),
		"strategy", ctrl.Strategy().Name(),
		"max_generations", maxGenerations,
		"ticks_per_batch", sched.TicksPerBatch(),
	)

	var runErr error
	err := sched.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Info("interrupted", "generation", ctrl.Generation(), "tick", ctrl.Tick())
	case err != nil:
		runErr = fmt.Errorf("running simulation: %w", err)
	default:
		slog.Info("simulation finished", "generation", ctrl.Generation())
	}

	if err := ctrl.Close(); err != nil {
		return errors.Join(runErr, fmt.Errorf("closing output: %w", err))
	}
	return runErr
}
