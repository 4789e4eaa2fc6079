package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turmites/config"
	"github.com/pthm-cable/turmites/game"
	"github.com/pthm-cable/turmites/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output generation and perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = unlimited)")
	strategy := flag.String("strategy", "", "Override evolution.strategy (dominance, tournament, frozen)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *strategy != "" {
		cfg.Evolution.Strategy = *strategy
	}

	ctrl, err := game.NewController(cfg, game.Options{
		Seed:      *seed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	})
	if err != nil {
		slog.Error("failed to create controller", "error", err)
		os.Exit(1)
	}
	defer ctrl.Close()

	if *headless {
		os.Exit(runHeadless(ctrl, *maxGenerations))
	}
	runWindowed(ctrl, cfg, *maxGenerations)
}

// runHeadless steps until the generation limit or an interrupt and returns
// the exit code.
func runHeadless(ctrl *game.Controller, maxGenerations int) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := game.RunHeadless(ctx, ctrl, maxGenerations); err != nil {
		slog.Error("simulation failed", "error", err)
		return 1
	}
	return 0
}

func runWindowed(ctrl *game.Controller, cfg *config.Config, maxGenerations int) {
	width, height := int32(cfg.Screen.Width), int32(cfg.Screen.Height)
	rl.InitWindow(width, height, "Turmites")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	viewer := ui.NewViewer(width, height)
	defer viewer.Unload()

	sched := game.NewScheduler(ctrl, viewer.Update)
	sched.SetMaxGenerations(maxGenerations)
	viewer.Update(ctrl.Snapshot())

	ctx := context.Background()
	for !rl.WindowShouldClose() {
		viewer.HandleInput(sched)
		if err := sched.Frame(ctx); err != nil {
			slog.Error("simulation failed", "error", err)
			return
		}
		ctrl.RecordFrame()
		viewer.Draw(sched, ctrl.Perf())
	}
}
