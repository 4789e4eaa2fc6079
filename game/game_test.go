package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/turmites/config"
	"github.com/pthm-cable/turmites/evolve"
	"github.com/pthm-cable/turmites/genetics"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Islands.Count = 3
	cfg.Islands.AgentsPerIsland = 4
	cfg.Grid.Size = 16
	cfg.Evolution.TicksPerGeneration = 200
	cfg.Scheduler.TicksPerBatch = 50
	cfg.Scheduler.Workers = 1
	cfg.Telemetry.LogGenerations = false
	return cfg
}

func newTestController(t *testing.T, cfg *config.Config) *Controller {
	t.Helper()
	c, err := NewController(cfg, Options{Seed: 42})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sameCells(t *testing.T, a, b Snapshot) {
	t.Helper()
	for i := range a.Islands {
		ca, cb := a.Islands[i].Cells, b.Islands[i].Cells
		for j := range ca {
			if ca[j] != cb[j] {
				t.Fatalf("island %d cell %d differs: %d vs %d", i, j, ca[j], cb[j])
			}
		}
		aa, ab := a.Islands[i].Agents, b.Islands[i].Agents
		for j := range aa {
			if aa[j] != ab[j] {
				t.Fatalf("island %d agent %d differs: %+v vs %+v", i, j, aa[j], ab[j])
			}
		}
	}
}

func sameFitness(t *testing.T, a, b []IslandFitness) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("fitness lengths %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("island %d fitness %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestStepOneGeneration(t *testing.T) {
	c := newTestController(t, testConfig())

	if c.State() != StateStepping || c.Generation() != 0 || c.Tick() != 0 {
		t.Fatalf("fresh controller: state %v generation %d tick %d", c.State(), c.Generation(), c.Tick())
	}

	fitness, err := c.StepOneGeneration(context.Background())
	if err != nil {
		t.Fatalf("StepOneGeneration: %v", err)
	}
	if len(fitness) != 3 {
		t.Fatalf("got %d island results, want 3", len(fitness))
	}
	for i, f := range fitness {
		if f.Island != i {
			t.Errorf("result %d is for island %d", i, f.Island)
		}
		if f.Scores.Island < 0 || f.Scores.Island > 1 {
			t.Errorf("island %d dominance %v outside [0,1]", i, f.Scores.Island)
		}
	}
	if c.Generation() != 1 || c.Tick() != 0 || c.State() != StateStepping {
		t.Errorf("after one generation: state %v generation %d tick %d", c.State(), c.Generation(), c.Tick())
	}

	// The next generation starts on cleared grids
	for _, is := range c.Snapshot().Islands {
		for _, cell := range is.Cells {
			if cell != genetics.Background {
				t.Fatalf("island %d not cleared after reseeding", is.Index)
			}
		}
	}
}

func TestBatchSizeDoesNotChangeResults(t *testing.T) {
	small := testConfig()
	small.Scheduler.TicksPerBatch = 7
	large := testConfig()
	large.Scheduler.TicksPerBatch = 200

	a := newTestController(t, small)
	b := newTestController(t, large)

	for gen := 0; gen < 3; gen++ {
		fa, err := a.StepOneGeneration(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		fb, err := b.StepOneGeneration(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		sameFitness(t, fa, fb)
	}

	// Mid-generation states match too
	if err := a.Advance(context.Background(), 123); err != nil {
		t.Fatal(err)
	}
	if err := b.Advance(context.Background(), 123); err != nil {
		t.Fatal(err)
	}
	sameCells(t, a.Snapshot(), b.Snapshot())
}

func TestParallelMatchesSequential(t *testing.T) {
	seq := testConfig()
	par := testConfig()
	par.Scheduler.Workers = 4
	par.Islands.Count = 3

	a := newTestController(t, seq)
	b := newTestController(t, par)

	for gen := 0; gen < 2; gen++ {
		fa, err := a.StepOneGeneration(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		fb, err := b.StepOneGeneration(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		sameFitness(t, fa, fb)
	}
	if err := a.Advance(context.Background(), 77); err != nil {
		t.Fatal(err)
	}
	if err := b.Advance(context.Background(), 77); err != nil {
		t.Fatal(err)
	}
	sameCells(t, a.Snapshot(), b.Snapshot())
}

func TestAdvanceCrossesGenerations(t *testing.T) {
	c := newTestController(t, testConfig())

	if err := c.Advance(context.Background(), 450); err != nil {
		t.Fatal(err)
	}
	if c.Generation() != 2 || c.Tick() != 50 {
		t.Errorf("generation %d tick %d, want 2 and 50", c.Generation(), c.Tick())
	}
}

func TestStopAbandonsGeneration(t *testing.T) {
	c := newTestController(t, testConfig())
	ctx := context.Background()

	if err := c.Advance(ctx, 60); err != nil {
		t.Fatal(err)
	}
	c.Stop()
	if err := c.Advance(ctx, 10); !errors.Is(err, ErrStopped) {
		t.Fatalf("Advance after Stop = %v, want ErrStopped", err)
	}
	if c.State() != StateIdle || c.Tick() != 0 || c.Generation() != 0 {
		t.Errorf("after stop: state %v tick %d generation %d", c.State(), c.Tick(), c.Generation())
	}
	for _, is := range c.Snapshot().Islands {
		if len(is.Agents) != 0 {
			t.Errorf("island %d still has %d agents while idle", is.Index, len(is.Agents))
		}
	}

	// Advancing from idle replays the generation from tick 0
	if err := c.Advance(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if c.State() != StateStepping || c.Tick() != 10 {
		t.Errorf("after restart: state %v tick %d", c.State(), c.Tick())
	}
}

func TestAdvanceHonorsContext(t *testing.T) {
	c := newTestController(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Advance(ctx, 100); !errors.Is(err, context.Canceled) {
		t.Errorf("Advance = %v, want context.Canceled", err)
	}
	if _, err := c.StepOneGeneration(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("StepOneGeneration = %v, want context.Canceled", err)
	}
	if c.Tick() != 0 {
		t.Errorf("tick = %d, want 0", c.Tick())
	}
}

func TestResetAll(t *testing.T) {
	c := newTestController(t, testConfig())
	if _, err := c.StepOneGeneration(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := c.ResetAll(2, 6, 8); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	snap := c.Snapshot()
	if snap.Generation != 0 || snap.Tick != 0 || snap.State != StateStepping {
		t.Errorf("after reset: %+v", snap)
	}
	if len(snap.Islands) != 2 || snap.Islands[0].Size != 8 || len(snap.Islands[0].Agents) != 6 {
		t.Errorf("reset layout: %d islands, size %d, %d agents",
			len(snap.Islands), snap.Islands[0].Size, len(snap.Islands[0].Agents))
	}
	if len(c.LastFitness()) != 0 {
		t.Error("reset kept the previous generation's fitness")
	}

	tests := []struct {
		name                   string
		islands, agents, sizeN int
	}{
		{"no islands", 0, 4, 8},
		{"no agents", 2, 0, 8},
		{"no grid", 2, 4, 0},
		{"negative", -1, 4, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.ResetAll(tt.islands, tt.agents, tt.sizeN); !errors.Is(err, config.ErrInvalid) {
				t.Errorf("ResetAll(%d, %d, %d) = %v, want ErrInvalid", tt.islands, tt.agents, tt.sizeN, err)
			}
		})
	}
	// A rejected reset leaves the controller untouched
	if len(c.Snapshot().Islands) != 2 {
		t.Error("rejected reset changed the island count")
	}
}

func TestNewControllerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Evolution.TicksPerGeneration = 0
	if _, err := NewController(cfg, Options{Seed: 1}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("NewController = %v, want ErrInvalid", err)
	}
	if _, err := NewController(nil, Options{}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("NewController(nil) = %v, want ErrInvalid", err)
	}
}

func TestTeamHalvesPlacement(t *testing.T) {
	cfg := testConfig()
	cfg.Islands.AgentsPerIsland = 20
	c := newTestController(t, cfg)

	for _, is := range c.Snapshot().Islands {
		for i, a := range is.Agents {
			wantTeam := genetics.TeamOf(20, i)
			if a.Team != wantTeam {
				t.Fatalf("agent %d team %v, want %v", i, a.Team, wantTeam)
			}
			half := is.Size / 2
			if a.Team == genetics.TeamA && a.X >= half {
				t.Errorf("team A agent at column %d, want < %d", a.X, half)
			}
			if a.Team == genetics.TeamB && a.X < half {
				t.Errorf("team B agent at column %d, want >= %d", a.X, half)
			}
			if a.State != 0 {
				t.Errorf("agent %d starts in state %d", i, a.State)
			}
		}
	}
}

func TestFrozenClassicKeepsPopulations(t *testing.T) {
	cfg := testConfig()
	cfg.Evolution.Strategy = config.StrategyFrozen
	cfg.Evolution.SeedRules = config.SeedClassic
	cfg.Evolution.ShufflePopulations = false
	c := newTestController(t, cfg)

	before := c.Populations()
	for gen := 0; gen < 2; gen++ {
		fitness, err := c.StepOneGeneration(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		for _, f := range fitness {
			if f.Role != evolve.RoleKept {
				t.Errorf("island %d role %v, want kept", f.Island, f.Role)
			}
		}
	}
	after := c.Populations()
	for i := range before {
		for s := range before[i].Slots {
			if before[i].Slots[s] != after[i].Slots[s] {
				t.Fatalf("island %d slot %d changed under the frozen strategy", i, s)
			}
		}
	}
}

func TestOnGenerationAndOutput(t *testing.T) {
	dir := t.TempDir()
	var results []GenerationResult

	c, err := NewController(testConfig(), Options{
		Seed:      7,
		OutputDir: dir,
		OnGeneration: func(r GenerationResult) {
			results = append(results, r)
		},
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.StepOneGeneration(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(results) != 2 || results[0].Generation != 0 || results[1].Generation != 1 {
		t.Fatalf("callbacks = %+v", results)
	}
	if results[0].Stats.Islands != 3 || results[0].Outcome.Loser < 0 {
		t.Errorf("result stats %+v outcome %+v", results[0].Stats, results[0].Outcome)
	}
	for _, name := range []string{"generations.csv", "islands.csv", "perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestSchedulerFrames(t *testing.T) {
	c := newTestController(t, testConfig())
	var snaps []Snapshot
	s := NewScheduler(c, func(snap Snapshot) { snaps = append(snaps, snap) })
	ctx := context.Background()

	// Stopped frames do nothing
	if err := s.Frame(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Tick() != 0 || len(snaps) != 0 {
		t.Fatalf("stopped frame advanced to tick %d", c.Tick())
	}

	s.Start()
	if err := s.Frame(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Tick() != 50 || len(snaps) != 1 || snaps[0].Tick != 50 {
		t.Errorf("after one frame: tick %d, %d snapshots", c.Tick(), len(snaps))
	}

	s.SpeedUp()
	if s.TicksPerBatch() != 100 {
		t.Errorf("speed up = %d, want 100", s.TicksPerBatch())
	}
	s.SetTicksPerBatch(1 << 20)
	if s.TicksPerBatch() != 200 {
		t.Errorf("batch clamp = %d, want ticks per generation", s.TicksPerBatch())
	}
	s.SetTicksPerBatch(1)
	s.SlowDown()
	if s.TicksPerBatch() != 1 {
		t.Errorf("slow down below 1 = %d", s.TicksPerBatch())
	}

	s.Stop()
	if s.Running() {
		t.Fatal("still running after Stop")
	}
	if err := s.Frame(ctx); err != nil {
		t.Fatal(err)
	}
	if c.State() != StateIdle {
		t.Errorf("state after stop frame = %v, want idle", c.State())
	}

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if c.State() != StateStepping || c.Generation() != 0 || s.Running() {
		t.Errorf("after reset: state %v generation %d running %v", c.State(), c.Generation(), s.Running())
	}
}

func TestSchedulerRunMaxGenerations(t *testing.T) {
	c := newTestController(t, testConfig())
	s := NewScheduler(c, nil)
	s.SetMaxGenerations(3)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Generation() != 3 {
		t.Errorf("generation = %d, want 3", c.Generation())
	}
	if s.Running() {
		t.Error("scheduler still running")
	}
}

func TestSchedulerMaxGenerationsLargeBatch(t *testing.T) {
	cfg := testConfig()
	cfg.Evolution.TicksPerGeneration = 10
	cfg.Scheduler.TicksPerBatch = 100
	c := newTestController(t, cfg)

	s := NewScheduler(c, nil)
	if s.TicksPerBatch() != 10 {
		t.Errorf("initial batch = %d, want clamped to 10", s.TicksPerBatch())
	}
	s.SetMaxGenerations(3)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Generation() != 3 || c.Tick() != 0 {
		t.Errorf("generation %d tick %d, want 3 and 0", c.Generation(), c.Tick())
	}

	// Mid-generation the limited frame stops at the boundary
	s.SetMaxGenerations(4)
	if err := c.Advance(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	s.Start()
	if err := s.Frame(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Generation() != 4 || c.Tick() != 0 || s.Running() {
		t.Errorf("generation %d tick %d running %v, want 4, 0, stopped", c.Generation(), c.Tick(), s.Running())
	}
}

func TestStatsCountRandomizedIslands(t *testing.T) {
	cfg := testConfig()
	cfg.Evolution.Strategy = config.StrategyDominance
	// Every island scores below this, so all but the loser restart
	cfg.Evolution.StagnationThreshold = 2
	var results []GenerationResult
	c, err := NewController(cfg, Options{
		Seed:         3,
		OnGeneration: func(r GenerationResult) { results = append(results, r) },
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if _, err := c.StepOneGeneration(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("%d callbacks, want 1", len(results))
	}
	r := results[0]
	if r.Stats.Randomized != 2 || r.Stats.Randomized != r.Outcome.Randomized() {
		t.Errorf("stats randomized %d, outcome %d, want 2", r.Stats.Randomized, r.Outcome.Randomized())
	}
}

func TestRunHeadless(t *testing.T) {
	t.Run("finishes at the limit", func(t *testing.T) {
		c, err := NewController(testConfig(), Options{Seed: 5, OutputDir: t.TempDir()})
		if err != nil {
			t.Fatal(err)
		}
		if err := RunHeadless(context.Background(), c, 2); err != nil {
			t.Fatalf("RunHeadless: %v", err)
		}
		if c.Generation() != 2 {
			t.Errorf("generation = %d, want 2", c.Generation())
		}
	})

	t.Run("cancelled is not an error", func(t *testing.T) {
		c, err := NewController(testConfig(), Options{Seed: 5})
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := RunHeadless(ctx, c, 0); err != nil {
			t.Errorf("RunHeadless = %v, want nil", err)
		}
	})

	t.Run("failure still closes output", func(t *testing.T) {
		c, err := NewController(testConfig(), Options{Seed: 5, OutputDir: t.TempDir()})
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()

		if err := RunHeadless(ctx, c, 0); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("RunHeadless = %v, want DeadlineExceeded", err)
		}
		// The files were already closed by the failed run
		if err := c.Close(); !errors.Is(err, os.ErrClosed) {
			t.Errorf("second Close = %v, want os.ErrClosed", err)
		}
	})
}
