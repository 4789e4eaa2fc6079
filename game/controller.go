// Package game runs the islands and the generational loop around them.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/turmites/config"
	"github.com/pthm-cable/turmites/evolve"
	"github.com/pthm-cable/turmites/genetics"
	"github.com/pthm-cable/turmites/systems"
	"github.com/pthm-cable/turmites/telemetry"
)

// ErrStopped is returned when a Stop request interrupts a generation.
var ErrStopped = errors.New("controller stopped")

// State is the controller's position in the generational cycle.
type State uint8

const (
	StateIdle State = iota
	StateSeeding
	StateStepping
	StateEvaluating
	StateBreeding
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateStepping:
		return "stepping"
	case StateEvaluating:
		return "evaluating"
	case StateBreeding:
		return "breeding"
	default:
		return "idle"
	}
}

// Options configures a controller beyond the simulation config.
type Options struct {
	Seed      int64  // RNG seed (0 = time-based)
	OutputDir string // Directory for CSV logs and config snapshot (empty = disabled)
	LogStats  bool   // Log generation summaries and perf via slog

	// Called after every finished generation, on the driving goroutine
	OnGeneration func(GenerationResult)
}

// IslandFitness is one island's result for a finished generation.
type IslandFitness struct {
	Island int
	Scores systems.Scores
	Role   evolve.Role
}

// GenerationResult describes a finished generation.
type GenerationResult struct {
	Generation int // The generation that was played
	Islands    []IslandFitness
	Outcome    evolve.Outcome
	Stats      telemetry.GenerationStats
	Bookmarks  []telemetry.Bookmark
}

// Controller owns the islands and their populations and runs the cycle
// Seeding, Stepping, Evaluating, Breeding. A single goroutine drives it;
// Stop may be called from any goroutine.
type Controller struct {
	cfg      *config.Config
	rng      *rand.Rand
	seed     int64
	strategy evolve.Strategy
	pool     *workerPool

	islands []*Island
	pops    []genetics.Population

	state      State
	generation int
	tick       int
	stopReq    atomic.Bool

	// Results of the last finished generation
	lastFitness []IslandFitness
	lastOutcome evolve.Outcome
	misses      []int

	// Telemetry
	outputManager *telemetry.OutputManager
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	logStats      bool
	onGeneration  func(GenerationResult)
}

// NewController validates the config and creates a controller at generation 0
// with freshly seeded islands.
func NewController(cfg *config.Config, opts Options) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", config.ErrInvalid)
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	strategy, err := evolve.New(cfg)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		outputManager.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	c := &Controller{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(seed)),
		seed:          seed,
		strategy:      strategy,
		pool:          newWorkerPool(cfg.Scheduler.Workers),
		outputManager: outputManager,
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		logStats:      opts.LogStats,
		onGeneration:  opts.OnGeneration,
	}

	if err := c.ResetAll(cfg.Islands.Count, cfg.Islands.AgentsPerIsland, cfg.Grid.Size); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// ResetAll discards every island and population and starts over at
// generation 0 with fresh populations, seeded and ready to step.
func (c *Controller) ResetAll(numIslands, agentsPerIsland, gridSize int) error {
	next := c.cfg.Clone()
	next.Islands.Count = numIslands
	next.Islands.AgentsPerIsland = agentsPerIsland
	next.Grid.Size = gridSize
	if err := next.Validate(); err != nil {
		return err
	}
	next.ComputeDerived()

	c.state = StateIdle
	c.cfg = next
	c.stopReq.Store(false)
	c.generation = 0
	c.tick = 0
	c.lastFitness = nil
	c.lastOutcome = evolve.Outcome{Winner: -1, Loser: -1}
	c.bookmarks.Reset()

	seeder := c.seeder()
	c.islands = make([]*Island, numIslands)
	c.pops = make([]genetics.Population, numIslands)
	c.misses = make([]int, numIslands)
	for i := range c.islands {
		c.islands[i] = NewIsland(i, gridSize)
		c.pops[i] = seeder(c.rng)
	}

	c.state = StateSeeding
	c.seedIslands(false)

	slog.Info("populations reset",
		"islands", numIslands,
		"agents_per_island", agentsPerIsland,
		"grid_size", gridSize,
		"strategy", c.strategy.Name(),
		"seed", c.seed,
	)
	return nil
}

func (c *Controller) seeder() genetics.Seeder {
	evo := c.cfg.Evolution
	if evo.SeedRules == config.SeedClassic {
		return genetics.ClassicSeeder(c.cfg.Islands.AgentsPerIsland)
	}
	return genetics.RandomSeeder(c.cfg.Islands.AgentsPerIsland, evo.States)
}

// seedIslands places the agents of every population on its island.
func (c *Controller) seedIslands(shuffle bool) {
	c.state = StateSeeding
	if shuffle && c.cfg.Evolution.ShufflePopulations {
		c.rng.Shuffle(len(c.pops), func(i, j int) {
			c.pops[i], c.pops[j] = c.pops[j], c.pops[i]
		})
	}
	for i, is := range c.islands {
		is.Seed(c.rng, c.pops[i], c.strategy.Placement())
		c.misses[i] = 0
	}
	c.tick = 0
	c.state = StateStepping
}

// Stop requests the controller to abandon the current generation. It takes
// effect at the next batch boundary, leaving the controller Idle.
func (c *Controller) Stop() {
	c.stopReq.Store(true)
}

// halt abandons the current generation if a stop was requested.
func (c *Controller) halt() bool {
	if !c.stopReq.CompareAndSwap(true, false) {
		return false
	}
	for _, is := range c.islands {
		is.Clear()
	}
	c.tick = 0
	c.state = StateIdle
	slog.Info("generation abandoned", "generation", c.generation)
	return true
}

// Advance moves the simulation forward by up to ticks, crossing generation
// boundaries as needed. From Idle it reseeds and replays the abandoned
// generation. It returns ErrStopped if a stop request interrupted it and the
// context error if ctx is done; both are checked between batches.
func (c *Controller) Advance(ctx context.Context, ticks int) error {
	for ticks > 0 {
		if c.halt() {
			return ErrStopped
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("advancing generation %d: %w", c.generation, err)
		}
		n := min(ticks, c.cfg.Scheduler.TicksPerBatch)
		c.runBatch(n)
		ticks -= n
	}
	return nil
}

// runBatch advances by n ticks, finishing and reseeding generations on the way.
func (c *Controller) runBatch(n int) {
	c.perfCollector.StartBatch()
	if c.state == StateIdle {
		c.perfCollector.StartPhase(telemetry.PhaseSeeding)
		c.seedIslands(true)
	}

	stepped := 0
	for n > 0 {
		step := min(n, c.cfg.Evolution.TicksPerGeneration-c.tick)
		c.perfCollector.StartPhase(telemetry.PhaseStepping)
		c.pool.stepAll(c.islands, step)
		c.tick += step
		n -= step
		stepped += step

		if c.tick >= c.cfg.Evolution.TicksPerGeneration {
			c.finishGeneration()
			c.perfCollector.StartPhase(telemetry.PhaseSeeding)
			c.seedIslands(true)
		}
	}
	c.perfCollector.EndBatch(stepped)
}

// StepOneGeneration plays out the current generation (from its current tick,
// reseeding first when Idle), evaluates and breeds it, and returns the
// fitness of every island for the generation just finished.
func (c *Controller) StepOneGeneration(ctx context.Context) ([]IslandFitness, error) {
	gen := c.generation
	for c.generation == gen {
		if c.halt() {
			return nil, ErrStopped
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stepping generation %d: %w", gen, err)
		}
		remaining := c.cfg.Evolution.TicksPerGeneration - c.tick
		if c.state == StateIdle {
			remaining = c.cfg.Evolution.TicksPerGeneration
		}
		c.runBatch(min(remaining, c.cfg.Scheduler.TicksPerBatch))
	}
	return c.LastFitness(), nil
}

// finishGeneration evaluates every island and breeds the next populations.
func (c *Controller) finishGeneration() {
	c.state = StateEvaluating
	c.perfCollector.StartPhase(telemetry.PhaseEvaluating)
	eval := c.strategy.Evaluator()
	scores := make([]systems.Scores, len(c.islands))
	for i, is := range c.islands {
		scores[i] = is.Evaluate(eval)
		c.misses[i] = is.TakeMisses()
	}

	c.state = StateBreeding
	c.perfCollector.StartPhase(telemetry.PhaseBreeding)
	next, outcome := c.strategy.Breed(c.rng, c.pops, scores)

	fitness := make([]IslandFitness, len(scores))
	for i, s := range scores {
		fitness[i] = IslandFitness{Island: i, Scores: s, Role: outcome.Roles[i]}
	}

	played := c.generation
	c.pops = next
	c.lastFitness = fitness
	c.lastOutcome = outcome
	c.generation++

	c.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	c.recordGeneration(played, fitness, outcome)
}

// LastFitness returns the island results of the last finished generation.
func (c *Controller) LastFitness() []IslandFitness {
	out := make([]IslandFitness, len(c.lastFitness))
	copy(out, c.lastFitness)
	return out
}

// Populations returns the populations that will play the next seeding.
func (c *Controller) Populations() []genetics.Population {
	out := make([]genetics.Population, len(c.pops))
	for i, p := range c.pops {
		out[i] = p.Clone()
	}
	return out
}

// State returns the controller state.
func (c *Controller) State() State {
	return c.state
}

// Generation returns the number of finished generations.
func (c *Controller) Generation() int {
	return c.generation
}

// Tick returns the ticks played in the current generation.
func (c *Controller) Tick() int {
	return c.tick
}

// Seed returns the RNG seed the controller was created with.
func (c *Controller) Seed() int64 {
	return c.seed
}

// Config returns the controller's effective config.
func (c *Controller) Config() *config.Config {
	return c.cfg
}

// Strategy returns the evolution strategy.
func (c *Controller) Strategy() evolve.Strategy {
	return c.strategy
}

// Perf returns the performance stats over the recent batches.
func (c *Controller) Perf() telemetry.PerfStats {
	return c.perfCollector.Stats()
}

// RecordFrame feeds frame timing from the viewer into the perf stats.
func (c *Controller) RecordFrame() {
	c.perfCollector.RecordFrame()
}

// Snapshot copies the current state for display.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:              c.state,
		Generation:         c.generation,
		Tick:               c.tick,
		TicksPerGeneration: c.cfg.Evolution.TicksPerGeneration,
		Strategy:           c.strategy.Name(),
		Islands:            make([]IslandSnapshot, len(c.islands)),
	}
	for i, is := range c.islands {
		snap := IslandSnapshot{
			Index:  i,
			Size:   is.Grid().Size(),
			Cells:  is.Grid().Cells(),
			Agents: is.Agents(),
		}
		if i < len(c.lastFitness) {
			snap.Scores = c.lastFitness[i].Scores
			snap.Role = c.lastFitness[i].Role
		}
		s.Islands[i] = snap
	}
	return s
}

// Close stops the worker pool and closes telemetry output.
func (c *Controller) Close() error {
	c.pool.stopWorkers()
	return c.outputManager.Close()
}
