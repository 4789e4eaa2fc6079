// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every configuration validation error.
var ErrInvalid = errors.New("invalid config")

// Strategy names recognized by evolution.strategy.
const (
	StrategyDominance  = "dominance"
	StrategyTournament = "tournament"
	StrategyFrozen     = "frozen"
)

// Rule seeding modes recognized by evolution.seed_rules.
const (
	SeedRandom  = "random"
	SeedClassic = "classic"
)

// MaxStates bounds evolution.states. Mirrors genetics.MaxStates.
const MaxStates = 4

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Islands   IslandsConfig   `yaml:"islands"`
	Grid      GridConfig      `yaml:"grid"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// IslandsConfig holds the island layout.
type IslandsConfig struct {
	Count           int `yaml:"count"`             // Independent simulation instances
	AgentsPerIsland int `yaml:"agents_per_island"` // Split in half per team (team B takes the odd one)
}

// GridConfig holds grid dimensions.
type GridConfig struct {
	Size int `yaml:"size"` // Side of the square toroidal grid
}

// EvolutionConfig holds the genetic algorithm parameters.
type EvolutionConfig struct {
	Strategy            string  `yaml:"strategy"`             // dominance, tournament or frozen
	TicksPerGeneration  int     `yaml:"ticks_per_generation"` // Tick budget per generation
	MutationRate        float64 `yaml:"mutation_rate"`        // Per-rule resample probability
	StagnationThreshold float64 `yaml:"stagnation_threshold"` // Dominance below this randomizes the island
	TournamentSize      int     `yaml:"tournament_size"`      // Candidates per tournament draw
	States              int     `yaml:"states"`               // Internal states per turmite (1 = classic ant)
	SeedRules           string  `yaml:"seed_rules"`           // random or classic
	ShufflePopulations  bool    `yaml:"shuffle_populations"`  // Permute populations across islands each generation
}

// SchedulerConfig holds throughput knobs. None of them change simulation outcome.
type SchedulerConfig struct {
	TicksPerBatch int `yaml:"ticks_per_batch"` // Ticks advanced per frame before yielding
	Workers       int `yaml:"workers"`         // Island stepping workers (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogGenerations bool `yaml:"log_generations"` // slog summary per generation
	LogIslands     bool `yaml:"log_islands"`     // slog record per island per generation
	PerfWindow     int  `yaml:"perf_window"`     // Batches averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridArea    int // Grid.Size squared
	TeamASize   int // Agent slots of team A per island
	TeamBSize   int // Agent slots of team B per island
	TotalAgents int // Agents across all islands
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	cfg.ComputeDerived()
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Clone returns a copy that can be modified independently.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate rejects configurations the engine cannot run.
func (c *Config) Validate() error {
	switch {
	case c.Islands.Count <= 0:
		return fmt.Errorf("%w: islands.count must be positive, got %d", ErrInvalid, c.Islands.Count)
	case c.Islands.AgentsPerIsland <= 0:
		return fmt.Errorf("%w: islands.agents_per_island must be positive, got %d", ErrInvalid, c.Islands.AgentsPerIsland)
	case c.Grid.Size <= 0:
		return fmt.Errorf("%w: grid.size must be positive, got %d", ErrInvalid, c.Grid.Size)
	case c.Evolution.TicksPerGeneration <= 0:
		return fmt.Errorf("%w: evolution.ticks_per_generation must be positive, got %d", ErrInvalid, c.Evolution.TicksPerGeneration)
	case c.Evolution.MutationRate < 0 || c.Evolution.MutationRate > 1:
		return fmt.Errorf("%w: evolution.mutation_rate must be in [0,1], got %g", ErrInvalid, c.Evolution.MutationRate)
	case c.Evolution.StagnationThreshold < 0:
		return fmt.Errorf("%w: evolution.stagnation_threshold must not be negative, got %g", ErrInvalid, c.Evolution.StagnationThreshold)
	case c.Evolution.TournamentSize < 1:
		return fmt.Errorf("%w: evolution.tournament_size must be at least 1, got %d", ErrInvalid, c.Evolution.TournamentSize)
	case c.Evolution.States < 1 || c.Evolution.States > MaxStates:
		return fmt.Errorf("%w: evolution.states must be in [1,%d], got %d", ErrInvalid, MaxStates, c.Evolution.States)
	case c.Scheduler.TicksPerBatch <= 0:
		return fmt.Errorf("%w: scheduler.ticks_per_batch must be positive, got %d", ErrInvalid, c.Scheduler.TicksPerBatch)
	case c.Scheduler.Workers < 0:
		return fmt.Errorf("%w: scheduler.workers must not be negative, got %d", ErrInvalid, c.Scheduler.Workers)
	}

	switch c.Evolution.Strategy {
	case StrategyDominance, StrategyTournament, StrategyFrozen:
	default:
		return fmt.Errorf("%w: unknown evolution.strategy %q", ErrInvalid, c.Evolution.Strategy)
	}

	switch c.Evolution.SeedRules {
	case SeedRandom, SeedClassic:
	default:
		return fmt.Errorf("%w: unknown evolution.seed_rules %q", ErrInvalid, c.Evolution.SeedRules)
	}

	return nil
}

// ComputeDerived calculates values derived from loaded config.
func (c *Config) ComputeDerived() {
	c.Derived.GridArea = c.Grid.Size * c.Grid.Size
	c.Derived.TeamASize = c.Islands.AgentsPerIsland / 2
	c.Derived.TeamBSize = c.Islands.AgentsPerIsland - c.Derived.TeamASize
	c.Derived.TotalAgents = c.Islands.Count * c.Islands.AgentsPerIsland
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
