package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Islands.Count != 8 {
		t.Errorf("islands.count = %d, want 8", cfg.Islands.Count)
	}
	if cfg.Islands.AgentsPerIsland != 24 {
		t.Errorf("islands.agents_per_island = %d, want 24", cfg.Islands.AgentsPerIsland)
	}
	if cfg.Evolution.Strategy != StrategyDominance {
		t.Errorf("evolution.strategy = %q, want %q", cfg.Evolution.Strategy, StrategyDominance)
	}
	if cfg.Evolution.MutationRate != 0.01 {
		t.Errorf("evolution.mutation_rate = %v, want 0.01", cfg.Evolution.MutationRate)
	}
	if cfg.Derived.GridArea != 64*64 {
		t.Errorf("derived grid area = %d, want %d", cfg.Derived.GridArea, 64*64)
	}
	if cfg.Derived.TeamASize != 12 || cfg.Derived.TeamBSize != 12 {
		t.Errorf("team sizes = %d/%d, want 12/12", cfg.Derived.TeamASize, cfg.Derived.TeamBSize)
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("islands:\n  count: 4\n  agents_per_island: 7\nevolution:\n  strategy: tournament\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Islands.Count != 4 {
		t.Errorf("islands.count = %d, want 4", cfg.Islands.Count)
	}
	if cfg.Evolution.Strategy != StrategyTournament {
		t.Errorf("strategy = %q, want tournament", cfg.Evolution.Strategy)
	}
	// Untouched keys keep their defaults
	if cfg.Grid.Size != 64 {
		t.Errorf("grid.size = %d, want default 64", cfg.Grid.Size)
	}
	// Odd agent count: team B takes the extra slot
	if cfg.Derived.TeamASize != 3 || cfg.Derived.TeamBSize != 4 {
		t.Errorf("team sizes = %d/%d, want 3/4", cfg.Derived.TeamASize, cfg.Derived.TeamBSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero islands", func(c *Config) { c.Islands.Count = 0 }},
		{"zero agents", func(c *Config) { c.Islands.AgentsPerIsland = 0 }},
		{"zero grid", func(c *Config) { c.Grid.Size = 0 }},
		{"negative grid", func(c *Config) { c.Grid.Size = -3 }},
		{"zero ticks", func(c *Config) { c.Evolution.TicksPerGeneration = 0 }},
		{"rate above one", func(c *Config) { c.Evolution.MutationRate = 1.5 }},
		{"negative threshold", func(c *Config) { c.Evolution.StagnationThreshold = -0.1 }},
		{"zero tournament", func(c *Config) { c.Evolution.TournamentSize = 0 }},
		{"too many states", func(c *Config) { c.Evolution.States = MaxStates + 1 }},
		{"zero batch", func(c *Config) { c.Scheduler.TicksPerBatch = 0 }},
		{"negative workers", func(c *Config) { c.Scheduler.Workers = -1 }},
		{"unknown strategy", func(c *Config) { c.Evolution.Strategy = "roulette" }},
		{"unknown seed mode", func(c *Config) { c.Evolution.SeedRules = "handmade" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Islands.Count = 3
	cfg.Evolution.SeedRules = SeedClassic

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if loaded.Islands.Count != 3 || loaded.Evolution.SeedRules != SeedClassic {
		t.Errorf("round trip lost values: islands=%d seed=%q", loaded.Islands.Count, loaded.Evolution.SeedRules)
	}
}
