package game

import (
	"log/slog"

	"github.com/pthm-cable/turmites/evolve"
	"github.com/pthm-cable/turmites/telemetry"
)

// recordGeneration summarizes a finished generation, writes it to the output
// files and checks for bookmarks. Output errors are logged, never fatal.
func (c *Controller) recordGeneration(generation int, fitness []IslandFitness, outcome evolve.Outcome) {
	records := islandRecords(generation, fitness, c.misses)
	stats := telemetry.Summarize(
		generation,
		c.strategy.Name(),
		c.cfg.Evolution.TicksPerGeneration,
		c.cfg.Derived.GridArea,
		records,
	)
	stats.Randomized = outcome.Randomized()
	bookmarks := c.bookmarks.Check(stats, records)

	if c.cfg.Telemetry.LogGenerations || c.logStats {
		stats.LogStats()
	}
	if c.cfg.Telemetry.LogIslands {
		for _, r := range records {
			slog.Info("island", "generation", generation, "result", r)
		}
	}
	if c.logStats {
		c.perfCollector.Stats().LogStats()
		for _, bm := range bookmarks {
			bm.LogBookmark()
		}
	}

	if c.outputManager != nil {
		if err := c.outputManager.WriteGeneration(stats); err != nil {
			slog.Error("failed to write generation", "error", err)
		}
		if err := c.outputManager.WriteIslands(records); err != nil {
			slog.Error("failed to write islands", "error", err)
		}
		if err := c.outputManager.WritePerf(c.perfCollector.Stats(), generation); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		for _, bm := range bookmarks {
			if err := c.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}

	if c.onGeneration != nil {
		c.onGeneration(GenerationResult{
			Generation: generation,
			Islands:    fitness,
			Outcome:    outcome,
			Stats:      stats,
			Bookmarks:  bookmarks,
		})
	}
}

func islandRecords(generation int, fitness []IslandFitness, misses []int) []telemetry.IslandRecord {
	records := make([]telemetry.IslandRecord, len(fitness))
	for i, f := range fitness {
		records[i] = telemetry.IslandRecord{
			Generation: generation,
			Island:     f.Island,
			Role:       f.Role.String(),
			TeamA:      f.Scores.Team[0],
			TeamB:      f.Scores.Team[1],
			Score:      f.Scores.Island,
			TilesA:     f.Scores.Tiles[0],
			TilesB:     f.Scores.Tiles[1],
		}
		if i < len(misses) {
			records[i].Misses = misses[i]
		}
	}
	return records
}
