package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IslandRecord is one island's result for one generation.
type IslandRecord struct {
	Generation int     `csv:"generation"`
	Island     int     `csv:"island"`
	Role       string  `csv:"role"`
	TeamA      float64 `csv:"team_a"`
	TeamB      float64 `csv:"team_b"`
	Score      float64 `csv:"score"`
	TilesA     int     `csv:"tiles_a"`
	TilesB     int     `csv:"tiles_b"`
	Misses     int     `csv:"misses"`
}

// LogValue implements slog.LogValuer for structured logging.
func (r IslandRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("island", r.Island),
		slog.String("role", r.Role),
		slog.Float64("team_a", r.TeamA),
		slog.Float64("team_b", r.TeamB),
		slog.Float64("score", r.Score),
		slog.Int("tiles_a", r.TilesA),
		slog.Int("tiles_b", r.TilesB),
	)
}

// GenerationStats summarizes all islands of one generation.
type GenerationStats struct {
	Generation int    `csv:"generation"`
	Strategy   string `csv:"strategy"`
	Ticks      int    `csv:"ticks"`
	Islands    int    `csv:"islands"`

	// Island scores under the strategy's evaluator
	BestIsland  int     `csv:"best_island"`
	WorstIsland int     `csv:"worst_island"`
	ScoreMax    float64 `csv:"score_max"`
	ScoreMin    float64 `csv:"score_min"`
	ScoreMean   float64 `csv:"score_mean"`
	ScoreStd    float64 `csv:"score_std"`
	ScoreP50    float64 `csv:"score_p50"`

	// Territory
	TeamAMean   float64 `csv:"team_a_mean"`
	TeamBMean   float64 `csv:"team_b_mean"`
	PaintedMean float64 `csv:"painted_mean"` // Fraction of grid area painted by either team
	Randomized  int     `csv:"randomized"`
	Misses      int     `csv:"misses"`
}

// Percentile returns the p-th quantile of a sorted slice, 0 if it is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Summarize computes generation statistics from island records.
// area is the grid cell count, used to normalize painted territory.
// Randomized is left for the caller, which knows the breeding outcome.
func Summarize(generation int, strategy string, ticks, area int, islands []IslandRecord) GenerationStats {
	s := GenerationStats{
		Generation:  generation,
		Strategy:    strategy,
		Ticks:       ticks,
		Islands:     len(islands),
		BestIsland:  -1,
		WorstIsland: -1,
	}
	if len(islands) == 0 {
		return s
	}

	scores := make([]float64, len(islands))
	teamA := make([]float64, len(islands))
	teamB := make([]float64, len(islands))
	painted := make([]float64, len(islands))
	for i, r := range islands {
		scores[i] = r.Score
		teamA[i] = r.TeamA
		teamB[i] = r.TeamB
		if area > 0 {
			painted[i] = float64(r.TilesA+r.TilesB) / float64(area)
		}
		s.Misses += r.Misses
	}

	s.BestIsland = islands[floats.MaxIdx(scores)].Island
	s.WorstIsland = islands[floats.MinIdx(scores)].Island
	s.ScoreMax = floats.Max(scores)
	s.ScoreMin = floats.Min(scores)
	s.ScoreMean, s.ScoreStd = stat.PopMeanStdDev(scores, nil)
	s.TeamAMean = stat.Mean(teamA, nil)
	s.TeamBMean = stat.Mean(teamB, nil)
	s.PaintedMean = stat.Mean(painted, nil)

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	s.ScoreP50 = Percentile(sorted, 0.5)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.String("strategy", s.Strategy),
		slog.Int("ticks", s.Ticks),
		slog.Int("islands", s.Islands),
		slog.Int("best_island", s.BestIsland),
		slog.Int("worst_island", s.WorstIsland),
		slog.Float64("score_max", s.ScoreMax),
		slog.Float64("score_min", s.ScoreMin),
		slog.Float64("score_mean", s.ScoreMean),
		slog.Float64("score_std", s.ScoreStd),
		slog.Float64("score_p50", s.ScoreP50),
		slog.Float64("team_a_mean", s.TeamAMean),
		slog.Float64("team_b_mean", s.TeamBMean),
		slog.Float64("painted_mean", s.PaintedMean),
		slog.Int("randomized", s.Randomized),
		slog.Int("misses", s.Misses),
	)
}

// LogStats logs the generation summary using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"strategy", s.Strategy,
		"best_island", s.BestIsland,
		"score_max", s.ScoreMax,
		"score_mean", s.ScoreMean,
		"score_min", s.ScoreMin,
		"painted_mean", s.PaintedMean,
		"randomized", s.Randomized,
	)
}
