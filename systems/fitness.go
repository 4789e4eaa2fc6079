package systems

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/turmites/genetics"
)

// Scores is the outcome of evaluating one island's grid.
type Scores struct {
	Team   [genetics.NumTeams]float64 // Per team fitness under the evaluator
	Island float64                    // Island-level score the strategy ranks on
	Tiles  [genetics.NumTeams]int     // Raw painted cell count per team
}

// LogValue implements slog.LogValuer.
func (s Scores) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("team_a", s.Team[genetics.TeamA]),
		slog.Float64("team_b", s.Team[genetics.TeamB]),
		slog.Float64("island", s.Island),
		slog.Int("tiles_a", s.Tiles[genetics.TeamA]),
		slog.Int("tiles_b", s.Tiles[genetics.TeamB]),
	)
}

// Evaluator turns a grid histogram into scores.
type Evaluator interface {
	Name() string
	Evaluate(h Histogram) Scores
}

func tiles(h Histogram) [genetics.NumTeams]int {
	var t [genetics.NumTeams]int
	for team := genetics.Team(0); team < genetics.NumTeams; team++ {
		t[team] = h[team.Color()]
	}
	return t
}

// RawScore rates each team by the number of cells in its color. The island
// score is the total claimed territory.
type RawScore struct{}

func (RawScore) Name() string { return "raw" }

func (RawScore) Evaluate(h Histogram) Scores {
	s := Scores{Tiles: tiles(h)}
	for team := range s.Team {
		s.Team[team] = float64(s.Tiles[team])
	}
	s.Island = s.Team[genetics.TeamA] + s.Team[genetics.TeamB]
	return s
}

// DominanceScore rates each team by its share of painted cells and the island
// by how lopsided the split is. An island with nothing painted scores 0.
type DominanceScore struct{}

func (DominanceScore) Name() string { return "dominance" }

func (DominanceScore) Evaluate(h Histogram) Scores {
	s := Scores{Tiles: tiles(h)}
	painted := s.Tiles[genetics.TeamA] + s.Tiles[genetics.TeamB]
	if painted == 0 {
		return s
	}
	for team := range s.Team {
		s.Team[team] = float64(s.Tiles[team]) / float64(painted)
	}
	s.Island = math.Abs(s.Team[genetics.TeamA] - s.Team[genetics.TeamB])
	return s
}
