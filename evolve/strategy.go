// Package evolve implements the selection and replacement strategies that turn
// one generation's populations and scores into the next generation.
package evolve

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/turmites/config"
	"github.com/pthm-cable/turmites/genetics"
	"github.com/pthm-cable/turmites/systems"
)

// Placement decides where agents start on a freshly seeded island.
type Placement uint8

const (
	// PlaceTeamHalves puts team A in the left half of the columns and team B in the right.
	PlaceTeamHalves Placement = iota
	// PlaceRandom scatters every agent uniformly over the grid.
	PlaceRandom
)

func (p Placement) String() string {
	if p == PlaceTeamHalves {
		return "team_halves"
	}
	return "random"
}

// Role is what happened to an island's population at a generation boundary.
type Role uint8

const (
	RoleKept Role = iota
	RoleWinner
	RoleBred
	RoleRandomized
	RoleSelected
)

func (r Role) String() string {
	switch r {
	case RoleWinner:
		return "winner"
	case RoleBred:
		return "bred"
	case RoleRandomized:
		return "randomized"
	case RoleSelected:
		return "selected"
	default:
		return "kept"
	}
}

// Outcome describes a breeding step for telemetry and display.
type Outcome struct {
	Roles  []Role // One per island
	Winner int    // Island index, -1 when the strategy has no winner
	Loser  int    // Island index, -1 when the strategy has no loser
}

// Randomized returns how many islands received a fresh random population.
func (o Outcome) Randomized() int {
	n := 0
	for _, r := range o.Roles {
		if r == RoleRandomized {
			n++
		}
	}
	return n
}

func newOutcome(islands int) Outcome {
	return Outcome{Roles: make([]Role, islands), Winner: -1, Loser: -1}
}

// Strategy is a selection and replacement policy over all islands.
// Breed never modifies its inputs; the returned slice has one population per island.
type Strategy interface {
	Name() string
	Evaluator() systems.Evaluator
	Placement() Placement
	Breed(rng *rand.Rand, pops []genetics.Population, scores []systems.Scores) ([]genetics.Population, Outcome)
}

// New builds the strategy named in the evolution config.
func New(cfg *config.Config) (Strategy, error) {
	evo := cfg.Evolution
	switch evo.Strategy {
	case config.StrategyDominance:
		return &Dominance{
			MutationRate:        evo.MutationRate,
			StagnationThreshold: evo.StagnationThreshold,
			States:              evo.States,
		}, nil
	case config.StrategyTournament:
		return &Tournament{
			MutationRate: evo.MutationRate,
			Size:         evo.TournamentSize,
		}, nil
	case config.StrategyFrozen:
		return Frozen{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", evo.Strategy, config.ErrInvalid)
	}
}
