package evolve

import (
	"math/rand"

	"github.com/pthm-cable/turmites/genetics"
	"github.com/pthm-cable/turmites/systems"
)

// Dominance rewards islands where one team clearly beats the other.
//
// The island with the highest dominance score is the winner and the one with
// the lowest is the loser (first index on ties). The loser's population is
// replaced by children of the winner. Any other island scoring below the
// stagnation threshold is restarted from random rules. Everything else
// carries over.
type Dominance struct {
	MutationRate        float64
	StagnationThreshold float64
	States              int // Internal states of the random rules used for restarts
}

func (d *Dominance) Name() string { return "dominance" }

func (d *Dominance) Evaluator() systems.Evaluator { return systems.DominanceScore{} }

func (d *Dominance) Placement() Placement { return PlaceTeamHalves }

func (d *Dominance) Breed(rng *rand.Rand, pops []genetics.Population, scores []systems.Scores) ([]genetics.Population, Outcome) {
	out := newOutcome(len(pops))
	next := make([]genetics.Population, len(pops))
	copy(next, pops)
	if len(pops) == 0 {
		return next, out
	}

	island := make([]float64, len(scores))
	for i, s := range scores {
		island[i] = s.Island
	}
	winner := genetics.ArgMax(island)
	loser := genetics.ArgMin(island)
	out.Winner, out.Loser = winner, loser

	for i, score := range island {
		if i != loser && score < d.StagnationThreshold {
			next[i] = genetics.RandomPopulation(rng, pops[i].Len(), d.states())
			out.Roles[i] = RoleRandomized
		}
	}
	// A stagnant winner is restarted too, but the loser still breeds from
	// the winning rules of the generation just played.
	if out.Roles[winner] == RoleKept {
		out.Roles[winner] = RoleWinner
	}

	next[loser] = d.offspring(rng, pops[winner], pops[loser].Len())
	out.Roles[loser] = RoleBred
	return next, out
}

// offspring breeds n slots from parents drawn uniformly from any slot of src.
func (d *Dominance) offspring(rng *rand.Rand, src genetics.Population, n int) genetics.Population {
	b := genetics.Breeder{MutationRate: d.MutationRate}
	child := genetics.Population{Slots: make([]*genetics.RuleTable, n)}
	for i := range child.Slots {
		p1 := src.Slots[rng.Intn(src.Len())]
		p2 := src.Slots[rng.Intn(src.Len())]
		child.Slots[i] = b.Child(rng, p1, p2)
	}
	return child
}

func (d *Dominance) states() int {
	if d.States < 1 {
		return 1
	}
	return d.States
}
