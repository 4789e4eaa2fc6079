package evolve

import (
	"math/rand"

	"github.com/pthm-cable/turmites/genetics"
	"github.com/pthm-cable/turmites/systems"
)

// Frozen never changes a population. Paired with classic rules it replays the
// hand-written two-team demo every generation.
type Frozen struct{}

func (Frozen) Name() string { return "frozen" }

func (Frozen) Evaluator() systems.Evaluator { return systems.DominanceScore{} }

func (Frozen) Placement() Placement { return PlaceRandom }

func (Frozen) Breed(_ *rand.Rand, pops []genetics.Population, scores []systems.Scores) ([]genetics.Population, Outcome) {
	out := newOutcome(len(pops))
	next := make([]genetics.Population, len(pops))
	copy(next, pops)

	if len(scores) > 0 {
		island := make([]float64, len(scores))
		for i, s := range scores {
			island[i] = s.Island
		}
		out.Winner = genetics.ArgMax(island)
	}
	return next, out
}
