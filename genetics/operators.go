package genetics

import "math/rand"

// CrossoverMixProbability is the chance a child gene comes from the first parent.
const CrossoverMixProbability = 0.5

// Crossover builds a child by uniform per-color selection of whole genes.
// The child's genes are the parents' own gene values; nothing is blended.
func Crossover(rng *rand.Rand, p1, p2 *RuleTable) *RuleTable {
	child := &RuleTable{}
	for c := range child.genes {
		if rng.Float64() < CrossoverMixProbability {
			child.genes[c] = p1.genes[c]
		} else {
			child.genes[c] = p2.genes[c]
		}
	}
	return child
}

// CrossoverTeam crosses two team genomes slot by slot.
// Both parents must have the same number of slots.
func CrossoverTeam(rng *rand.Rand, g1, g2 []*RuleTable) []*RuleTable {
	child := make([]*RuleTable, len(g1))
	for i := range child {
		child[i] = Crossover(rng, g1[i], g2[i])
	}
	return child
}

// Mutate returns a deep copy of t where each rule's turn and new color are
// independently resampled with probability rate. New states are never mutated.
func Mutate(rng *rand.Rand, t *RuleTable, rate float64) *RuleTable {
	out := &RuleTable{}
	for c, g := range t.genes {
		if g == nil {
			continue
		}
		ng := g.clone()
		for s := uint8(0); s < ng.states; s++ {
			r := &ng.rules[s]
			if rng.Float64() < rate {
				r.Turn = randomTurn(rng)
			}
			if rng.Float64() < rate {
				r.NewColor = randomColor(rng)
			}
		}
		out.genes[c] = ng
	}
	return out
}

// MutateTeam mutates every slot of a team genome.
func MutateTeam(rng *rand.Rand, g []*RuleTable, rate float64) []*RuleTable {
	out := make([]*RuleTable, len(g))
	for i, t := range g {
		out[i] = Mutate(rng, t, rate)
	}
	return out
}

// Breeder bundles the variation operators with their parameters.
type Breeder struct {
	MutationRate float64
}

// Child crosses two parents and mutates the result.
func (b Breeder) Child(rng *rand.Rand, p1, p2 *RuleTable) *RuleTable {
	return Mutate(rng, Crossover(rng, p1, p2), b.MutationRate)
}

// TeamChild crosses two team genomes and mutates every slot.
func (b Breeder) TeamChild(rng *rand.Rand, g1, g2 []*RuleTable) []*RuleTable {
	return MutateTeam(rng, CrossoverTeam(rng, g1, g2), b.MutationRate)
}
