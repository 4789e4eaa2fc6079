package evolve

import (
	"math/rand"

	"github.com/pthm-cable/turmites/genetics"
	"github.com/pthm-cable/turmites/systems"
)

// Tournament evolves each team separately. The team genomes of one team across
// all islands compete by raw painted territory; a pool of the same size is
// drawn by tournament selection, and every island receives a new team genome
// crossed from two pool members and mutated.
//
// Every island is replaced each generation. Islands that placed a genome in
// either team's pool are marked selected, the rest bred. The winner is the
// island with the most claimed territory.
type Tournament struct {
	MutationRate float64
	Size         int
}

func (t *Tournament) Name() string { return "tournament" }

func (t *Tournament) Evaluator() systems.Evaluator { return systems.RawScore{} }

func (t *Tournament) Placement() Placement { return PlaceRandom }

func (t *Tournament) Breed(rng *rand.Rand, pops []genetics.Population, scores []systems.Scores) ([]genetics.Population, Outcome) {
	out := newOutcome(len(pops))
	next := make([]genetics.Population, len(pops))
	if len(pops) == 0 {
		return next, out
	}

	b := genetics.Breeder{MutationRate: t.MutationRate}
	var teams [genetics.NumTeams][][]*genetics.RuleTable
	selected := make([]bool, len(pops))

	for team := genetics.Team(0); team < genetics.NumTeams; team++ {
		candidates := make([][]*genetics.RuleTable, len(pops))
		fitness := make([]float64, len(pops))
		for i, p := range pops {
			candidates[i] = p.Team(team)
			fitness[i] = scores[i].Team[team]
		}

		pool := genetics.SelectPool(rng, fitness, t.size(), len(pops))
		for _, idx := range pool {
			selected[idx] = true
		}

		teams[team] = make([][]*genetics.RuleTable, len(pops))
		for i := range pops {
			g1 := candidates[pool[rng.Intn(len(pool))]]
			g2 := candidates[pool[rng.Intn(len(pool))]]
			teams[team][i] = b.TeamChild(rng, g1, g2)
		}
	}

	island := make([]float64, len(scores))
	for i := range pops {
		next[i] = genetics.Assemble(teams[genetics.TeamA][i], teams[genetics.TeamB][i])
		island[i] = scores[i].Island
		if selected[i] {
			out.Roles[i] = RoleSelected
		} else {
			out.Roles[i] = RoleBred
		}
	}
	out.Winner = genetics.ArgMax(island)
	return next, out
}

func (t *Tournament) size() int {
	if t.Size < 1 {
		return genetics.DefaultTournamentSize
	}
	return t.Size
}
