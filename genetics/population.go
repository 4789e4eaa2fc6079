package genetics

import "math/rand"

// Population is the ordered set of rule tables for one island, one per agent slot.
// The first half of the slots belongs to team A, the rest to team B.
type Population struct {
	Slots []*RuleTable
}

// Len returns the number of agent slots.
func (p Population) Len() int {
	return len(p.Slots)
}

// TeamBounds returns the half-open slot range [start, end) of a team.
func TeamBounds(slots int, team Team) (start, end int) {
	half := slots / 2
	if team == TeamA {
		return 0, half
	}
	return half, slots
}

// TeamOf returns the team of an agent slot.
func TeamOf(slots, slot int) Team {
	if slot < slots/2 {
		return TeamA
	}
	return TeamB
}

// Team returns the slots of one team. The returned slice aliases the population.
func (p Population) Team(team Team) []*RuleTable {
	start, end := TeamBounds(len(p.Slots), team)
	return p.Slots[start:end]
}

// Clone returns a population with its own slot slice. Tables are shared; they are immutable.
func (p Population) Clone() Population {
	slots := make([]*RuleTable, len(p.Slots))
	copy(slots, p.Slots)
	return Population{Slots: slots}
}

// Assemble builds a population from team genomes in slot order.
func Assemble(teamA, teamB []*RuleTable) Population {
	slots := make([]*RuleTable, 0, len(teamA)+len(teamB))
	slots = append(slots, teamA...)
	slots = append(slots, teamB...)
	return Population{Slots: slots}
}

// RandomPopulation creates a population of random, fully covered rule tables.
func RandomPopulation(rng *rand.Rand, slots, states int) Population {
	p := Population{Slots: make([]*RuleTable, slots)}
	for i := range p.Slots {
		p.Slots[i] = RandomRuleTable(rng, states)
	}
	return p
}

// ClassicPopulation fills every slot with its team's classic rule table.
func ClassicPopulation(slots int) Population {
	a := ClassicRuleTable(TeamA)
	b := ClassicRuleTable(TeamB)
	p := Population{Slots: make([]*RuleTable, slots)}
	for i := range p.Slots {
		if TeamOf(slots, i) == TeamA {
			p.Slots[i] = a
		} else {
			p.Slots[i] = b
		}
	}
	return p
}

// Seeder produces fresh populations for a reset or a stagnating island.
type Seeder func(rng *rand.Rand) Population

// RandomSeeder returns a Seeder producing random populations.
func RandomSeeder(slots, states int) Seeder {
	return func(rng *rand.Rand) Population {
		return RandomPopulation(rng, slots, states)
	}
}

// ClassicSeeder returns a Seeder producing classic populations.
func ClassicSeeder(slots int) Seeder {
	return func(*rand.Rand) Population {
		return ClassicPopulation(slots)
	}
}
