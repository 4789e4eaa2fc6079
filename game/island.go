package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/turmites/components"
	"github.com/pthm-cable/turmites/evolve"
	"github.com/pthm-cable/turmites/genetics"
	"github.com/pthm-cable/turmites/systems"
)

// Island is one independent simulation instance: a grid and the agents
// painting it for the current generation.
type Island struct {
	index int
	grid  *systems.Grid

	// Rebuilt on every seeding
	world  *ecs.World
	mapper *systems.AgentMapper
	system *systems.TurmiteSystem
	order  []ecs.Entity // agent update order, slot order
}

// NewIsland creates an island with an empty grid and no agents.
func NewIsland(index, gridSize int) *Island {
	return &Island{
		index: index,
		grid:  systems.NewGrid(gridSize),
	}
}

// Index returns the island's position in the controller.
func (is *Island) Index() int {
	return is.index
}

// Grid returns the island's grid.
func (is *Island) Grid() *systems.Grid {
	return is.grid
}

// Seed clears the grid and creates one agent per population slot in a fresh
// world. Agents start in state 0 with a random heading.
func (is *Island) Seed(rng *rand.Rand, pop genetics.Population, placement evolve.Placement) {
	is.grid.Reset()
	is.world = ecs.NewWorld()
	is.mapper = systems.NewAgentMapper(is.world)
	is.system = systems.NewTurmiteSystem(is.mapper, is.grid)
	is.order = make([]ecs.Entity, 0, pop.Len())

	size := is.grid.Size()
	for slot, rules := range pop.Slots {
		team := genetics.TeamOf(pop.Len(), slot)

		pos := components.Position{
			X: placeX(rng, team, size, placement),
			Y: rng.Intn(size),
		}
		facing := components.Facing{Heading: components.Heading(rng.Intn(components.NumHeadings))}
		tm := components.Turmite{Team: team, Slot: slot}
		prog := components.Program{Rules: rules}

		is.order = append(is.order, is.mapper.NewEntity(&pos, &facing, &tm, &prog))
	}
}

// placeX picks a starting column. With team halves, team A starts in
// [0, size/2) and team B in [size/2, size).
func placeX(rng *rand.Rand, team genetics.Team, size int, placement evolve.Placement) int {
	half := size / 2
	if placement != evolve.PlaceTeamHalves || half == 0 {
		return rng.Intn(size)
	}
	if team == genetics.TeamA {
		return rng.Intn(half)
	}
	return half + rng.Intn(size-half)
}

// Clear drops the agents, keeping the grid for display.
func (is *Island) Clear() {
	is.world = nil
	is.mapper = nil
	is.system = nil
	is.order = nil
}

// Seeded reports whether the island has live agents.
func (is *Island) Seeded() bool {
	return is.system != nil
}

// Step advances the island by n ticks.
func (is *Island) Step(n int) {
	if is.system == nil {
		return
	}
	for i := 0; i < n; i++ {
		is.system.Update(is.order)
	}
}

// Evaluate scores the island's grid.
func (is *Island) Evaluate(eval systems.Evaluator) systems.Scores {
	return eval.Evaluate(is.grid.Histogram())
}

// TakeMisses returns and clears the rule lookup misses since the last call.
func (is *Island) TakeMisses() int {
	if is.system == nil {
		return 0
	}
	n := is.system.Misses()
	is.system.ResetMisses()
	return n
}

// AgentView is a read-only copy of an agent for display.
type AgentView struct {
	X, Y    int
	Heading components.Heading
	State   uint8
	Team    genetics.Team
}

// Agents returns the agents in update order.
func (is *Island) Agents() []AgentView {
	if is.mapper == nil {
		return nil
	}
	out := make([]AgentView, len(is.order))
	for i, e := range is.order {
		pos, facing, tm, _ := is.mapper.Get(e)
		out[i] = AgentView{
			X:       pos.X,
			Y:       pos.Y,
			Heading: facing.Heading,
			State:   tm.State,
			Team:    tm.Team,
		}
	}
	return out
}
