package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/turmites/components"
	"github.com/pthm-cable/turmites/genetics"
)

// AgentMapper is the component set every agent entity carries.
type AgentMapper = ecs.Map4[
	components.Position,
	components.Facing,
	components.Turmite,
	components.Program,
]

// NewAgentMapper creates the agent component mapper for a world.
func NewAgentMapper(world *ecs.World) *AgentMapper {
	return ecs.NewMap4[
		components.Position,
		components.Facing,
		components.Turmite,
		components.Program,
	](world)
}

// TurmiteSystem advances every agent of one island by a tick.
type TurmiteSystem struct {
	mapper *AgentMapper
	grid   *Grid

	// Lookup misses since the last reset, for telemetry
	misses int
}

// NewTurmiteSystem creates the system for an island's world and grid.
func NewTurmiteSystem(mapper *AgentMapper, grid *Grid) *TurmiteSystem {
	return &TurmiteSystem{mapper: mapper, grid: grid}
}

// Update runs one tick. Agents act in the given order, so when two agents
// share a cell the later one's write is the one that survives.
func (s *TurmiteSystem) Update(order []ecs.Entity) {
	for _, e := range order {
		pos, facing, tm, prog := s.mapper.Get(e)
		if !StepAgent(s.grid, pos, facing, tm, prog.Rules) {
			s.misses++
		}
	}
}

// Misses returns the rule lookup misses since the last ResetMisses.
func (s *TurmiteSystem) Misses() int {
	return s.misses
}

// ResetMisses clears the miss counter.
func (s *TurmiteSystem) ResetMisses() {
	s.misses = 0
}

// RuleSource is the lookup an agent consults each tick.
type RuleSource interface {
	Lookup(c genetics.Color, state uint8) (genetics.Rule, bool)
}

// StepAgent applies the turmite rule to one agent: read the cell, turn, write,
// update state, move one cell and wrap. If the rule table has no entry for the
// observed (color, state) pair the agent only re-wraps its position and the
// grid is left untouched. Returns false on such a miss.
func StepAgent(g *Grid, pos *components.Position, facing *components.Facing, tm *components.Turmite, rules RuleSource) bool {
	cell := g.Get(pos.X, pos.Y)
	rule, ok := rules.Lookup(cell, tm.State)
	if !ok {
		pos.X = g.Wrap(pos.X)
		pos.Y = g.Wrap(pos.Y)
		return false
	}

	facing.Heading = facing.Heading.Turn(rule.Turn)
	g.Set(pos.X, pos.Y, rule.NewColor)
	tm.State = rule.NewState

	dx, dy := facing.Heading.Delta()
	pos.X = g.Wrap(pos.X + dx)
	pos.Y = g.Wrap(pos.Y + dy)
	return true
}
