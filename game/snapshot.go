package game

import (
	"github.com/pthm-cable/turmites/evolve"
	"github.com/pthm-cable/turmites/genetics"
	"github.com/pthm-cable/turmites/systems"
)

// IslandSnapshot is the displayable state of one island.
type IslandSnapshot struct {
	Index  int
	Size   int
	Cells  []genetics.Color // row-major, Size*Size
	Agents []AgentView
	Scores systems.Scores // Scores of the last finished generation
	Role   evolve.Role    // What breeding did to this island's population
}

// Snapshot is a copy of the controller state, safe to keep after the
// controller moves on.
type Snapshot struct {
	State              State
	Generation         int
	Tick               int // Ticks into the current generation
	TicksPerGeneration int
	Strategy           string
	Islands            []IslandSnapshot
}

// Progress returns the fraction of the current generation completed.
func (s Snapshot) Progress() float64 {
	if s.TicksPerGeneration <= 0 {
		return 0
	}
	return float64(s.Tick) / float64(s.TicksPerGeneration)
}
