// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/turmites/genetics"

// Heading is one of the four grid directions, ordered clockwise.
type Heading uint8

const (
	Up Heading = iota
	Right
	Down
	Left

	NumHeadings = 4
)

// Turn rotates the heading by a ±1 step, wrapping modulo 4.
func (h Heading) Turn(delta int8) Heading {
	return Heading((int(h) + int(delta) + NumHeadings) % NumHeadings)
}

// Delta returns the unit grid step for the heading. Up decreases y.
func (h Heading) Delta() (dx, dy int) {
	switch h {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return -1, 0
	}
}

// String returns the heading name.
func (h Heading) String() string {
	switch h {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	default:
		return "left"
	}
}

// Position is an agent's grid cell. Always inside [0, size).
type Position struct {
	X, Y int
}

// Facing holds the agent's heading.
type Facing struct {
	Heading Heading
}

// Turmite holds the agent's machine state.
type Turmite struct {
	State uint8         // Internal state, indexes the rule table
	Team  genetics.Team // Team the agent paints for
	Slot  int           // Population slot the rules came from
}

// Program holds the agent's rule table. Owned by the agent for one generation.
type Program struct {
	Rules *genetics.RuleTable
}
