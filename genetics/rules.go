// Package genetics holds turmite rule tables, populations and the genetic operators
// that produce new ones between generations.
package genetics

import "math/rand"

// Color is a grid cell color.
type Color uint8

const (
	Background Color = iota
	ColorA
	ColorB

	// NumColors is the size of the cell color palette.
	NumColors = 3
)

// Valid reports whether c is inside the palette.
func (c Color) Valid() bool {
	return c < NumColors
}

// Team identifies which side an agent paints for.
type Team uint8

const (
	TeamA Team = iota
	TeamB

	NumTeams = 2
)

// Color returns the cell color a team claims.
func (t Team) Color() Color {
	if t == TeamA {
		return ColorA
	}
	return ColorB
}

// String returns the team name.
func (t Team) String() string {
	if t == TeamA {
		return "A"
	}
	return "B"
}

// MaxStates bounds the number of internal states a rule table can address.
const MaxStates = 4

// Rule is the action taken for one (cell color, internal state) pair.
type Rule struct {
	Turn     int8  // -1 = left, +1 = right; no straight or reverse
	NewColor Color // Color written to the current cell
	NewState uint8 // Internal state after the step
}

// Gene holds the rules for one observed cell color, one per internal state.
// Genes are never modified after construction, so tables may share them.
type Gene struct {
	rules  [MaxStates]Rule
	states uint8
}

// NewGene builds a gene from per-state rules. Extra rules beyond MaxStates are dropped
// and out-of-palette colors are folded back into the palette.
func NewGene(rules ...Rule) *Gene {
	g := &Gene{}
	for i, r := range rules {
		if i >= MaxStates {
			break
		}
		if !r.NewColor.Valid() {
			r.NewColor %= NumColors
		}
		if r.Turn >= 0 {
			r.Turn = 1
		} else {
			r.Turn = -1
		}
		g.rules[i] = r
		g.states++
	}
	return g
}

// States returns the number of internal states this gene defines.
func (g *Gene) States() int {
	return int(g.states)
}

// Rule returns the rule for an internal state.
func (g *Gene) Rule(state uint8) (Rule, bool) {
	if state >= g.states {
		return Rule{}, false
	}
	return g.rules[state], true
}

// clone returns an independent copy of the gene.
func (g *Gene) clone() *Gene {
	cp := *g
	return &cp
}

// RuleTable maps (cell color, internal state) to a Rule.
// A nil gene marks a color the table has no rules for.
type RuleTable struct {
	genes [NumColors]*Gene
}

// NewRuleTable builds a table from one gene per color. Missing trailing genes stay undefined.
func NewRuleTable(genes ...*Gene) *RuleTable {
	t := &RuleTable{}
	for i, g := range genes {
		if i >= NumColors {
			break
		}
		t.genes[i] = g
	}
	return t
}

// Lookup returns the rule for the observed color and internal state.
// ok is false when the table does not cover the pair.
func (t *RuleTable) Lookup(c Color, state uint8) (r Rule, ok bool) {
	if t == nil || !c.Valid() {
		return Rule{}, false
	}
	g := t.genes[c]
	if g == nil {
		return Rule{}, false
	}
	return g.Rule(state)
}

// Gene returns the gene for a cell color (nil if undefined).
func (t *RuleTable) Gene(c Color) *Gene {
	if !c.Valid() {
		return nil
	}
	return t.genes[c]
}

// Complete reports whether every color has rules for states [0, states).
func (t *RuleTable) Complete(states int) bool {
	for _, g := range t.genes {
		if g == nil || g.States() < states {
			return false
		}
	}
	return true
}

// randomTurn returns -1 or +1 with equal probability.
func randomTurn(rng *rand.Rand) int8 {
	if rng.Float64() < 0.5 {
		return -1
	}
	return 1
}

// randomColor returns a uniformly random palette color.
func randomColor(rng *rand.Rand) Color {
	return Color(rng.Intn(NumColors))
}

// RandomRuleTable creates a fully covered table with random turns and colors.
// With a single state every rule keeps the agent in state 0.
func RandomRuleTable(rng *rand.Rand, states int) *RuleTable {
	if states < 1 {
		states = 1
	}
	if states > MaxStates {
		states = MaxStates
	}

	t := &RuleTable{}
	for c := 0; c < NumColors; c++ {
		rules := make([]Rule, states)
		for s := range rules {
			rules[s] = Rule{
				Turn:     randomTurn(rng),
				NewColor: randomColor(rng),
			}
			if states > 1 {
				rules[s].NewState = uint8(rng.Intn(states))
			}
		}
		t.genes[c] = NewGene(rules...)
	}
	return t
}

// ClassicRuleTable returns the hand-written two-team ant: on background turn right
// and paint the team color, on any painted cell turn left and paint background.
func ClassicRuleTable(team Team) *RuleTable {
	return NewRuleTable(
		NewGene(Rule{Turn: 1, NewColor: team.Color()}),
		NewGene(Rule{Turn: -1, NewColor: Background}),
		NewGene(Rule{Turn: -1, NewColor: Background}),
	)
}
