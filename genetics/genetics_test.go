package genetics

import (
	"math"
	"math/rand"
	"testing"
)

func TestRandomRuleTableCoversEveryColor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, states := range []int{1, 2, MaxStates} {
		table := RandomRuleTable(rng, states)
		if !table.Complete(states) {
			t.Fatalf("states=%d: table is not complete", states)
		}
		for c := Color(0); c < NumColors; c++ {
			for s := 0; s < states; s++ {
				r, ok := table.Lookup(c, uint8(s))
				if !ok {
					t.Fatalf("states=%d: missing rule for color %d state %d", states, c, s)
				}
				if r.Turn != -1 && r.Turn != 1 {
					t.Errorf("turn %d outside {-1,+1}", r.Turn)
				}
				if !r.NewColor.Valid() {
					t.Errorf("new color %d outside palette", r.NewColor)
				}
				if int(r.NewState) >= states {
					t.Errorf("new state %d outside [0,%d)", r.NewState, states)
				}
				if states == 1 && r.NewState != 0 {
					t.Errorf("single-state table produced new state %d", r.NewState)
				}
			}
		}
	}
}

func TestLookupMisses(t *testing.T) {
	table := NewRuleTable(NewGene(Rule{Turn: 1, NewColor: ColorA}))

	if _, ok := table.Lookup(Background, 0); !ok {
		t.Error("expected rule for background state 0")
	}
	if _, ok := table.Lookup(Background, 1); ok {
		t.Error("state 1 should be undefined")
	}
	if _, ok := table.Lookup(ColorA, 0); ok {
		t.Error("color A has no gene and should miss")
	}
	if _, ok := table.Lookup(Color(7), 0); ok {
		t.Error("out-of-palette color should miss")
	}

	var nilTable *RuleTable
	if _, ok := nilTable.Lookup(Background, 0); ok {
		t.Error("nil table should miss")
	}
}

func TestNewGeneNormalizes(t *testing.T) {
	g := NewGene(Rule{Turn: 0, NewColor: 5}, Rule{Turn: -3, NewColor: ColorB})

	r0, _ := g.Rule(0)
	if r0.Turn != 1 || r0.NewColor != 2 {
		t.Errorf("rule 0 = %+v, want turn 1 color 2", r0)
	}
	r1, _ := g.Rule(1)
	if r1.Turn != -1 {
		t.Errorf("rule 1 turn = %d, want -1", r1.Turn)
	}
}

func TestCrossoverGeneProvenance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p1 := RandomRuleTable(rng, 1)
	p2 := RandomRuleTable(rng, 1)

	fromP1, fromP2 := 0, 0
	for trial := 0; trial < 500; trial++ {
		child := Crossover(rng, p1, p2)
		if child == p1 || child == p2 {
			t.Fatal("crossover returned a parent table")
		}
		for c := Color(0); c < NumColors; c++ {
			switch child.Gene(c) {
			case p1.Gene(c):
				fromP1++
			case p2.Gene(c):
				fromP2++
			default:
				t.Fatalf("child gene for color %d comes from neither parent", c)
			}
		}
	}

	// Both parents contribute roughly half the genes
	total := float64(fromP1 + fromP2)
	if frac := float64(fromP1) / total; math.Abs(frac-0.5) > 0.05 {
		t.Errorf("fraction of genes from parent 1 = %.3f, want ~0.5", frac)
	}
}

func TestCrossoverTeamPerSlot(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g1 := RandomPopulation(rng, 4, 1).Slots
	g2 := RandomPopulation(rng, 4, 1).Slots

	child := CrossoverTeam(rng, g1, g2)
	if len(child) != len(g1) {
		t.Fatalf("child has %d slots, want %d", len(child), len(g1))
	}
	for i, table := range child {
		for c := Color(0); c < NumColors; c++ {
			if table.Gene(c) != g1[i].Gene(c) && table.Gene(c) != g2[i].Gene(c) {
				t.Fatalf("slot %d color %d gene not from the same slot of a parent", i, c)
			}
		}
	}
}

func TestMutateDoesNotAliasParent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	parent := RandomRuleTable(rng, 2)

	before := make([]Gene, NumColors)
	for c := Color(0); c < NumColors; c++ {
		before[c] = *parent.Gene(c)
	}

	child := Mutate(rng, parent, 1.0)
	for c := Color(0); c < NumColors; c++ {
		if child.Gene(c) == parent.Gene(c) {
			t.Errorf("color %d: mutated child shares gene with parent", c)
		}
		if *parent.Gene(c) != before[c] {
			t.Errorf("color %d: parent gene modified by mutation", c)
		}
		// New states are never mutated
		for s := uint8(0); s < 2; s++ {
			pr, _ := parent.Lookup(c, s)
			cr, _ := child.Lookup(c, s)
			if pr.NewState != cr.NewState {
				t.Errorf("color %d state %d: new state changed %d -> %d", c, s, pr.NewState, cr.NewState)
			}
		}
	}
}

func TestMutateKeepsMissingGenes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	parent := NewRuleTable(NewGene(Rule{Turn: 1, NewColor: ColorA}))

	child := Mutate(rng, parent, 1.0)
	if child.Gene(ColorA) != nil || child.Gene(ColorB) != nil {
		t.Error("mutation should not invent genes for undefined colors")
	}
	if child.Gene(Background) == nil {
		t.Error("defined gene lost during mutation")
	}
}

func TestMutationRateBound(t *testing.T) {
	// Resampling draws uniformly, so a resample keeps the old value with
	// probability 1/2 (turn) or 1/3 (color). Observed change rates converge to
	// rate*1/2 and rate*2/3.
	rng := rand.New(rand.NewSource(99))
	const rate = 0.1
	const trials = 20000

	parent := RandomRuleTable(rng, 1)
	var turnChanges, colorChanges int
	for i := 0; i < trials; i++ {
		child := Mutate(rng, parent, rate)
		for c := Color(0); c < NumColors; c++ {
			pr, _ := parent.Lookup(c, 0)
			cr, _ := child.Lookup(c, 0)
			if pr.Turn != cr.Turn {
				turnChanges++
			}
			if pr.NewColor != cr.NewColor {
				colorChanges++
			}
		}
	}

	n := float64(trials * NumColors)
	tests := []struct {
		name    string
		changes int
		want    float64
	}{
		{"turn", turnChanges, rate * 0.5},
		{"color", colorChanges, rate * 2.0 / 3.0},
	}
	for _, tt := range tests {
		got := float64(tt.changes) / n
		sigma := math.Sqrt(tt.want * (1 - tt.want) / n)
		if math.Abs(got-tt.want) > 5*sigma {
			t.Errorf("%s change rate = %.4f, want %.4f ± %.4f", tt.name, got, tt.want, 5*sigma)
		}
	}
}

func TestMutateZeroRateIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	parent := RandomRuleTable(rng, 1)
	child := Mutate(rng, parent, 0)
	for c := Color(0); c < NumColors; c++ {
		if *child.Gene(c) != *parent.Gene(c) {
			t.Errorf("color %d changed with zero mutation rate", c)
		}
	}
}

func TestTournamentSelectionFavorsFittest(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	fitness := []float64{10, 50, 5}

	counts := make([]int, len(fitness))
	for _, idx := range SelectPool(rng, fitness, 2, 1000) {
		counts[idx]++
	}

	if counts[1] <= counts[0]+counts[2] {
		t.Errorf("fittest selected %d times, others %d combined; want strictly more", counts[1], counts[0]+counts[2])
	}
	// The weakest genome can only win a tournament against itself
	if counts[2] >= counts[0] {
		t.Errorf("weakest selected %d times, middle %d; want fewer", counts[2], counts[0])
	}
}

func TestTournamentSizeOneIsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	fitness := []float64{0, 100}
	counts := [2]int{}
	for i := 0; i < 2000; i++ {
		counts[Tournament(rng, fitness, 1)]++
	}
	if counts[0] < 850 || counts[0] > 1150 {
		t.Errorf("k=1 picked the weak genome %d/2000 times, want ~1000", counts[0])
	}
}

func TestArgMaxArgMinTies(t *testing.T) {
	values := []float64{0.5, 0.9, 0.1, 0.9, 0.1}
	if got := ArgMax(values); got != 1 {
		t.Errorf("ArgMax = %d, want 1", got)
	}
	if got := ArgMin(values); got != 2 {
		t.Errorf("ArgMin = %d, want 2", got)
	}
}

func TestPopulationTeams(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p := RandomPopulation(rng, 7, 1)

	a := p.Team(TeamA)
	b := p.Team(TeamB)
	if len(a) != 3 || len(b) != 4 {
		t.Fatalf("team sizes = %d/%d, want 3/4", len(a), len(b))
	}
	if a[0] != p.Slots[0] || b[0] != p.Slots[3] {
		t.Error("team slices do not alias population slots in order")
	}

	assembled := Assemble(a, b)
	for i := range p.Slots {
		if assembled.Slots[i] != p.Slots[i] {
			t.Fatalf("Assemble reordered slot %d", i)
		}
	}

	clone := p.Clone()
	clone.Slots[0] = nil
	if p.Slots[0] == nil {
		t.Error("Clone shares the slot slice")
	}
}

func TestClassicPopulation(t *testing.T) {
	p := ClassicPopulation(6)
	for i, table := range p.Slots {
		team := TeamOf(6, i)
		r, ok := table.Lookup(Background, 0)
		if !ok || r.Turn != 1 || r.NewColor != team.Color() {
			t.Errorf("slot %d: background rule = %+v, want right turn painting %d", i, r, team.Color())
		}
		for _, c := range []Color{ColorA, ColorB} {
			r, _ := table.Lookup(c, 0)
			if r.Turn != -1 || r.NewColor != Background {
				t.Errorf("slot %d color %d: rule = %+v, want left turn clearing", i, c, r)
			}
		}
	}
}
