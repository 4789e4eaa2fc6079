// Package systems provides the grid and the per-tick systems of an island.
package systems

import "github.com/pthm-cable/turmites/genetics"

// Histogram counts cells per color.
type Histogram [genetics.NumColors]int

// Total returns the number of counted cells.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Grid is a square toroidal field of cell colors with an incrementally
// maintained color histogram. Callers pass wrapped coordinates.
type Grid struct {
	size   int
	cells  []genetics.Color // row-major, index y*size+x
	counts Histogram
}

// NewGrid creates a grid of side size, cleared to background.
func NewGrid(size int) *Grid {
	g := &Grid{
		size:  size,
		cells: make([]genetics.Color, size*size),
	}
	g.counts[genetics.Background] = size * size
	return g
}

// Size returns the side length.
func (g *Grid) Size() int {
	return g.size
}

// Area returns the number of cells.
func (g *Grid) Area() int {
	return len(g.cells)
}

// Reset clears every cell to background.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = genetics.Background
	}
	g.counts = Histogram{}
	g.counts[genetics.Background] = len(g.cells)
}

// Get returns the color at (x, y).
func (g *Grid) Get(x, y int) genetics.Color {
	return g.cells[y*g.size+x]
}

// Set writes a color at (x, y) and updates the histogram.
func (g *Grid) Set(x, y int, c genetics.Color) {
	idx := y*g.size + x
	old := g.cells[idx]
	if old == c {
		return
	}
	g.counts[old]--
	g.counts[c]++
	g.cells[idx] = c
}

// Histogram returns the current color counts.
func (g *Grid) Histogram() Histogram {
	return g.counts
}

// Cells returns a copy of the row-major cell colors.
func (g *Grid) Cells() []genetics.Color {
	out := make([]genetics.Color, len(g.cells))
	copy(out, g.cells)
	return out
}

// CopyCells writes the cells into dst, reusing its storage when large enough.
func (g *Grid) CopyCells(dst []genetics.Color) []genetics.Color {
	if cap(dst) < len(g.cells) {
		dst = make([]genetics.Color, len(g.cells))
	}
	dst = dst[:len(g.cells)]
	copy(dst, g.cells)
	return dst
}

// Recount computes the histogram from the cells, ignoring the maintained counts.
func (g *Grid) Recount() Histogram {
	var h Histogram
	for _, c := range g.cells {
		h[c]++
	}
	return h
}

// Wrap maps a coordinate onto [0, size).
func (g *Grid) Wrap(v int) int {
	return wrap(v, g.size)
}

// wrap returns positive modulo (Go's % can return negative).
func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
