// Package camera provides the pan and zoom view onto a focused island.
package camera

import "math"

// Camera controls the viewport into one toroidal grid. World coordinates are
// cell units; Zoom is screen pixels per cell.
type Camera struct {
	// Position is the camera center in cell coordinates
	X, Y float32

	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid side in cells
	Size float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// MaxCellPixels caps the zoom level.
const MaxCellPixels = 32

// New creates a camera centered on the grid with the whole grid in view.
func New(viewportW, viewportH float32, gridSize int) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Size:      float32(gridSize),
		MaxZoom:   MaxCellPixels,
	}
	c.MinZoom = c.fitZoom()
	c.Reset()
	return c
}

// fitZoom is the zoom at which the whole grid fits the viewport.
func (c *Camera) fitZoom() float32 {
	if c.Size <= 0 {
		return 1
	}
	return min(c.ViewportW, c.ViewportH) / c.Size
}

// WorldToScreen converts cell coordinates to screen coordinates, taking the
// shortest way around the torus.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx := toroidalDelta(wx, c.X, c.Size)
	dy := toroidalDelta(wy, c.Y, c.Size)

	sx = c.ViewportW/2 + dx*c.Zoom
	sy = c.ViewportH/2 + dy*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to wrapped cell coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom

	wx = mod(c.X+dx, c.Size)
	wy = mod(c.Y+dy, c.Size)
	return wx, wy
}

// CellAt returns the grid cell under a screen position.
func (c *Camera) CellAt(sx, sy float32) (x, y int) {
	wx, wy := c.ScreenToWorld(sx, sy)
	size := int(c.Size)
	return min(int(wx), size-1), min(int(wy), size-1)
}

// IsVisible reports whether a cell-space point could be on screen, with the
// given margin in cells.
func (c *Camera) IsVisible(wx, wy, margin float32) bool {
	dx := toroidalDelta(wx, c.X, c.Size)
	dy := toroidalDelta(wy, c.Y, c.Size)

	halfW := c.ViewportW/(2*c.Zoom) + margin
	halfH := c.ViewportH/(2*c.Zoom) + margin
	return absf(dx) <= halfW && absf(dy) <= halfH
}

// SourceRect returns the visible region in cell coordinates. X and Y may run
// past the grid edge; draw with a repeating texture to wrap.
func (c *Camera) SourceRect() (x, y, w, h float32) {
	w = c.ViewportW / c.Zoom
	h = c.ViewportH / c.Zoom
	return c.X - w/2, c.Y - h/2, w, h
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.Zoom = clamp(c.Zoom, c.MinZoom, max(c.MaxZoom, c.MinZoom))
}

// Pan moves the camera by the given delta in screen pixels, wrapping around
// the grid.
func (c *Camera) Pan(dx, dy float32) {
	c.X = mod(c.X+dx/c.Zoom, c.Size)
	c.Y = mod(c.Y+dy/c.Zoom, c.Size)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, max(c.MaxZoom, c.MinZoom))
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera and fits the grid.
func (c *Camera) Reset() {
	c.X = c.Size / 2
	c.Y = c.Size / 2
	c.Zoom = c.MinZoom
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
