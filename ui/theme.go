// Package ui draws the islands and the run controls with raylib.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turmites/evolve"
	"github.com/pthm-cable/turmites/genetics"
)

// Theme holds UI styling constants.
type Theme struct {
	Background    rl.Color
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color

	Cells  [genetics.NumColors]rl.Color // Indexed by cell color
	Agents [genetics.NumTeams]rl.Color  // Agent markers, indexed by team
	Roles  map[evolve.Role]rl.Color     // Tile border per breeding role

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Background:    rl.Color{R: 12, G: 14, B: 18, A: 255},
		PanelBg:       rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:   rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader: rl.Yellow,
		LabelColor:    rl.LightGray,
		ValueColor:    rl.LightGray,
		BarBg:         rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:       rl.Color{R: 100, G: 150, B: 200, A: 255},
		Cells: [genetics.NumColors]rl.Color{
			genetics.Background: {R: 0, G: 0, B: 0, A: 255},
			genetics.ColorA:     {R: 230, G: 80, B: 70, A: 255},
			genetics.ColorB:     {R: 70, G: 140, B: 230, A: 255},
		},
		Agents: [genetics.NumTeams]rl.Color{
			genetics.TeamA: {R: 255, G: 220, B: 200, A: 255},
			genetics.TeamB: {R: 200, G: 230, B: 255, A: 255},
		},
		Roles: map[evolve.Role]rl.Color{
			evolve.RoleWinner:     {R: 240, G: 200, B: 60, A: 255},
			evolve.RoleBred:       {R: 200, G: 100, B: 200, A: 255},
			evolve.RoleRandomized: {R: 120, G: 120, B: 120, A: 255},
			evolve.RoleSelected:   {R: 100, G: 200, B: 100, A: 255},
		},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// CellColor maps a cell color to its display color.
func (t Theme) CellColor(c genetics.Color) rl.Color {
	if !c.Valid() {
		return rl.Magenta
	}
	return t.Cells[c]
}

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight + 2
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a progress bar for [0, 1] values.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, width int32) int32 {
	value = min(max(value, 0), 1)

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), r.Theme.BarHeight, r.Theme.BarFill)
	rl.DrawText(fmt.Sprintf("%.0f%%", value*100), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawTeamSplit draws a bar split between the two team colors by their shares.
func (r *Renderer) DrawTeamSplit(x, y, width, height int32, a, b float64) {
	rl.DrawRectangle(x, y, width, height, r.Theme.BarBg)
	wa := int32(float64(width) * min(max(a, 0), 1))
	wb := int32(float64(width) * min(max(b, 0), 1))
	rl.DrawRectangle(x, y, wa, height, r.Theme.Cells[genetics.ColorA])
	rl.DrawRectangle(x+width-wb, y, wb, height, r.Theme.Cells[genetics.ColorB])
}
