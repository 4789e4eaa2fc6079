package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turmites/game"
	"github.com/pthm-cable/turmites/telemetry"
)

// HUDData holds everything the side panel shows.
type HUDData struct {
	Snapshot      game.Snapshot
	Perf          telemetry.PerfStats
	Running       bool
	TicksPerBatch int
	Focus         int // Focused island, -1 for the overview
	HoverCell     string
}

// HUD renders the side panel.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD(r *Renderer) *HUD {
	return &HUD{renderer: r}
}

// Draw renders the panel into the given column and returns the Y below it,
// where the viewer places its buttons.
func (h *HUD) Draw(x, y, width int32, data HUDData) int32 {
	r := h.renderer
	pad := r.Theme.Padding
	snap := data.Snapshot

	rows := int32(9 + len(snap.Islands))
	height := rows*r.Theme.LineHeight + pad*4 + r.Theme.BarHeight
	r.DrawPanel(x, y, width, height)

	cx, cy := x+pad, y+pad
	inner := width - pad*2
	cy = r.DrawSectionHeader(cx, cy, "Turmites")

	status := "stopped"
	if data.Running {
		status = "running"
	}
	cy = r.DrawLabelValue(cx, cy, "Status", fmt.Sprintf("%s (%s)", status, snap.State))
	cy = r.DrawLabelValue(cx, cy, "Strategy", snap.Strategy)
	cy = r.DrawLabelValue(cx, cy, "Generation", fmt.Sprintf("%d", snap.Generation))
	cy = r.DrawBar(cx, cy, "Tick", float32(snap.Progress()), inner)
	cy = r.DrawLabelValue(cx, cy, "Batch", fmt.Sprintf("%d ticks", data.TicksPerBatch))
	cy = r.DrawLabelValue(cx, cy, "Speed", fmt.Sprintf("%.0f ticks/s", data.Perf.TicksPerSecond))
	cy = r.DrawLabelValue(cx, cy, "FPS", fmt.Sprintf("%.0f", data.Perf.FPS))
	if data.HoverCell != "" {
		cy = r.DrawLabelValue(cx, cy, "Cell", data.HoverCell)
	}

	cy += pad / 2
	cy = r.DrawSectionHeader(cx, cy, "Last generation")
	for _, is := range snap.Islands {
		label := fmt.Sprintf("#%d", is.Index)
		if is.Index == data.Focus {
			label = "> " + label
		}
		rl.DrawText(label, cx, cy, r.Theme.FontSize, r.Theme.LabelColor)
		area := float64(is.Size * is.Size)
		r.DrawTeamSplit(cx+40, cy+2, inner-150, r.Theme.BarHeight,
			float64(is.Scores.Tiles[0])/area, float64(is.Scores.Tiles[1])/area)
		rl.DrawText(fmt.Sprintf("%.3f %s", is.Scores.Island, is.Role), cx+inner-100, cy, r.Theme.FontSize, r.Theme.ValueColor)
		cy += r.Theme.LineHeight
	}

	return y + height
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32) {
	rl.DrawText(
		"SPACE start/stop | R reset | +/- speed | A agents | click island to focus | BACKSPACE back | wheel zoom | right drag pan",
		10, screenHeight-20, 12, rl.Gray,
	)
}
