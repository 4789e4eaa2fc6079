package ui

import (
	"fmt"
	"image/color"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turmites/camera"
	"github.com/pthm-cable/turmites/game"
	"github.com/pthm-cable/turmites/telemetry"
)

const (
	panelWidth = 360
	tileGap    = 6
	margin     = 10
)

// Viewer shows every island as a texture, or one focused island under a
// pan and zoom camera. Update receives snapshots from the scheduler; Draw is
// called once per frame.
type Viewer struct {
	renderer *Renderer
	hud      *HUD

	width, height int32

	snap     game.Snapshot
	textures []rl.Texture2D
	pixels   [][]color.RGBA
	sizes    []int

	tiles      []Tile
	focus      int // -1 = overview
	cam        *camera.Camera
	showAgents bool
}

// NewViewer creates a viewer for a window of the given size. Call after
// rl.InitWindow.
func NewViewer(width, height int32) *Viewer {
	r := NewRenderer()
	return &Viewer{
		renderer:   r,
		hud:        NewHUD(r),
		width:      width,
		height:     height,
		focus:      -1,
		showAgents: true,
	}
}

// Update stores a snapshot and uploads the island grids to their textures.
func (v *Viewer) Update(snap game.Snapshot) {
	v.snap = snap
	v.ensureTextures(snap)
	for i, is := range snap.Islands {
		px := v.pixels[i]
		for j, c := range is.Cells {
			px[j] = v.renderer.Theme.CellColor(c)
		}
		rl.UpdateTexture(v.textures[i], px)
	}
}

// ensureTextures (re)creates textures when the island layout changes.
func (v *Viewer) ensureTextures(snap game.Snapshot) {
	same := len(v.sizes) == len(snap.Islands)
	for i := 0; same && i < len(snap.Islands); i++ {
		same = v.sizes[i] == snap.Islands[i].Size
	}
	if same {
		return
	}

	v.unloadTextures()
	n := len(snap.Islands)
	v.textures = make([]rl.Texture2D, n)
	v.pixels = make([][]color.RGBA, n)
	v.sizes = make([]int, n)
	for i, is := range snap.Islands {
		img := rl.GenImageColor(is.Size, is.Size, v.renderer.Theme.CellColor(0))
		v.textures[i] = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		rl.SetTextureFilter(v.textures[i], rl.FilterPoint)
		rl.SetTextureWrap(v.textures[i], rl.WrapRepeat)
		v.pixels[i] = make([]color.RGBA, is.Size*is.Size)
		v.sizes[i] = is.Size
	}

	v.tiles = layoutTiles(n, v.gridArea(), tileGap)
	v.setFocus(-1)
}

func (v *Viewer) gridArea() rl.Rectangle {
	return rl.Rectangle{
		X:      margin,
		Y:      margin,
		Width:  float32(v.width - panelWidth - 3*margin),
		Height: float32(v.height - 2*margin - 20),
	}
}

func (v *Viewer) setFocus(island int) {
	if island < 0 || island >= len(v.sizes) {
		v.focus = -1
		v.cam = nil
		return
	}
	area := v.gridArea()
	v.focus = island
	v.cam = camera.New(area.Width, area.Height, v.sizes[island])
}

// HandleInput applies keyboard and mouse input to the scheduler and view.
func (v *Viewer) HandleInput(s *game.Scheduler) {
	if rl.IsKeyPressed(rl.KeySpace) {
		toggle(s)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		reset(s)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		s.SpeedUp()
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		s.SlowDown()
	}
	if rl.IsKeyPressed(rl.KeyA) {
		v.showAgents = !v.showAgents
	}
	if rl.IsKeyPressed(rl.KeyBackspace) {
		v.setFocus(-1)
	}

	mouse := rl.GetMousePosition()
	if v.cam == nil {
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			for _, t := range v.tiles {
				if t.Contains(mouse) {
					v.setFocus(t.Island)
					break
				}
			}
		}
		return
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}
}

func toggle(s *game.Scheduler) {
	if s.Running() {
		s.Stop()
	} else {
		s.Start()
	}
}

func reset(s *game.Scheduler) {
	if err := s.Reset(); err != nil {
		slog.Error("reset failed", "error", err)
	}
}

// Draw renders one frame.
func (v *Viewer) Draw(s *game.Scheduler, perf telemetry.PerfStats) {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(v.renderer.Theme.Background)

	hover := ""
	if v.cam != nil {
		hover = v.drawFocused()
	} else {
		v.drawOverview()
	}

	px := v.width - panelWidth - margin
	y := v.hud.Draw(px, margin, panelWidth, HUDData{
		Snapshot:      v.snap,
		Perf:          perf,
		Running:       s.Running(),
		TicksPerBatch: s.TicksPerBatch(),
		Focus:         v.focus,
		HoverCell:     hover,
	})
	v.drawButtons(s, float32(px), float32(y+margin))
	v.hud.DrawControls(v.height)
}

func (v *Viewer) drawButtons(s *game.Scheduler, x, y float32) {
	const w, h = 110, 30
	label := "Start"
	if s.Running() {
		label = "Stop"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, label) {
		toggle(s)
	}
	if gui.Button(rl.Rectangle{X: x + w + 10, Y: y, Width: w, Height: h}, "Reset") {
		reset(s)
	}
	if gui.Button(rl.Rectangle{X: x + 2*(w+10), Y: y, Width: w/2 - 5, Height: h}, "-") {
		s.SlowDown()
	}
	if gui.Button(rl.Rectangle{X: x + 2*(w+10) + w/2 + 5, Y: y, Width: w/2 - 5, Height: h}, "+") {
		s.SpeedUp()
	}
}

func (v *Viewer) drawOverview() {
	th := v.renderer.Theme
	for _, t := range v.tiles {
		if t.Island >= len(v.snap.Islands) {
			continue
		}
		is := v.snap.Islands[t.Island]
		size := float32(is.Size)
		src := rl.Rectangle{Width: size, Height: size}
		rl.DrawTexturePro(v.textures[t.Island], src, t.Rect, rl.Vector2{}, 0, rl.White)

		if v.showAgents {
			scale := t.Rect.Width / size
			for _, a := range is.Agents {
				rl.DrawRectangleV(
					rl.Vector2{X: t.Rect.X + float32(a.X)*scale, Y: t.Rect.Y + float32(a.Y)*scale},
					rl.Vector2{X: max(scale, 2), Y: max(scale, 2)},
					th.Agents[a.Team],
				)
			}
		}

		border := th.PanelBorder
		if c, ok := th.Roles[is.Role]; ok && v.snap.Generation > 0 {
			border = c
		}
		rl.DrawRectangleLinesEx(t.Rect, 2, border)
		rl.DrawText(fmt.Sprintf("#%d", t.Island), int32(t.Rect.X)+4, int32(t.Rect.Y)+4, th.FontSize, rl.White)
	}
}

// drawFocused draws the focused island through the camera and returns a
// description of the cell under the mouse.
func (v *Viewer) drawFocused() string {
	if v.focus >= len(v.snap.Islands) {
		return ""
	}
	th := v.renderer.Theme
	is := v.snap.Islands[v.focus]
	area := v.gridArea()

	sx, sy, sw, sh := v.cam.SourceRect()
	rl.DrawTexturePro(
		v.textures[v.focus],
		rl.Rectangle{X: sx, Y: sy, Width: sw, Height: sh},
		area,
		rl.Vector2{}, 0, rl.White,
	)

	if v.showAgents {
		for _, a := range is.Agents {
			ax, ay := float32(a.X)+0.5, float32(a.Y)+0.5
			if !v.cam.IsVisible(ax, ay, 1) {
				continue
			}
			x, y := v.cam.WorldToScreen(ax, ay)
			rl.DrawCircleV(rl.Vector2{X: area.X + x, Y: area.Y + y}, max(v.cam.Zoom*0.4, 2), th.Agents[a.Team])
		}
	}
	rl.DrawRectangleLinesEx(area, 2, th.PanelBorder)

	mouse := rl.GetMousePosition()
	if !rl.CheckCollisionPointRec(mouse, area) {
		return ""
	}
	cx, cy := v.cam.CellAt(mouse.X-area.X, mouse.Y-area.Y)
	idx := cy*is.Size + cx
	if idx < 0 || idx >= len(is.Cells) {
		return ""
	}
	return fmt.Sprintf("(%d,%d) color %d", cx, cy, is.Cells[idx])
}

func (v *Viewer) unloadTextures() {
	for _, t := range v.textures {
		rl.UnloadTexture(t)
	}
	v.textures = nil
}

// Unload releases GPU resources.
func (v *Viewer) Unload() {
	v.unloadTextures()
}
