package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Tile is the screen square an island is drawn into.
type Tile struct {
	Island int
	Rect   rl.Rectangle
}

// Contains reports whether a screen point lies inside the tile.
func (t Tile) Contains(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, t.Rect)
}

// layoutTiles packs n square tiles into area, picking the column count that
// gives the largest tiles.
func layoutTiles(n int, area rl.Rectangle, gap float32) []Tile {
	if n <= 0 {
		return nil
	}

	bestCols, bestSide := 1, float32(0)
	for cols := 1; cols <= n; cols++ {
		rows := (n + cols - 1) / cols
		side := min(
			(area.Width-gap*float32(cols-1))/float32(cols),
			(area.Height-gap*float32(rows-1))/float32(rows),
		)
		if side > bestSide {
			bestCols, bestSide = cols, side
		}
	}
	if bestSide <= 0 {
		return nil
	}

	tiles := make([]Tile, n)
	for i := range tiles {
		col, row := i%bestCols, i/bestCols
		tiles[i] = Tile{
			Island: i,
			Rect: rl.Rectangle{
				X:      area.X + float32(col)*(bestSide+gap),
				Y:      area.Y + float32(row)*(bestSide+gap),
				Width:  bestSide,
				Height: bestSide,
			},
		}
	}
	return tiles
}
