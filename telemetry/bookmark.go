package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBreakthrough   BookmarkType = "breakthrough"
	BookmarkTakeover       BookmarkType = "takeover"
	BookmarkMassStagnation BookmarkType = "mass_stagnation"
	BookmarkPlateau        BookmarkType = "plateau"
)

// Thresholds for bookmark detection.
const (
	breakthroughFactor   = 1.5  // best score against the rolling average of best scores
	breakthroughMinScore = 0.2  // ignore jumps between near-zero scores
	takeoverShare        = 0.95 // one team's share of painted cells
	plateauStd           = 0.01 // best score std over the plateau window
	plateauWindow        = 5
)

// Bookmark marks a notable generation.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Island      int          `csv:"island"` // -1 when the bookmark concerns all islands
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"island", b.Island,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting generations from their summaries.
type BookmarkDetector struct {
	// Rolling history of generation summaries (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	takeoverArmed bool // false while some island stays above the takeover share
	plateauCount  int  // consecutive generations on a plateau
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < plateauWindow {
		historySize = plateauWindow
	}
	return &BookmarkDetector{
		history:       make([]GenerationStats, historySize),
		historySize:   historySize,
		takeoverArmed: true,
	}
}

// Reset clears the history, for example after the populations were reset.
func (bd *BookmarkDetector) Reset() {
	*bd = *NewBookmarkDetector(bd.historySize)
}

// Check analyzes the latest generation and returns any triggered bookmarks.
// islands are the generation's island records and may be nil.
func (bd *BookmarkDetector) Check(stats GenerationStats, islands []IslandRecord) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTakeover(stats, islands); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkMassStagnation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if b := bd.checkPlateau(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest summaries, oldest first.
func (bd *BookmarkDetector) recent(n int) []GenerationStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]GenerationStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkBreakthrough(stats GenerationStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	best := make([]float64, len(history))
	for i, h := range history {
		best[i] = h.ScoreMax
	}
	avg := stat.Mean(best, nil)
	if avg == 0 {
		return nil
	}

	if stats.ScoreMax > avg*breakthroughFactor && stats.ScoreMax >= breakthroughMinScore {
		return &Bookmark{
			Type:        BookmarkBreakthrough,
			Generation:  stats.Generation,
			Island:      stats.BestIsland,
			Description: fmt.Sprintf("Best score %.3f is %.1fx the rolling average (%.3f)", stats.ScoreMax, stats.ScoreMax/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkTakeover(stats GenerationStats, islands []IslandRecord) *Bookmark {
	var found *IslandRecord
	var share float64
	for i := range islands {
		r := &islands[i]
		painted := r.TilesA + r.TilesB
		if painted == 0 {
			continue
		}
		s := float64(max(r.TilesA, r.TilesB)) / float64(painted)
		if s >= takeoverShare && s > share {
			found, share = r, s
		}
	}

	if found == nil {
		bd.takeoverArmed = true
		return nil
	}
	if !bd.takeoverArmed {
		return nil
	}
	bd.takeoverArmed = false

	team := "A"
	if found.TilesB > found.TilesA {
		team = "B"
	}
	return &Bookmark{
		Type:        BookmarkTakeover,
		Generation:  stats.Generation,
		Island:      found.Island,
		Description: fmt.Sprintf("Team %s holds %.0f%% of painted cells", team, share*100),
	}
}

func (bd *BookmarkDetector) checkMassStagnation(stats GenerationStats) *Bookmark {
	if stats.Islands < 2 || stats.Randomized*2 < stats.Islands {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkMassStagnation,
		Generation:  stats.Generation,
		Island:      -1,
		Description: fmt.Sprintf("%d of %d islands restarted from random rules", stats.Randomized, stats.Islands),
	}
}

func (bd *BookmarkDetector) checkPlateau(stats GenerationStats) *Bookmark {
	history := bd.recent(plateauWindow)
	if len(history) < plateauWindow {
		return nil
	}

	best := make([]float64, len(history))
	for i, h := range history {
		best[i] = h.ScoreMax
	}
	_, std := stat.PopMeanStdDev(best, nil)

	if std < plateauStd && stats.ScoreMax > 0 {
		bd.plateauCount++
	} else {
		bd.plateauCount = 0
	}

	// Trigger once when the plateau first spans the window
	if bd.plateauCount == 1 {
		return &Bookmark{
			Type:        BookmarkPlateau,
			Generation:  stats.Generation,
			Island:      -1,
			Description: fmt.Sprintf("Best score flat at %.3f for %d generations", stats.ScoreMax, plateauWindow),
		}
	}
	return nil
}
