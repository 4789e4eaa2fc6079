package main

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/turmites/config"
	"github.com/pthm-cable/turmites/game"
	"github.com/pthm-cable/turmites/systems"
	"github.com/pthm-cable/turmites/telemetry"
)

// FitnessEvaluator runs short headless runs and scores their generations.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	mu          sync.Mutex
	lastQuality float64                     // quality from most recent Evaluate call
	bestQuality float64                     // best mean quality over all calls
	bestRun     []telemetry.GenerationStats // best seed's run of the best call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// BestRun returns the generation summaries of the best seed of the best
// evaluation so far, nil before any run succeeded.
func (fe *FitnessEvaluator) BestRun() []telemetry.GenerationStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRun
}

// Quality component weights.
const (
	qualityWeightBest       = 0.6
	qualityWeightPainted    = 0.3
	qualityWeightStagnation = 0.1
)

// Evaluate computes fitness for a parameter vector (lower = better).
// A run that fails scores zero quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	runs := make([][]telemetry.GenerationStats, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			stats, scale, err := fe.runSimulation(x, s)
			if err != nil {
				fmt.Printf("run with seed %d failed: %v\n", s, err)
				return
			}
			qualities[idx] = computeQuality(stats, scale)
			runs[idx] = stats
		}(i, seed)
	}
	wg.Wait()

	quality := stat.Mean(qualities, nil)
	fe.mu.Lock()
	fe.lastQuality = quality
	if best := floats.MaxIdx(qualities); runs[best] != nil && (fe.bestRun == nil || quality > fe.bestQuality) {
		fe.bestQuality = quality
		fe.bestRun = runs[best]
	}
	fe.mu.Unlock()

	return -quality
}

// runSimulation plays fe.generations generations from a fresh controller and
// returns their summaries, plus the factor that maps island scores to [0, 1].
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) ([]telemetry.GenerationStats, float64, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	// Seeds already run in parallel
	cfg.Scheduler.Workers = 1
	cfg.Telemetry.LogGenerations = false
	cfg.Telemetry.LogIslands = false

	stats := make([]telemetry.GenerationStats, 0, fe.generations)
	ctrl, err := game.NewController(cfg, game.Options{
		Seed: seed,
		OnGeneration: func(r game.GenerationResult) {
			stats = append(stats, r.Stats)
		},
	})
	if err != nil {
		return nil, 0, err
	}
	defer ctrl.Close()

	// Raw scores count cells
	scale := 1.0
	if _, raw := ctrl.Strategy().Evaluator().(systems.RawScore); raw {
		scale = 1 / float64(ctrl.Config().Derived.GridArea)
	}

	ctx := context.Background()
	for range fe.generations {
		if _, err := ctrl.StepOneGeneration(ctx); err != nil {
			return stats, scale, err
		}
	}
	return stats, scale, nil
}

// computeQuality scores a run in [0, 1] from the second half of its
// generations, weighted by the quality weights above.
func computeQuality(stats []telemetry.GenerationStats, scale float64) float64 {
	if len(stats) == 0 {
		return 0
	}
	late := stats[len(stats)/2:]

	best := make([]float64, len(late))
	painted := make([]float64, len(late))
	stagnant := make([]float64, len(late))
	for i, s := range late {
		best[i] = s.ScoreMax * scale
		painted[i] = s.PaintedMean
		if s.Islands > 0 {
			stagnant[i] = float64(s.Randomized) / float64(s.Islands)
		}
	}

	quality := qualityWeightBest*stat.Mean(best, nil) +
		qualityWeightPainted*stat.Mean(painted, nil) +
		qualityWeightStagnation*(1-stat.Mean(stagnant, nil))

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return min(max(x, 0), 1)
}
