// Package main tunes the genetic algorithm's parameters with CMA-ES, scoring
// each candidate by short headless runs under the configured strategy.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/turmites/config"
	"github.com/pthm-cable/turmites/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 20, "Generations per evaluation run")
	ticks := flag.Int("ticks", 0, "Override ticks per generation for evaluation runs (0 = use config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *seeds < 1 || *generations < 1 {
		log.Fatal("--seeds and --generations must be positive")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Base config, with the evaluation tick override applied
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg().Clone()
	if *ticks > 0 {
		baseCfg.Evolution.TicksPerGeneration = *ticks
	}
	if err := baseCfg.Validate(); err != nil {
		log.Fatalf("invalid base config: %v", err)
	}

	// The tunable parameters depend on the strategy
	params := NewParamVector(baseCfg.Evolution.Strategy)
	if params.Dim() < 2 {
		// CMA-ES needs at least two dimensions
		log.Fatalf("strategy %q has too few tunable parameters", baseCfg.Evolution.Strategy)
	}

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *generations, evalSeeds, baseCfg)

	// Evaluation log
	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	evals, err := newEvalLog(logFile, params, *maxEvals)
	if err != nil {
		log.Fatalf("failed to write log header: %v", err)
	}

	// The search runs in normalized space, starting from the base config
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			fitness := evaluator.Evaluate(params.Denormalize(x))
			quality := evaluator.LastQuality()
			if err := evals.record(x, fitness, quality); err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}
			fmt.Println(evals.progress(quality))
			return fitness
		},
	}
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(params.Dim())/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Seeds already run in parallel
	}

	fmt.Printf("Starting CMA-ES optimization of %s with %d parameters, population=%d, max_evals=%d\n",
		baseCfg.Evolution.Strategy, params.Dim(), popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d, ticks per generation: %d\n",
		*seeds, *generations, baseCfg.Evolution.TicksPerGeneration)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Best params from any evaluation, falling back to the final point
	bestParams := evals.bestParams
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evals.count, formatDuration(time.Since(evals.start)))
	fmt.Printf("Best quality: %.3f\n", evals.bestQuality())
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	// The saved config keeps the base ticks per generation
	bestCfg := config.Cfg().Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	if run := evaluator.BestRun(); run != nil {
		runPath := filepath.Join(*outputDir, "best_run.csv")
		if err := writeRun(runPath, run); err != nil {
			log.Printf("failed to write best run: %v", err)
		} else {
			fmt.Printf("Best run saved to: %s\n", runPath)
		}
	}
}

// writeRun saves per-generation summaries in the generations.csv layout.
func writeRun(path string, run []telemetry.GenerationStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(run, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
