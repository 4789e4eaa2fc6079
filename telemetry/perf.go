package telemetry

import (
	"log/slog"
	"time"
)

// Phase names of a controller batch.
const (
	PhaseSeeding    = "seeding"
	PhaseStepping   = "stepping"
	PhaseEvaluating = "evaluating"
	PhaseBreeding   = "breeding"
	PhaseTelemetry  = "telemetry"
)

var phases = []string{PhaseSeeding, PhaseStepping, PhaseEvaluating, PhaseBreeding, PhaseTelemetry}

// PerfSample holds timing data for a single batch.
type PerfSample struct {
	BatchDuration time.Duration
	Ticks         int
	Phases        map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window of batches.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	batchStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of batches to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartBatch begins timing a new batch.
func (p *PerfCollector) StartBatch() {
	p.batchStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndBatch finishes timing the current batch, which advanced the given ticks.
func (p *PerfCollector) EndBatch(ticks int) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		BatchDuration: now.Sub(p.batchStart),
		Ticks:         ticks,
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgBatchDuration time.Duration
	MinBatchDuration time.Duration
	MaxBatchDuration time.Duration

	// Phase breakdown (average durations and share of batch time)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var total, minBatch, maxBatch time.Duration
	var ticks int
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.BatchDuration
		ticks += s.Ticks

		if i == 0 || s.BatchDuration < minBatch {
			minBatch = s.BatchDuration
		}
		if s.BatchDuration > maxBatch {
			maxBatch = s.BatchDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var ticksPerSec float64
	if total > 0 {
		ticksPerSec = float64(ticks) / total.Seconds()
	}

	return PerfStats{
		AvgBatchDuration: avg,
		MinBatchDuration: minBatch,
		MaxBatchDuration: maxBatch,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		TicksPerSecond:   ticksPerSec,
		FrameDuration:    p.frameDuration,
		FPS:              fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_batch_us", s.AvgBatchDuration.Microseconds(),
		"min_batch_us", s.MinBatchDuration.Microseconds(),
		"max_batch_us", s.MaxBatchDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_batch_us", s.AvgBatchDuration.Microseconds()),
		slog.Int64("min_batch_us", s.MinBatchDuration.Microseconds()),
		slog.Int64("max_batch_us", s.MaxBatchDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Generation    int     `csv:"generation"`
	AvgBatchUS    int64   `csv:"avg_batch_us"`
	MinBatchUS    int64   `csv:"min_batch_us"`
	MaxBatchUS    int64   `csv:"max_batch_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	FPS           float64 `csv:"fps"`
	SeedingPct    float64 `csv:"seeding_pct"`
	SteppingPct   float64 `csv:"stepping_pct"`
	EvaluatingPct float64 `csv:"evaluating_pct"`
	BreedingPct   float64 `csv:"breeding_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	return PerfStatsCSV{
		Generation:    generation,
		AvgBatchUS:    s.AvgBatchDuration.Microseconds(),
		MinBatchUS:    s.MinBatchDuration.Microseconds(),
		MaxBatchUS:    s.MaxBatchDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		FPS:           s.FPS,
		SeedingPct:    s.PhasePct[PhaseSeeding],
		SteppingPct:   s.PhasePct[PhaseStepping],
		EvaluatingPct: s.PhasePct[PhaseEvaluating],
		BreedingPct:   s.PhasePct[PhaseBreeding],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
