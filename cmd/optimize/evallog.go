package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// evalLog records every CMA-ES evaluation to CSV and tracks the best one.
// Values are logged after clamping, the values the runs actually used.
type evalLog struct {
	params   *ParamVector
	w        *csv.Writer
	maxEvals int
	start    time.Time

	count       int
	bestFitness float64
	bestParams  []float64
}

func newEvalLog(w io.Writer, params *ParamVector, maxEvals int) (*evalLog, error) {
	l := &evalLog{
		params:      params,
		w:           csv.NewWriter(w),
		maxEvals:    maxEvals,
		start:       time.Now(),
		bestFitness: 1e9,
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := l.w.Write(header); err != nil {
		return nil, err
	}
	l.w.Flush()
	return l, l.w.Error()
}

// record logs one evaluation of the normalized point x.
func (l *evalLog) record(x []float64, fitness, quality float64) error {
	l.count++
	clamped := l.params.Clamp(l.params.Denormalize(x))
	if fitness < l.bestFitness {
		l.bestFitness = fitness
		l.bestParams = clamped
	}

	row := []string{strconv.Itoa(l.count), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.6f", quality)}
	for _, v := range clamped {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

// progress is the one-line status printed after each evaluation.
func (l *evalLog) progress(quality float64) string {
	elapsed := time.Since(l.start)
	remaining := time.Duration(l.maxEvals-l.count) * (elapsed / time.Duration(max(l.count, 1)))
	return fmt.Sprintf("Eval %d/%d: quality=%.3f (best=%.3f) | elapsed: %s, ETA: %s",
		l.count, l.maxEvals, quality, l.bestQuality(),
		formatDuration(elapsed), formatDuration(remaining))
}

func (l *evalLog) bestQuality() float64 {
	if l.bestParams == nil {
		return 0
	}
	return -l.bestFitness
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
