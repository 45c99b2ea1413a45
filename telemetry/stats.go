// Package telemetry accumulates per-generation analysis records and writes
// them as structured experiment output.
package telemetry

import (
	"gonum.org/v1/gonum/stat"
)

// GenerationStats is one generation's analysis record.
type GenerationStats struct {
	Generation     int     `csv:"generation"`
	Fixed          bool    `csv:"fixed"`
	MeanFitness    float64 `csv:"mean_fitness"`
	StdFitness     float64 `csv:"std_fitness"`
	MaxFitness     float64 `csv:"max_fitness"`
	MeanComplexity float64 `csv:"mean_complexity"`
	Ancestors      int     `csv:"repro_ind"` // distinct individuals that reproduced
	TotalItems     float64 `csv:"total_items"`
	Foragers       int     `csv:"foragers"`
	Klepts         int     `csv:"klepts"`
	Handlers       int     `csv:"handlers"`
	DurationMs     float64 `csv:"duration_ms"`
}

// FitnessSummary returns mean, standard deviation and maximum of a fitness
// vector. Empty and single-element vectors yield zero spread.
func FitnessSummary(fitness []float64) (mean, std, max float64) {
	if len(fitness) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(fitness, nil)
	if len(fitness) > 1 {
		std = stat.StdDev(fitness, nil)
	}
	max = fitness[0]
	for _, f := range fitness[1:] {
		if f > max {
			max = f
		}
	}
	return mean, std, max
}

// CountDistinct returns the number of distinct values in ids.
func CountDistinct(ids []int) int {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// Analysis accumulates generation records over a run. Burn-in generations
// are never recorded here.
type Analysis struct {
	gens []GenerationStats
}

// Append records one generation.
func (a *Analysis) Append(gs GenerationStats) {
	a.gens = append(a.gens, gs)
}

// Generations returns all recorded generation stats in order.
func (a *Analysis) Generations() []GenerationStats {
	return a.gens
}

// Last returns the most recent record, and whether one exists.
func (a *Analysis) Last() (GenerationStats, bool) {
	if len(a.gens) == 0 {
		return GenerationStats{}, false
	}
	return a.gens[len(a.gens)-1], true
}
