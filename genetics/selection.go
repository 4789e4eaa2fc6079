package genetics

import "math/rand"

// DefaultTournamentSize is the number of candidates drawn per tournament.
const DefaultTournamentSize = 2

// Tournament samples k indices uniformly with replacement and returns the one
// with the highest fitness. The earliest sampled candidate wins ties.
func Tournament(rng *rand.Rand, fitness []float64, k int) int {
	if k < 1 {
		k = 1
	}
	best := rng.Intn(len(fitness))
	for i := 1; i < k; i++ {
		candidate := rng.Intn(len(fitness))
		if fitness[candidate] > fitness[best] {
			best = candidate
		}
	}
	return best
}

// SelectPool runs n independent tournaments and returns the winning indices.
func SelectPool(rng *rand.Rand, fitness []float64, k, n int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = Tournament(rng, fitness, k)
	}
	return pool
}

// ArgMax returns the index of the largest value (first on ties).
func ArgMax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// ArgMin returns the index of the smallest value (first on ties).
func ArgMin(values []float64) int {
	best := 0
	for i, v := range values {
		if v < values[best] {
			best = i
		}
	}
	return best
}
