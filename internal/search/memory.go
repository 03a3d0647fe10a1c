package search

import (
	"sync"

	"gonum.org/v1/gonum/stat"
)

// MemoryObserver records, per generation, the best-so-far fitness and the
// mean of that generation's fitness sequence. The hooks run on the engine
// goroutine; BestSeries and MeanSeries may be called concurrently from other
// goroutines while a run is in flight and return snapshot copies.
type MemoryObserver struct {
	NoopObserver

	mu sync.Mutex
	// generationBest holds the best-so-far fitness after each finished
	// generation, plus a trailing slot for the generation in flight. It is
	// seeded with 0.
	generationBest []float64
	// generationMean holds the mean fitness of each finished generation.
	// The mean of an empty generation is 0.
	generationMean []float64
}

// NewMemoryObserver returns an observer ready for a single run.
func NewMemoryObserver() *MemoryObserver {
	return &MemoryObserver{generationBest: []float64{0}}
}

func (m *MemoryObserver) UpdateBest(best Result, _ *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationBest[len(m.generationBest)-1] = best.Fitness
}

func (m *MemoryObserver) FinishGeneration(fitnesses []float64) {
	mean := 0.0
	if len(fitnesses) > 0 {
		mean = stat.Mean(fitnesses, nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationMean = append(m.generationMean, mean)
	m.generationBest = append(m.generationBest, m.generationBest[len(m.generationBest)-1])
}

// BestSeries returns the best-so-far fitness for each finished generation.
func (m *MemoryObserver) BestSeries() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.generationMean))
	copy(out, m.generationBest)
	return out
}

// MeanSeries returns the mean fitness of each finished generation.
func (m *MemoryObserver) MeanSeries() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.generationMean))
	copy(out, m.generationMean)
	return out
}
