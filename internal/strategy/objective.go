package strategy

import (
	"fmt"
	"math"

	"github.com/ascentd/ascent/internal/search"
)

// Objective is a benchmark function over a float64 vector. All objectives
// here are minimization problems.
type Objective func(x []float64) float64

// Sphere is sum(x_i^2), minimum 0 at the origin.
func Sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rastrigin is the classic multimodal benchmark, minimum 0 at the origin.
// Usual bounds are [-5.12, 5.12] per dimension.
func Rastrigin(x []float64) float64 {
	sum := 10.0 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10.0*math.Cos(2.0*math.Pi*v)
	}
	return sum
}

// Eggholder is a two-dimensional benchmark with minimum ~-959.6407 at
// (512, 404.2319). Usual bounds are [-512, 512] for both dimensions.
func Eggholder(x []float64) float64 {
	a := x[1] + 47
	return -a*math.Sin(math.Sqrt(math.Abs(x[0]/2+a))) -
		x[0]*math.Sin(math.Sqrt(math.Abs(x[0]-a)))
}

// Benchmark couples an objective with the smallest vector it accepts.
// Callers must not hand it vectors shorter than MinDims.
type Benchmark struct {
	Fn      Objective
	MinDims int
}

// Objectives maps objective names to benchmarks, for the server and CLI
// surfaces.
var Objectives = map[string]Benchmark{
	"sphere":    {Fn: Sphere, MinDims: 1},
	"rastrigin": {Fn: Rastrigin, MinDims: 1},
	"eggholder": {Fn: Eggholder, MinDims: 2},
}

// ObjectiveByName looks up a registered benchmark.
func ObjectiveByName(name string) (Benchmark, error) {
	bench, ok := Objectives[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("strategy: unknown objective %q", name)
	}
	return bench, nil
}

// FitnessFor adapts an objective into the engine's fitness contract over
// vector candidates.
func FitnessFor(obj Objective) search.Fitness {
	return func(c search.Candidate) (float64, error) {
		x, ok := c.([]float64)
		if !ok {
			return 0, fmt.Errorf("strategy: expected []float64 candidate, got %T", c)
		}
		return obj(x), nil
	}
}
