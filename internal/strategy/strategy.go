// Package strategy provides concrete candidate generators for the search
// engine. Candidates are float64 vectors drawn from a bounded space; the
// engine itself stays agnostic to this representation.
package strategy

import (
	"fmt"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ascentd/ascent/internal/search"
)

// VectorSpace is a box-bounded vector search space. It hands out a fresh
// sampler per draw, each seeded from the space's root source so runs are
// reproducible for a given seed.
type VectorSpace struct {
	bounds [][2]float64
	rng    *exprand.Rand
}

// NewVectorSpace validates bounds and builds a space seeded with seed.
func NewVectorSpace(bounds [][2]float64, seed uint64) (*VectorSpace, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("strategy: at least one dimension is required")
	}
	for i, b := range bounds {
		if b[0] >= b[1] {
			return nil, fmt.Errorf("strategy: invalid bounds [%g, %g] at dimension %d", b[0], b[1], i)
		}
	}
	return &VectorSpace{
		bounds: bounds,
		rng:    exprand.New(exprand.NewSource(seed)),
	}, nil
}

// Dims returns the dimensionality of the space.
func (s *VectorSpace) Dims() int {
	return len(s.bounds)
}

// Bounds returns the per-dimension [min, max] bounds.
func (s *VectorSpace) Bounds() [][2]float64 {
	return s.bounds
}

// SamplerBuilder returns a builder producing a fresh VectorSampler per
// candidate draw.
func (s *VectorSpace) SamplerBuilder() search.SamplerBuilder {
	return func() search.Sampler {
		src := exprand.NewSource(s.rng.Uint64())
		dims := make([]distuv.Uniform, len(s.bounds))
		for i, b := range s.bounds {
			dims[i] = distuv.Uniform{Min: b[0], Max: b[1], Src: src}
		}
		return &VectorSampler{dims: dims}
	}
}

// VectorSampler draws uniform vectors within the bounds of the space that
// built it. One sampler serves exactly one candidate draw.
type VectorSampler struct {
	dims []distuv.Uniform
}

// Vector draws one point.
func (s *VectorSampler) Vector() []float64 {
	x := make([]float64, len(s.dims))
	for i := range s.dims {
		x[i] = s.dims[i].Rand()
	}
	return x
}

// RandomSearch returns a generator drawing uniform candidates from the
// sampler it is handed.
func RandomSearch() search.Generator {
	return func(s search.Sampler) (search.Candidate, error) {
		sampler, ok := s.(*VectorSampler)
		if !ok {
			return nil, fmt.Errorf("strategy: expected *VectorSampler, got %T", s)
		}
		return sampler.Vector(), nil
	}
}
