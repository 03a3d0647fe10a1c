// Package search implements an anytime black-box search engine: it draws
// candidate solutions from a pluggable generator, scores them with a
// caller-supplied fitness function, and tracks the best solution seen until
// a budget or stopping condition is reached. The candidate representation,
// the generator, and the fitness function are opaque to the engine.
package search

import (
	"context"
	"time"
)

// Candidate is an opaque solution produced by a generator. The engine never
// inspects its structure, it only passes it to the fitness function and to
// observers.
type Candidate = interface{}

// Sampler is the generator-local randomness/context object. A fresh sampler
// is built for every candidate draw; its concrete type is owned by the
// strategy, not by the engine.
type Sampler = interface{}

// Generator produces a candidate from a fresh sampler. It may fail; a failed
// draw is skipped and does not consume the evaluation budget.
type Generator func(s Sampler) (Candidate, error)

// SamplerBuilder builds a fresh sampler for a single candidate draw.
type SamplerBuilder func() Sampler

// Fitness scores a candidate. It may fail; a failed evaluation is reported
// with fitness 0 and consumes one evaluation unit.
type Fitness func(c Candidate) (float64, error)

// Evaluator scores candidates on behalf of the engine. Implementations may
// run each call in an isolated execution context enforcing wall-clock and
// memory limits; a limit violation is returned as an ordinary error.
type Evaluator interface {
	Evaluate(ctx context.Context, c Candidate) (float64, error)
}

// fitnessEvaluator adapts a bare Fitness into an Evaluator with no
// resource restrictions.
type fitnessEvaluator Fitness

func (f fitnessEvaluator) Evaluate(_ context.Context, c Candidate) (float64, error) {
	return f(c)
}

// Result is a candidate/fitness pair. A nil *Result means no successful
// evaluation has happened yet.
type Result struct {
	Candidate Candidate
	Fitness   float64
}

// ErrorPolicy controls how the engine reacts to evaluation failures.
type ErrorPolicy string

const (
	// ErrorPolicyRaise aborts the whole run on the first evaluation failure.
	ErrorPolicyRaise ErrorPolicy = "raise"
	// ErrorPolicyContinue tolerates evaluation failures, forcing fitness 0.
	ErrorPolicyContinue ErrorPolicy = "continue"
)

// Config configures a search engine. It is validated once by New and never
// mutated afterwards.
type Config struct {
	// Generator draws candidates. Required.
	Generator Generator

	// SamplerBuilder builds a fresh sampler per draw. Optional; when nil the
	// generator receives a nil sampler.
	SamplerBuilder SamplerBuilder

	// Fitness scores candidates. Required unless Evaluator is set.
	Fitness Fitness

	// Evaluator, when set, replaces the default fitness wrapping entirely.
	// EvaluationTimeout and MemoryLimit are ignored in that case.
	Evaluator Evaluator

	// PopulationSize is the maximum number of candidates drawn per
	// generation. Must be >= 1.
	PopulationSize int

	// Maximize selects the improvement direction.
	Maximize bool

	// ErrorPolicy is applied to evaluation failures. Empty means raise.
	ErrorPolicy ErrorPolicy

	// EvaluationTimeout bounds a single fitness call. 0 disables the limit.
	EvaluationTimeout time.Duration

	// MemoryLimit bounds heap growth during a single fitness call, in
	// bytes. 0 disables the limit.
	MemoryLimit int64

	// EarlyStop terminates the run after more than EarlyStop consecutive
	// generations without improvement. 0 disables early stopping.
	EarlyStop int

	// SearchTimeout bounds the whole run. It is advisory and sampled
	// between evaluations; it cannot preempt a hung evaluation, only
	// EvaluationTimeout can. 0 disables the limit.
	SearchTimeout time.Duration
}

// DefaultConfig returns the engine defaults: single-candidate generations,
// maximization, raise on evaluation failure, five minutes per evaluation,
// four GiB of headroom, one hour of total search time.
func DefaultConfig() Config {
	return Config{
		PopulationSize:    1,
		Maximize:          true,
		ErrorPolicy:       ErrorPolicyRaise,
		EvaluationTimeout: 5 * time.Minute,
		MemoryLimit:       4 << 30,
		SearchTimeout:     time.Hour,
	}
}
