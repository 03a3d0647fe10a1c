package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ascentd/ascent/internal/search/restricted"
)

// Unbounded is the evaluation budget passed to observers when Run was asked
// to search without one.
const Unbounded = math.MaxInt

// Engine is the driving loop. Per generation it draws up to PopulationSize
// candidates, scores each, updates the best tracker, notifies observers, and
// consults the termination policy. Generation and evaluation are strictly
// sequential; the only concurrency lives inside the evaluator.
type Engine struct {
	cfg  Config
	eval Evaluator
}

// New validates cfg and builds an engine. When no Evaluator is injected the
// fitness function is wrapped in a resource-restricted evaluator whenever an
// evaluation timeout or memory limit is configured, mirroring the limits in
// cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Generator == nil {
		return nil, errors.New("search: generator is required")
	}
	if cfg.Fitness == nil && cfg.Evaluator == nil {
		return nil, errors.New("search: fitness function or evaluator is required")
	}
	if cfg.PopulationSize < 1 {
		return nil, fmt.Errorf("search: population size must be >= 1, got %d", cfg.PopulationSize)
	}
	if cfg.EvaluationTimeout < 0 {
		return nil, fmt.Errorf("search: evaluation timeout must be >= 0, got %v", cfg.EvaluationTimeout)
	}
	if cfg.MemoryLimit < 0 {
		return nil, fmt.Errorf("search: memory limit must be >= 0, got %d", cfg.MemoryLimit)
	}
	if cfg.EarlyStop < 0 {
		return nil, fmt.Errorf("search: early stop threshold must be >= 0, got %d", cfg.EarlyStop)
	}
	if cfg.SearchTimeout < 0 {
		return nil, fmt.Errorf("search: search timeout must be >= 0, got %v", cfg.SearchTimeout)
	}
	switch cfg.ErrorPolicy {
	case "":
		cfg.ErrorPolicy = ErrorPolicyRaise
	case ErrorPolicyRaise, ErrorPolicyContinue:
	default:
		return nil, fmt.Errorf("search: unknown error policy %q", cfg.ErrorPolicy)
	}

	eval := cfg.Evaluator
	if eval == nil {
		if cfg.EvaluationTimeout > 0 || cfg.MemoryLimit > 0 {
			eval = restricted.New(cfg.Fitness, cfg.EvaluationTimeout, cfg.MemoryLimit)
		} else {
			eval = fitnessEvaluator(cfg.Fitness)
		}
	}

	return &Engine{cfg: cfg, eval: eval}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run performs at most evaluations fitness-evaluation attempts and returns
// the best candidate found with its fitness. evaluations <= 0 means
// unbounded. A nil result means no evaluation ever succeeded.
//
// Cancelling ctx interrupts the run at the next safe point between
// evaluation attempts; interruption is a normal termination and returns the
// current best with a nil error. Under ErrorPolicyRaise the first evaluation
// failure ends the run and is returned alongside the current best; observers
// receive End exactly once on every exit path.
func (e *Engine) Run(ctx context.Context, evaluations int, observers ...Observer) (*Result, error) {
	obs := combine(observers)

	remaining := evaluations
	if remaining <= 0 {
		remaining = Unbounded
	}

	trk := &tracker{maximize: e.cfg.Maximize}
	term := &terminator{
		searchTimeout: e.cfg.SearchTimeout,
		earlyStop:     e.cfg.EarlyStop,
		start:         time.Now(),
	}
	noImprovement := 0
	reason := ReasonNone

	obs.Begin(remaining)

outer:
	for remaining > 0 {
		obs.StartGeneration(remaining, trk.best)
		noImprovement++
		fitnesses := make([]float64, 0, e.cfg.PopulationSize)

		for i := 0; i < e.cfg.PopulationSize; i++ {
			if ctx.Err() != nil {
				reason = ReasonInterrupted
				break outer
			}

			candidate, err := e.cfg.Generator(e.buildSampler())
			if err != nil {
				// A failed draw is skipped without touching the budget;
				// population accounting is per draw attempt.
				obs.Error(&GenerationError{Err: err}, nil)
				continue
			}

			obs.SampleSolution(candidate)
			fitness, err := e.eval.Evaluate(ctx, candidate)
			if err != nil {
				if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
					remaining--
					reason = ReasonInterrupted
					break outer
				}
				fitness = 0
				evalErr := &EvaluationError{Err: err}
				obs.Error(evalErr, candidate)
				if e.cfg.ErrorPolicy == ErrorPolicyRaise {
					obs.End(trk.best)
					return trk.best, evalErr
				}
			}

			obs.EvalSolution(candidate, fitness)
			fitnesses = append(fitnesses, fitness)

			if trk.improves(fitness) {
				obs.UpdateBest(Result{Candidate: candidate, Fitness: fitness}, trk.best)
				trk.update(candidate, fitness)
				noImprovement = 0
			}

			remaining--
			if remaining <= 0 {
				reason = ReasonBudgetExhausted
				break
			}
			if r := term.check(noImprovement, time.Now()); r != ReasonNone {
				reason = r
				break
			}
		}

		obs.FinishGeneration(fitnesses)

		if reason != ReasonNone {
			break
		}
	}

	obs.End(trk.best)
	return trk.best, nil
}

func (e *Engine) buildSampler() Sampler {
	if e.cfg.SamplerBuilder == nil {
		return nil
	}
	return e.cfg.SamplerBuilder()
}
