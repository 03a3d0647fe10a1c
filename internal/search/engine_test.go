package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator returns int candidates 1, 2, 3, ... and fails on the
// draws listed in failOn.
func countingGenerator(failOn ...int) Generator {
	failures := make(map[int]bool, len(failOn))
	for _, n := range failOn {
		failures[n] = true
	}
	calls := 0
	return func(Sampler) (Candidate, error) {
		calls++
		if failures[calls] {
			return nil, fmt.Errorf("draw %d failed", calls)
		}
		return calls, nil
	}
}

// scriptedFitness returns the given values in order and keeps returning the
// last one afterwards.
func scriptedFitness(values ...float64) Fitness {
	calls := 0
	return func(Candidate) (float64, error) {
		if calls < len(values) {
			calls++
		}
		return values[calls-1], nil
	}
}

// recorder tracks engine events for assertions.
type recorder struct {
	begins   []int
	starts   int
	samples  []Candidate
	evals    []float64
	errs     []error
	updates  []Result
	finishes [][]float64
	ends     []*Result
}

func (r *recorder) Begin(total int) { r.begins = append(r.begins, total) }
func (r *recorder) StartGeneration(int, *Result) { r.starts++ }
func (r *recorder) SampleSolution(c Candidate) { r.samples = append(r.samples, c) }
func (r *recorder) EvalSolution(_ Candidate, f float64) { r.evals = append(r.evals, f) }
func (r *recorder) Error(err error, _ Candidate) { r.errs = append(r.errs, err) }
func (r *recorder) UpdateBest(best Result, _ *Result) { r.updates = append(r.updates, best) }
func (r *recorder) FinishGeneration(fitnesses []float64) {
	snapshot := make([]float64, len(fitnesses))
	copy(snapshot, fitnesses)
	r.finishes = append(r.finishes, snapshot)
}
func (r *recorder) End(best *Result) { r.ends = append(r.ends, best) }

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	engine, err := New(cfg)
	require.NoError(t, err)
	return engine
}

func TestNewValidation(t *testing.T) {
	valid := Config{
		Generator:      countingGenerator(),
		Fitness:        scriptedFitness(1),
		PopulationSize: 1,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing generator",
			mutate:  func(c *Config) { c.Generator = nil },
			wantErr: "generator is required",
		},
		{
			name:    "missing fitness",
			mutate:  func(c *Config) { c.Fitness = nil },
			wantErr: "fitness function or evaluator is required",
		},
		{
			name:    "zero population",
			mutate:  func(c *Config) { c.PopulationSize = 0 },
			wantErr: "population size must be >= 1",
		},
		{
			name:    "negative evaluation timeout",
			mutate:  func(c *Config) { c.EvaluationTimeout = -1 },
			wantErr: "evaluation timeout must be >= 0",
		},
		{
			name:    "negative memory limit",
			mutate:  func(c *Config) { c.MemoryLimit = -1 },
			wantErr: "memory limit must be >= 0",
		},
		{
			name:    "negative early stop",
			mutate:  func(c *Config) { c.EarlyStop = -1 },
			wantErr: "early stop threshold must be >= 0",
		},
		{
			name:    "unknown error policy",
			mutate:  func(c *Config) { c.ErrorPolicy = "explode" },
			wantErr: "unknown error policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			engine, err := New(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				require.NotNil(t, engine)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, engine)
		})
	}
}

func TestRunTracksStrictImprovements(t *testing.T) {
	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(),
		Fitness:        scriptedFitness(1.0, 5.0, 2.0),
		PopulationSize: 1,
		Maximize:       true,
	})

	rec := &recorder{}
	best, err := engine.Run(context.Background(), 3, rec)
	require.NoError(t, err)
	require.NotNil(t, best)

	assert.Equal(t, 5.0, best.Fitness)
	assert.Equal(t, 2, best.Candidate)

	// Improvements after evaluations 1 and 2 only.
	require.Len(t, rec.updates, 2)
	assert.Equal(t, 1.0, rec.updates[0].Fitness)
	assert.Equal(t, 5.0, rec.updates[1].Fitness)

	assert.Equal(t, []float64{1.0, 5.0, 2.0}, rec.evals)
	require.Len(t, rec.ends, 1)
	assert.Equal(t, best, rec.ends[0])
}

func TestRunMinimize(t *testing.T) {
	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(),
		Fitness:        scriptedFitness(5.0, 3.0, 4.0),
		PopulationSize: 1,
	})

	best, err := engine.Run(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 3.0, best.Fitness)
	assert.Equal(t, 2, best.Candidate)
}

func TestRunTiesNeverUpdate(t *testing.T) {
	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(),
		Fitness:        scriptedFitness(2.0, 2.0, 2.0),
		PopulationSize: 1,
		Maximize:       true,
	})

	rec := &recorder{}
	best, err := engine.Run(context.Background(), 3, rec)
	require.NoError(t, err)
	require.NotNil(t, best)

	assert.Len(t, rec.updates, 1)
	assert.Equal(t, 1, best.Candidate)
}

func TestRunSpendsExactBudget(t *testing.T) {
	for _, popSize := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("pop_%d", popSize), func(t *testing.T) {
			engine := newTestEngine(t, Config{
				Generator:      countingGenerator(),
				Fitness:        scriptedFitness(1.0),
				PopulationSize: popSize,
				Maximize:       true,
			})

			rec := &recorder{}
			_, err := engine.Run(context.Background(), 7, rec)
			require.NoError(t, err)

			assert.Len(t, rec.evals, 7)
			assert.Len(t, rec.samples, 7)

			total := 0
			for _, gen := range rec.finishes {
				total += len(gen)
				assert.LessOrEqual(t, len(gen), popSize)
			}
			assert.Equal(t, 7, total)
		})
	}
}

func TestRunGeneratorFailureDoesNotConsumeBudget(t *testing.T) {
	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(1, 3),
		Fitness:        scriptedFitness(1.0),
		PopulationSize: 2,
		Maximize:       true,
	})

	rec := &recorder{}
	_, err := engine.Run(context.Background(), 2, rec)
	require.NoError(t, err)

	// Draws 1 and 3 fail; the budget is only spent on draws 2 and 4.
	assert.Len(t, rec.evals, 2)
	require.Len(t, rec.errs, 2)
	for _, err := range rec.errs {
		var genErr *GenerationError
		assert.ErrorAs(t, err, &genErr)
	}
	require.Len(t, rec.finishes, 2)
	assert.Len(t, rec.finishes[0], 1)
	assert.Len(t, rec.finishes[1], 1)
}

func TestRunRaisePolicyAbortsOnFirstFailure(t *testing.T) {
	engine := newTestEngine(t, Config{
		Generator: countingGenerator(),
		Fitness: func(Candidate) (float64, error) {
			return 0, errors.New("broken pipeline")
		},
		PopulationSize: 1,
		ErrorPolicy:    ErrorPolicyRaise,
	})

	rec := &recorder{}
	best, err := engine.Run(context.Background(), 10, rec)
	require.Error(t, err)
	assert.Nil(t, best)

	var evalErr *EvaluationError
	assert.ErrorAs(t, err, &evalErr)

	// Exactly one attempt, End fired once before surfacing the failure.
	assert.Len(t, rec.samples, 1)
	assert.Empty(t, rec.evals)
	require.Len(t, rec.ends, 1)
	assert.Nil(t, rec.ends[0])
	assert.Empty(t, rec.finishes)
}

func TestRunContinuePolicyForcesZeroFitness(t *testing.T) {
	calls := 0
	engine := newTestEngine(t, Config{
		Generator: countingGenerator(),
		Fitness: func(Candidate) (float64, error) {
			calls++
			if calls == 2 {
				return 0, errors.New("flaky evaluation")
			}
			return float64(calls), nil
		},
		PopulationSize: 1,
		Maximize:       true,
		ErrorPolicy:    ErrorPolicyContinue,
	})

	rec := &recorder{}
	best, err := engine.Run(context.Background(), 3, rec)
	require.NoError(t, err)
	require.NotNil(t, best)

	assert.Equal(t, []float64{1.0, 0.0, 3.0}, rec.evals)
	assert.Equal(t, 3.0, best.Fitness)
	require.Len(t, rec.errs, 1)
	var evalErr *EvaluationError
	assert.ErrorAs(t, rec.errs[0], &evalErr)
}

func TestRunEarlyStop(t *testing.T) {
	// First evaluation improves, everything after is a tie. With a
	// threshold of 2 the streak reads 1, 2, 3 over the following
	// generations and the run stops inside the fourth.
	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(),
		Fitness:        scriptedFitness(1.0),
		PopulationSize: 1,
		Maximize:       true,
		EarlyStop:      2,
	})

	rec := &recorder{}
	best, err := engine.Run(context.Background(), 0, rec)
	require.NoError(t, err)
	require.NotNil(t, best)

	assert.Equal(t, 4, rec.starts)
	assert.Len(t, rec.finishes, 4)
	assert.Len(t, rec.evals, 4)
	assert.Equal(t, 1.0, best.Fitness)
}

func TestRunUnboundedBudget(t *testing.T) {
	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(),
		Fitness:        scriptedFitness(1.0),
		PopulationSize: 1,
		Maximize:       true,
		EarlyStop:      1,
	})

	rec := &recorder{}
	_, err := engine.Run(context.Background(), 0, rec)
	require.NoError(t, err)
	require.Len(t, rec.begins, 1)
	assert.Equal(t, Unbounded, rec.begins[0])
}

func TestRunInterruptPreservesBest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	engine := newTestEngine(t, Config{
		Generator: countingGenerator(),
		Fitness: func(Candidate) (float64, error) {
			calls++
			if calls == 3 {
				cancel()
			}
			return float64(calls), nil
		},
		PopulationSize: 1,
		Maximize:       true,
	})

	rec := &recorder{}
	best, err := engine.Run(ctx, 10, rec)
	require.NoError(t, err)
	require.NotNil(t, best)

	// The cancellation is noticed at the next safe point; the run ends
	// gracefully with the best seen so far.
	assert.Equal(t, 3.0, best.Fitness)
	assert.Len(t, rec.evals, 3)
	require.Len(t, rec.ends, 1)
	assert.Equal(t, best, rec.ends[0])
}

func TestRunWithInjectedEvaluator(t *testing.T) {
	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(),
		Evaluator:      evaluatorFunc(func(_ context.Context, c Candidate) (float64, error) { return float64(c.(int)) * 10, nil }),
		PopulationSize: 1,
		Maximize:       true,
	})

	best, err := engine.Run(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 20.0, best.Fitness)
}

type evaluatorFunc func(ctx context.Context, c Candidate) (float64, error)

func (f evaluatorFunc) Evaluate(ctx context.Context, c Candidate) (float64, error) {
	return f(ctx, c)
}
