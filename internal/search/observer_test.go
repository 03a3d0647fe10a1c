package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taggedObserver appends "<tag>:<event>" entries to a shared log so dispatch
// order across observers can be asserted.
type taggedObserver struct {
	tag string
	log *[]string
}

func (o *taggedObserver) record(event string, args ...interface{}) {
	entry := o.tag + ":" + event
	if len(args) > 0 {
		entry += fmt.Sprintf("%v", args)
	}
	*o.log = append(*o.log, entry)
}

func (o *taggedObserver) Begin(total int) { o.record("begin", total) }
func (o *taggedObserver) StartGeneration(r int, _ *Result) { o.record("start_generation", r) }
func (o *taggedObserver) SampleSolution(c Candidate) { o.record("sample", c) }
func (o *taggedObserver) EvalSolution(c Candidate, f float64) { o.record("eval", c, f) }
func (o *taggedObserver) Error(err error, _ Candidate) { o.record("error", err) }
func (o *taggedObserver) UpdateBest(best Result, _ *Result) { o.record("update_best", best.Fitness) }
func (o *taggedObserver) FinishGeneration(fns []float64) { o.record("finish_generation", fns) }
func (o *taggedObserver) End(_ *Result) { o.record("end") }

func TestMultiObserverForwardsInOrder(t *testing.T) {
	var log []string
	a := &taggedObserver{tag: "a", log: &log}
	b := &taggedObserver{tag: "b", log: &log}

	engine := newTestEngine(t, Config{
		Generator:      countingGenerator(),
		Fitness:        scriptedFitness(1.0, 2.0),
		PopulationSize: 1,
		Maximize:       true,
	})

	_, err := engine.Run(context.Background(), 2, a, b)
	require.NoError(t, err)
	require.NotEmpty(t, log)

	// Every event reaches a first, then b, with identical arguments.
	require.Equal(t, 0, len(log)%2)
	for i := 0; i < len(log); i += 2 {
		assert.Equal(t, "a", log[i][:1])
		assert.Equal(t, "b", log[i+1][:1])
		assert.Equal(t, log[i][2:], log[i+1][2:])
	}
}

func TestMultiObserverMatchesSingleObserverSequence(t *testing.T) {
	runWith := func(observers func(log *[]string) []Observer) []string {
		var log []string
		engine := newTestEngine(t, Config{
			Generator:      countingGenerator(),
			Fitness:        scriptedFitness(1.0, 3.0, 2.0),
			PopulationSize: 2,
			Maximize:       true,
		})
		_, err := engine.Run(context.Background(), 3, observers(&log)...)
		require.NoError(t, err)
		return log
	}

	single := runWith(func(log *[]string) []Observer {
		return []Observer{&taggedObserver{tag: "x", log: log}}
	})
	multi := runWith(func(log *[]string) []Observer {
		return []Observer{&taggedObserver{tag: "x", log: log}, NoopObserver{}}
	})

	assert.Equal(t, single, multi)
}

func TestMultiObserverDirectDispatch(t *testing.T) {
	var log []string
	m := MultiObserver{
		&taggedObserver{tag: "a", log: &log},
		&taggedObserver{tag: "b", log: &log},
	}

	m.Begin(5)
	m.Error(errors.New("boom"), nil)
	m.End(nil)

	assert.Equal(t, []string{
		"a:begin[5]", "b:begin[5]",
		"a:error[boom]", "b:error[boom]",
		"a:end", "b:end",
	}, log)
}

func TestNoopObserverEmbedding(t *testing.T) {
	// Observers embedding NoopObserver only implement what they need.
	var o Observer = NewMemoryObserver()
	o.Begin(1)
	o.SampleSolution(nil)
	o.End(nil)
}
