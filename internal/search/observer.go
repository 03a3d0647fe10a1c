package search

// Observer receives every lifecycle event of a single run. Observers own no
// engine state; arguments are read-only views valid for the duration of the
// call and must not be mutated or retained. All hooks are invoked from the
// engine goroutine, in draw order.
//
// Embed NoopObserver to get no-op defaults for the hooks you don't care
// about.
type Observer interface {
	// Begin fires once before the first generation. total is the evaluation
	// budget, or Unbounded.
	Begin(total int)
	// StartGeneration fires before each generation with the remaining
	// budget and the current best (nil before the first successful
	// evaluation).
	StartGeneration(remaining int, best *Result)
	// SampleSolution fires after a candidate is drawn, before evaluation.
	SampleSolution(c Candidate)
	// EvalSolution fires after every evaluation attempt, including
	// tolerated failures with fitness forced to 0.
	EvalSolution(c Candidate, fitness float64)
	// Error fires on generator and evaluation failures. c is nil for
	// generator failures.
	Error(err error, c Candidate)
	// UpdateBest fires when a candidate strictly improves on the best so
	// far, before the tracker state is replaced. prev is nil on the first
	// improvement.
	UpdateBest(best Result, prev *Result)
	// FinishGeneration fires after each completed generation with the
	// fitness values obtained in it, forced zeros included and skipped
	// draws excluded.
	FinishGeneration(fitnesses []float64)
	// End fires exactly once when the run stops, whatever the reason.
	End(best *Result)
}

// NoopObserver implements Observer with empty hooks.
type NoopObserver struct{}

func (NoopObserver) Begin(int) {}
func (NoopObserver) StartGeneration(int, *Result) {}
func (NoopObserver) SampleSolution(Candidate) {}
func (NoopObserver) EvalSolution(Candidate, float64) {}
func (NoopObserver) Error(error, Candidate) {}
func (NoopObserver) UpdateBest(Result, *Result) {}
func (NoopObserver) FinishGeneration([]float64) {}
func (NoopObserver) End(*Result) {}

// MultiObserver broadcasts every event, in registration order, to every
// registered observer with identical arguments. A panicking observer
// propagates synchronously; dispatch to later observers is not isolated.
type MultiObserver []Observer

func (m MultiObserver) Begin(total int) {
	for _, o := range m {
		o.Begin(total)
	}
}

func (m MultiObserver) StartGeneration(remaining int, best *Result) {
	for _, o := range m {
		o.StartGeneration(remaining, best)
	}
}

func (m MultiObserver) SampleSolution(c Candidate) {
	for _, o := range m {
		o.SampleSolution(c)
	}
}

func (m MultiObserver) EvalSolution(c Candidate, fitness float64) {
	for _, o := range m {
		o.EvalSolution(c, fitness)
	}
}

func (m MultiObserver) Error(err error, c Candidate) {
	for _, o := range m {
		o.Error(err, c)
	}
}

func (m MultiObserver) UpdateBest(best Result, prev *Result) {
	for _, o := range m {
		o.UpdateBest(best, prev)
	}
}

func (m MultiObserver) FinishGeneration(fitnesses []float64) {
	for _, o := range m {
		o.FinishGeneration(fitnesses)
	}
}

func (m MultiObserver) End(best *Result) {
	for _, o := range m {
		o.End(best)
	}
}

// combine flattens the observer list handed to Run into a single dispatch
// target.
func combine(observers []Observer) Observer {
	switch len(observers) {
	case 0:
		return NoopObserver{}
	case 1:
		return observers[0]
	default:
		return MultiObserver(observers)
	}
}
