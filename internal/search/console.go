package search

import (
	"fmt"
	"io"
	"os"
	"time"
)

// ConsoleObserver prints a textual trace of the run, estimating the
// remaining wall-clock time from the elapsed time per evaluation.
type ConsoleObserver struct {
	out io.Writer

	start      time.Time
	startTotal int
}

// NewConsoleObserver writes to stdout. Pass a non-nil writer to redirect.
func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleObserver{out: out}
}

func (c *ConsoleObserver) Begin(total int) {
	c.start = time.Now()
	c.startTotal = total
	if total == Unbounded {
		fmt.Fprintln(c.out, "Starting search: evaluations=unbounded")
		return
	}
	fmt.Fprintf(c.out, "Starting search: evaluations=%d\n", total)
}

func (c *ConsoleObserver) StartGeneration(remaining int, best *Result) {
	bestFitness := 0.0
	if best != nil {
		bestFitness = best.Fitness
	}
	elapsed := time.Since(c.start).Round(time.Second)
	if c.startTotal == Unbounded || remaining == Unbounded {
		fmt.Fprintf(c.out, "New generation started: best_fn=%.3f, elapsed=%s\n", bestFitness, elapsed)
		return
	}
	done := c.startTotal - remaining + 1
	avg := elapsed / time.Duration(done)
	eta := (avg * time.Duration(remaining)).Round(time.Second)
	fmt.Fprintf(c.out, "New generation started: best_fn=%.3f, evaluations=%d, elapsed=%s, remaining=%s\n",
		bestFitness, remaining, elapsed, eta)
}

func (c *ConsoleObserver) SampleSolution(candidate Candidate) {
	fmt.Fprintf(c.out, "Evaluating candidate: %v\n", candidate)
}

func (c *ConsoleObserver) EvalSolution(_ Candidate, fitness float64) {
	fmt.Fprintf(c.out, "Fitness=%.3f\n", fitness)
}

func (c *ConsoleObserver) Error(err error, _ Candidate) {
	fmt.Fprintf(c.out, "(!) Error evaluating candidate: %v\n", err)
}

func (c *ConsoleObserver) UpdateBest(best Result, prev *Result) {
	prevFitness := 0.0
	if prev != nil {
		prevFitness = prev.Fitness
	}
	fmt.Fprintf(c.out, "Best solution: improved=%.3f, previous=%.3f\n", best.Fitness, prevFitness)
}

func (c *ConsoleObserver) FinishGeneration([]float64) {}

func (c *ConsoleObserver) End(best *Result) {
	if best == nil {
		fmt.Fprintln(c.out, "Search completed: no solution found")
		return
	}
	fmt.Fprintf(c.out, "Search completed: best_fn=%.3f, best=%v\n", best.Fitness, best.Candidate)
}
