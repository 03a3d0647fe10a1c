// Package restricted wraps a fitness function so that a single invocation
// cannot exceed a wall-clock budget or a memory ceiling. Violations are
// reported as a distinguished *LimitError instead of hanging the caller or
// exceeding the ceiling unchecked.
package restricted

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// memCheckInterval is how often heap growth is sampled while a memory limit
// is in force.
const memCheckInterval = 50 * time.Millisecond

// Limit identifies which resource bound was violated.
type Limit int

const (
	// LimitWallClock marks a wall-clock timeout violation.
	LimitWallClock Limit = iota + 1
	// LimitMemory marks a memory ceiling violation.
	LimitMemory
)

// String returns a short name for the limit.
func (l Limit) String() string {
	switch l {
	case LimitWallClock:
		return "wall_clock"
	case LimitMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// LimitError reports a resource-limit violation during a single evaluation.
type LimitError struct {
	Limit   Limit
	Timeout time.Duration // wall-clock budget, for LimitWallClock
	Memory  int64         // ceiling in bytes, for LimitMemory
}

// Error returns the string representation of the error.
func (e *LimitError) Error() string {
	switch e.Limit {
	case LimitWallClock:
		return fmt.Sprintf("evaluation exceeded wall-clock limit of %v", e.Timeout)
	case LimitMemory:
		return fmt.Sprintf("evaluation exceeded memory limit of %d bytes", e.Memory)
	default:
		return "evaluation exceeded resource limit"
	}
}

// Evaluator runs a fitness function under a wall-clock budget and a memory
// ceiling. Each call executes in its own goroutine; on violation the call is
// abandoned and an error returned without corrupting caller state. Go cannot
// kill a goroutine, so an abandoned call may keep running until it returns
// on its own. Heap accounting is process-wide and sampled, not exact.
type Evaluator struct {
	fn          func(c interface{}) (float64, error)
	timeout     time.Duration
	memoryLimit int64
}

// New builds an evaluator around fn. A zero timeout or memory limit disables
// that bound.
func New(fn func(c interface{}) (float64, error), timeout time.Duration, memoryLimit int64) *Evaluator {
	return &Evaluator{fn: fn, timeout: timeout, memoryLimit: memoryLimit}
}

// Evaluate scores c under the configured limits. A panic inside the fitness
// function is recovered and reported as an ordinary error. Cancelling ctx
// abandons the call and returns ctx.Err().
func (e *Evaluator) Evaluate(ctx context.Context, c interface{}) (float64, error) {
	type outcome struct {
		fitness float64
		err     error
	}

	// Buffered so an abandoned call can deliver its result and exit.
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("fitness function panicked: %v", r)}
			}
		}()
		fitness, err := e.fn(c)
		done <- outcome{fitness: fitness, err: err}
	}()

	var timeoutC <-chan time.Time
	if e.timeout > 0 {
		timer := time.NewTimer(e.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	var memC <-chan time.Time
	var baseline uint64
	if e.memoryLimit > 0 {
		baseline = heapAlloc()
		ticker := time.NewTicker(memCheckInterval)
		defer ticker.Stop()
		memC = ticker.C
	}

	for {
		select {
		case out := <-done:
			return out.fitness, out.err
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timeoutC:
			return 0, &LimitError{Limit: LimitWallClock, Timeout: e.timeout}
		case <-memC:
			if grown := heapGrowth(baseline); grown > e.memoryLimit {
				return 0, &LimitError{Limit: LimitMemory, Memory: e.memoryLimit}
			}
		}
	}
}

func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

func heapGrowth(baseline uint64) int64 {
	current := heapAlloc()
	if current <= baseline {
		return 0
	}
	return int64(current - baseline)
}
