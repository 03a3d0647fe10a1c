package search

import "time"

// Reason explains why a run stopped. It is threaded through the loop
// explicitly instead of unwinding the stack; only Run's caller ever sees a
// ReasonFatalError surfaced as an error value.
type Reason int

const (
	// ReasonNone means the run should keep going.
	ReasonNone Reason = iota
	// ReasonBudgetExhausted means the evaluation budget reached zero.
	ReasonBudgetExhausted
	// ReasonTimeout means the search timeout elapsed.
	ReasonTimeout
	// ReasonEarlyStopped means too many generations passed without
	// improvement.
	ReasonEarlyStopped
	// ReasonInterrupted means the run context was cancelled. Interruption
	// is a normal termination preserving the current best.
	ReasonInterrupted
	// ReasonFatalError means an evaluation failed under ErrorPolicyRaise.
	ReasonFatalError
)

// String returns a short name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonBudgetExhausted:
		return "budget_exhausted"
	case ReasonTimeout:
		return "timeout"
	case ReasonEarlyStopped:
		return "early_stopped"
	case ReasonInterrupted:
		return "interrupted"
	case ReasonFatalError:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// terminator evaluates the advisory stop conditions. It is consulted once
// per evaluation attempt, after the budget check.
type terminator struct {
	searchTimeout time.Duration
	earlyStop     int
	start         time.Time
}

func (t *terminator) check(noImprovement int, now time.Time) Reason {
	if t.searchTimeout > 0 && now.Sub(t.start) > t.searchTimeout {
		return ReasonTimeout
	}
	if t.earlyStop > 0 && noImprovement > t.earlyStop {
		return ReasonEarlyStopped
	}
	return ReasonNone
}
