package search

import "fmt"

// GenerationError reports that the generator failed while producing a
// candidate. The draw is skipped and the evaluation budget is untouched; a
// generation error is never fatal.
type GenerationError struct {
	Err error
}

// Error returns the string representation of the error.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating candidate: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// EvaluationError reports that the fitness function failed or that the
// evaluator hit a resource limit. The attempt consumes one evaluation unit
// and its fitness is forced to 0. Under ErrorPolicyRaise the run aborts.
type EvaluationError struct {
	Err error
}

// Error returns the string representation of the error.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating candidate: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}
