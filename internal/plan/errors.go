package plan

import (
	"errors"
	"fmt"
)

// Error variables for plan loading and execution.
var (
	ErrInvalidPlan   = errors.New("invalid plan")
	ErrUnknownOp     = errors.New("unknown op")
	ErrUnknownFormat = errors.New("unknown plan format")
	ErrTemplate      = errors.New("template")
)

// StepError reports which step of a plan failed.
type StepError struct {
	Index int // 1-based
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
