package tglfista

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed arguments. Validation happens
	// before the first iteration.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericalInstability is returned when the objective or the step-size
	// estimate stops being finite during a solve.
	ErrNumericalInstability = errors.New("numerical instability")
)

// InputError represents an input validation error
type InputError struct {
	Type     string // what was being validated
	Expected int
	Got      int
	Reason   string // free-form reason; overrides the size message when set
}

func (e *InputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("%s must have size %d, got %d", e.Type, e.Expected, e.Got)
}

// Unwrap makes every InputError match ErrInvalidInput with errors.Is.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidf(typ, format string, a ...any) error {
	return &InputError{Type: typ, Reason: fmt.Sprintf(format, a...)}
}
