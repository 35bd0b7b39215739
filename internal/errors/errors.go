package errors

import (
	"errors"
	"fmt"
	"time"
)

// Base error types
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrTimeout       = errors.New("timeout")
	ErrConfiguration = errors.New("configuration error")
	ErrInternalError = errors.New("internal error")
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeInternal      ErrorType = "internal"
)

// InvestigationError is a structured error for investigation operations.
// Transient check failures are absorbed at the branch and never carried
// in this type; it exists for the failures that must surface, chiefly
// configuration problems at startup.
type InvestigationError struct {
	Type      ErrorType
	Op        string // Operation that failed (e.g., "init_scanner")
	Target    string // Identifier or path the operation ran against
	Err       error  // Underlying error
	Timestamp time.Time
}

func (e *InvestigationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *InvestigationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface
func (e *InvestigationError) Is(target error) bool {
	if target == nil {
		return false
	}

	switch target {
	case ErrInvalidInput:
		return e.Type == ErrorTypeValidation
	case ErrTimeout:
		return e.Type == ErrorTypeTimeout
	case ErrConfiguration:
		return e.Type == ErrorTypeConfiguration
	case ErrInternalError:
		return e.Type == ErrorTypeInternal
	}

	return errors.Is(e.Err, target)
}

// New creates a new InvestigationError
func New(errorType ErrorType, op, target string, err error) *InvestigationError {
	return &InvestigationError{
		Type:      errorType,
		Op:        op,
		Target:    target,
		Err:       err,
		Timestamp: time.Now(),
	}
}
