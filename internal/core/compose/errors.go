// Package compose builds Docker Compose projects from resolved deployments.
// All functions are pure: no I/O and no side effects.
package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrUnsupportedEnvironment is returned for environments compose cannot
	// express.
	ErrUnsupportedEnvironment = errors.New("environment type cannot be exported to compose")

	ErrInvalidCPU    = errors.New("invalid CPU value")
	ErrInvalidMemory = errors.New("invalid memory value")

	ErrInvalidProject = errors.New("invalid compose project")
)

// FieldError wraps errors with the compose field they were produced for.
type FieldError struct {
	Field   string // e.g., "services.web-api.deploy.resources.limits.memory"
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a new FieldError.
func NewFieldError(field, message string, err error) *FieldError {
	return &FieldError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
