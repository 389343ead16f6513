// Package fault defines the error kinds shared by the descriptor loader,
// the validator and the resolver.
//
// Every failure produced while resolving a deployment is a *Error carrying
// one of four kinds. Callers test the kind with errors.Is against the
// sentinel errors, or with IsKind.
//
//	if errors.Is(err, fault.ErrUndefinedReference) {
//	    // a secret, config, variable, host or variant is missing
//	}
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Kinds
// =============================================================================

// Kind classifies a resolution failure.
type Kind string

const (
	// KindMalformedInput is a descriptor string that violates its grammar.
	KindMalformedInput Kind = "malformed_input"
	// KindUndefinedReference is a reference to a name not in scope.
	KindUndefinedReference Kind = "undefined_reference"
	// KindConstraintViolation is a semantic rule that does not hold.
	KindConstraintViolation Kind = "constraint_violation"
	// KindIOFailure is a file, directory or process environment read failure.
	KindIOFailure Kind = "io_failure"
)

var (
	ErrMalformedInput      = errors.New("malformed input")
	ErrUndefinedReference  = errors.New("undefined reference")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrIOFailure           = errors.New("io failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindMalformedInput:
		return ErrMalformedInput
	case KindUndefinedReference:
		return ErrUndefinedReference
	case KindConstraintViolation:
		return ErrConstraintViolation
	case KindIOFailure:
		return ErrIOFailure
	}
	return nil
}

// =============================================================================
// Error
// =============================================================================

// Error is a classified failure with the deployment and service it occurred in.
type Error struct {
	Kind       Kind
	Deployment string
	Service    string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 4)
	if e.Deployment != "" {
		parts = append(parts, "deployment "+e.Deployment)
	}
	if e.Service != "" {
		parts = append(parts, "service "+e.Service)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// WithDeployment returns a copy of e scoped to a deployment.
// An existing deployment name is kept.
func (e *Error) WithDeployment(name string) *Error {
	c := *e
	if c.Deployment == "" {
		c.Deployment = name
	}
	return &c
}

// WithService returns a copy of e scoped to a service.
// An existing service name is kept.
func (e *Error) WithService(name string) *Error {
	c := *e
	if c.Service == "" {
		c.Service = name
	}
	return &c
}

// =============================================================================
// Constructors
// =============================================================================

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Malformed creates a KindMalformedInput error.
func Malformed(format string, args ...any) *Error {
	return New(KindMalformedInput, format, args...)
}

// Undefined creates a KindUndefinedReference error.
func Undefined(format string, args ...any) *Error {
	return New(KindUndefinedReference, format, args...)
}

// Constraint creates a KindConstraintViolation error.
func Constraint(format string, args ...any) *Error {
	return New(KindConstraintViolation, format, args...)
}

// IO creates a KindIOFailure error wrapping cause.
func IO(cause error, format string, args ...any) *Error {
	e := New(KindIOFailure, format, args...)
	e.Err = cause
	return e
}

// =============================================================================
// Inspection
// =============================================================================

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Scope returns err scoped to deployment and service when it is an *Error,
// and err unchanged otherwise. Empty names are ignored.
func Scope(err error, deployment, service string) error {
	var fe *Error
	if !errors.As(err, &fe) {
		return err
	}
	if deployment != "" {
		fe = fe.WithDeployment(deployment)
	}
	if service != "" {
		fe = fe.WithService(service)
	}
	return fe
}
