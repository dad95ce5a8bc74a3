package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a concurrent write won the race
	ErrConflict = errors.New("conflict occurred")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden is returned when the caller may not act on the resource
	ErrForbidden = errors.New("access denied")

	// ErrStateConflict is returned when an entity is in the wrong lifecycle state
	ErrStateConflict = errors.New("state transition disallowed")

	// ErrDependency is returned when an external collaborator fails
	ErrDependency = errors.New("dependency unavailable")

	// ErrAmountMismatch is returned when a verified payment amount differs from the order total
	ErrAmountMismatch = errors.New("payment amount mismatch")

	// ErrRefundWindowExpired is returned when a refund is requested too late
	ErrRefundWindowExpired = errors.New("refund window expired")
)

// Error carries a sentinel kind together with a caller-facing message and optional details.
// errors.Is matches both the kind and the wrapped cause.
type Error struct {
	Kind    error
	Message string
	Details map[string]any
	Cause   error
}

// NewError builds an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds an Error of the given kind around an underlying cause.
func WrapError(kind error, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithDetails attaches structured details and returns the same error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// AsError extracts a *Error from the chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
