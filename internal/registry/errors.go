package registry

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a registry failure
type ErrorKind int

const (
	// KindNotFound indicates a missing handler, load source or save destination
	KindNotFound ErrorKind = iota
	// KindInvalidFormat indicates a value or name that does not parse
	KindInvalidFormat
	// KindOverflow indicates a value or buffer larger than its destination
	KindOverflow
	// KindCapacityExhausted indicates a store with no free slot left
	KindCapacityExhausted
	// KindHandler indicates a failure reported by a handler callback
	KindHandler
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidFormat:
		return "invalid format"
	case KindOverflow:
		return "overflow"
	case KindCapacityExhausted:
		return "capacity exhausted"
	case KindHandler:
		return "handler error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is the error type returned by every registry operation.
//
// Two errors match under errors.Is when their kinds are equal and the target
// carries no Op and either no Message or the same Message. This lets callers
// test against the package sentinels:
//
//	if errors.Is(err, registry.ErrOverflow) { ... }
type Error struct {
	Kind    ErrorKind // Category of the failure
	Op      string    // Operation that failed (e.g. "set", "save")
	Name    string    // Parameter or handler name involved, if any
	Message string    // Human-readable detail
	Err     error     // Underlying error, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg = e.Message
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Name != "" {
		msg = fmt.Sprintf("%s (%q)", msg, e.Name)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinel errors for errors.Is comparisons.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidFormat     = &Error{Kind: KindInvalidFormat}
	ErrOverflow          = &Error{Kind: KindOverflow}
	ErrCapacityExhausted = &Error{Kind: KindCapacityExhausted}
	ErrHandler           = &Error{Kind: KindHandler}

	// ErrNoSource is returned by Load when no load source is registered.
	ErrNoSource = &Error{Kind: KindNotFound, Message: "no load source registered"}
	// ErrNoDestination is returned when a save needs a destination and none is registered.
	ErrNoDestination = &Error{Kind: KindNotFound, Message: "no save destination registered"}
)

// NewNotFoundError creates a not-found error for the named handler or store
func NewNotFoundError(op, name string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Name: name, Message: "no handler registered"}
}

// NewInvalidFormatError creates an invalid-format error
func NewInvalidFormatError(op, message string, err error) *Error {
	return &Error{Kind: KindInvalidFormat, Op: op, Message: message, Err: err}
}

// NewOverflowError creates an overflow error
func NewOverflowError(op, message string) *Error {
	return &Error{Kind: KindOverflow, Op: op, Message: message}
}

// NewCapacityError creates a capacity-exhausted error for a store write
func NewCapacityError(op, name string) *Error {
	return &Error{Kind: KindCapacityExhausted, Op: op, Name: name, Message: "no free slot"}
}

// NewHandlerError wraps a failure reported by a handler callback. The
// handler's own error stays reachable through errors.Is/As.
func NewHandlerError(op, name string, err error) *Error {
	return &Error{Kind: KindHandler, Op: op, Name: name, Message: "handler failed", Err: err}
}

// The predicates below walk the whole chain, so a kind wrapped inside a
// handler error or a multierror is still found.

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidFormat checks if an error is an invalid-format error
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// IsOverflow checks if an error is an overflow error
func IsOverflow(err error) bool {
	return errors.Is(err, ErrOverflow)
}

// IsCapacityExhausted checks if an error is a capacity error
func IsCapacityExhausted(err error) bool {
	return errors.Is(err, ErrCapacityExhausted)
}

// IsHandlerError checks if an error was reported by a handler callback
func IsHandlerError(err error) bool {
	return errors.Is(err, ErrHandler)
}
