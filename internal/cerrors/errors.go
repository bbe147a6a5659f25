// Package cerrors defines the closed error-kind taxonomy the translation
// core raises. Kinds, not formatted messages, are the contract: callers
// decide how to render them (spec §7 - "formatting is the caller's concern").
package cerrors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the closed set of error kinds the core can raise.
type Kind string

const (
	InvalidParameter        Kind = "InvalidParameter"
	InvalidState             Kind = "InvalidState"
	NotConstant               Kind = "NotConstant"
	NotSupported              Kind = "NotSupported"
	AnalysisError             Kind = "AnalysisError"
	MemoryAllocationFailure  Kind = "MemoryAllocationFailure"
	ObjectAllocationFailure  Kind = "ObjectAllocationFailure"
	OutOfSpace                Kind = "OutOfSpace"
	NotFound                  Kind = "NotFound"
	IteratorEnd               Kind = "IteratorEnd"
)

// SourceLocation pins an error to a point in the original C source.
// The core does no tracking beyond what it is handed.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) Valid() bool { return l.File != "" || l.Line != 0 }

// Error is the core's single error type, carrying a Kind and an optional
// source location. Its cause (stack-annotated with github.com/pkg/errors)
// is reachable through Unwrap, so errors.Is/errors.As see whatever
// triggered the error.
type Error struct {
	Kind     Kind
	Message  string
	Location SourceLocation
	cause    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Location.Valid() {
		sb.WriteString(fmt.Sprintf(" (at %s:%d:%d)", e.Location.File, e.Location.Line, e.Location.Column))
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a bare Kind error with no location.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// At builds a Kind error pinned to a source location (NotConstant,
// AnalysisError).
func At(kind Kind, loc SourceLocation, message string) *Error {
	return &Error{Kind: kind, Message: message, Location: loc}
}

// Wrap attaches a Kind to a lower-level cause (e.g. a pool exhaustion from
// internal/bigint), capturing a stack via pkg/errors the way the teacher's
// transport layers wrap driver errors.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// NotConstantAt is a convenience constructor for the evaluator's most common
// failure: a subtree that does not fold to a constant expression.
func NotConstantAt(loc SourceLocation, message string) *Error {
	return At(NotConstant, loc, message)
}
