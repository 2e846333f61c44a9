package template

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an engine error so that callers can decide between
// skip, fail, and retry behavior without string matching.
type ErrorKind string

const (
	// KindSyntax indicates the lexer or parser could not produce an AST.
	KindSyntax ErrorKind = "syntax"

	// KindName indicates an unknown filter, function, or (in strict mode)
	// variable name.
	KindName ErrorKind = "name"

	// KindType indicates an operator or builtin applied to an incompatible
	// value kind.
	KindType ErrorKind = "type"

	// KindArity indicates a filter or function called with the wrong number
	// of arguments.
	KindArity ErrorKind = "arity"

	// KindMandatory is raised by the mandatory filter for absent values.
	KindMandatory ErrorKind = "mandatory"

	// KindResourceLimit indicates the recursion depth or evaluated-node
	// ceiling was exceeded.
	KindResourceLimit ErrorKind = "resource_limit"

	// KindEvaluation wraps a builtin's internal failure, such as a malformed
	// regex or invalid encoding input.
	KindEvaluation ErrorKind = "evaluation"
)

// Error is the classified error returned by every engine entry point.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind

	// Message is the human-readable error message.
	Message string

	// Source is the offending expression or template fragment, when known.
	Source string

	// Pos is the byte offset of the error within the original source, or -1.
	Pos int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Source != "" {
		msg += fmt.Sprintf(" (in %q)", e.Source)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or an empty kind when err is not
// an engine error.
func KindOf(err error) ErrorKind {
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.Kind
	}
	return ""
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func newError(kind ErrorKind, pos int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func syntaxErrorf(pos int, format string, args ...interface{}) *Error {
	return newError(KindSyntax, pos, format, args...)
}

func nameErrorf(pos int, format string, args ...interface{}) *Error {
	return newError(KindName, pos, format, args...)
}

func typeErrorf(pos int, format string, args ...interface{}) *Error {
	return newError(KindType, pos, format, args...)
}

func arityErrorf(pos int, format string, args ...interface{}) *Error {
	return newError(KindArity, pos, format, args...)
}

func mandatoryErrorf(format string, args ...interface{}) *Error {
	return newError(KindMandatory, -1, format, args...)
}

func limitErrorf(pos int, format string, args ...interface{}) *Error {
	return newError(KindResourceLimit, pos, format, args...)
}

func evalErrorf(pos int, format string, args ...interface{}) *Error {
	return newError(KindEvaluation, pos, format, args...)
}

func evalError(err error, format string, args ...interface{}) *Error {
	e := newError(KindEvaluation, -1, format, args...)
	e.Err = err
	return e
}

// withSource annotates err with the expression source it came from, when the
// error is an engine error that does not already carry one.
func withSource(err error, source string) error {
	var engErr *Error
	if errors.As(err, &engErr) && engErr.Source == "" {
		engErr.Source = source
	}
	return err
}
