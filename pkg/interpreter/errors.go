package interpreter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluator failures. The set is closed: every fault the
// evaluator can raise carries exactly one of these kinds.
type ErrorKind string

const (
	ErrUnboundIdentifier    ErrorKind = "UnboundIdentifier"
	ErrDuplicateDeclaration ErrorKind = "DuplicateDeclaration"
	ErrNotAssignable        ErrorKind = "NotAssignable"
	ErrTypeMismatch         ErrorKind = "TypeMismatch"
	ErrUnknownOperator      ErrorKind = "UnknownOperator"
	ErrDivisionByZero       ErrorKind = "DivisionByZero"
	ErrOutOfBounds          ErrorKind = "OutOfBounds"
	ErrArityMismatch        ErrorKind = "ArityMismatch"
	ErrRepeatedParameter    ErrorKind = "RepeatedParameter"
	ErrNotCallable          ErrorKind = "NotCallable"
)

// EvalError is a fatal evaluation failure. There is no recovery construct in
// the language; every EvalError aborts the whole program run.
type EvalError struct {
	Kind    ErrorKind
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func evalErrorf(kind ErrorKind, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the evaluator error kind, when err carries one.
func KindOf(err error) (ErrorKind, bool) {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return "", false
}
