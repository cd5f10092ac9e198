// Package errs defines the error taxonomy shared by the engine packages.
//
// Four kinds exist: not-found, access-denied, validation, and fatal
// configuration errors. The first three are recovered at the request
// boundary and turned into user-visible messages; fatal errors indicate a
// programming error and abort the request. Not-found deliberately covers
// both "record absent" and "record outside the actor's visibility" so
// callers cannot probe for records in other tenants.
package errs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind sentinels. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrValidation   = errors.New("validation failed")
	ErrFatal        = errors.New("configuration error")
)

type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.msg }
func (e *taggedError) Unwrap() error { return e.kind }

// NotFound returns a not-found error for the named entity. The message never
// distinguishes absence from invisibility.
func NotFound(entity string) error {
	return &taggedError{kind: ErrNotFound, msg: entity + " not found"}
}

// AccessDenied returns an access-denied error with the given reason.
func AccessDenied(format string, args ...any) error {
	return &taggedError{kind: ErrAccessDenied, msg: "access denied: " + fmt.Sprintf(format, args...)}
}

// Validation returns a validation error with the given message.
func Validation(format string, args ...any) error {
	return &taggedError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Fatal returns a configuration error for unreachable states.
func Fatal(format string, args ...any) error {
	return &taggedError{kind: ErrFatal, msg: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError rejects an expense that exceeds the account
// balance. It carries the available balance for display.
type InsufficientFundsError struct {
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return "insufficient balance in account, available: " + e.Available.StringFixed(2)
}

// Unwrap makes the error match ErrValidation.
func (e *InsufficientFundsError) Unwrap() error { return ErrValidation }
