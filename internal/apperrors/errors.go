// Package apperrors defines the error kinds surfaced by the ledger engine.
//
// Kinds are sentinel values matched with errors.Is. Store and driver failures
// that are not one of the kinds are wrapped in a *StoreError.
package apperrors

import "errors"

// ErrNotFound indicates an unknown group, expense or settlement.
var ErrNotFound = errors.New("resource not found")

// ErrPermissionDenied indicates the caller may not act on the resource,
// e.g. approving a settlement addressed to someone else.
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidState indicates a transition on a settlement that is already terminal.
var ErrInvalidState = errors.New("invalid state transition")

// ErrValidation indicates malformed input: non-positive amount, bad share, unknown member.
var ErrValidation = errors.New("validation error")

// StoreError is an opaque pass-through of a ledger store failure.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return "store failure: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err as a StoreError unless it is nil or already carries a kind.
func Store(err error) error {
	if err == nil || IsKind(err) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Err: err}
}

// IsKind reports whether err matches one of the domain kinds.
func IsKind(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrValidation)
}

// IsStoreFailure reports whether err is a wrapped store failure.
func IsStoreFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
