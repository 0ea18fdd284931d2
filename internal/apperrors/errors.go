package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a referenced account or resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrWalletNotProvisioned indicates the account exists but has no wallet row.
var ErrWalletNotProvisioned = errors.New("wallet not provisioned")

// ErrInsufficientBalance indicates the sender's active token sum is less than
// the requested amount. This is a rejected business rule, not a system fault.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrConflict indicates a transaction isolation violation detected by the
// store. Operations hitting it are retried before it is surfaced.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries a status-like code and message around a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(_, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
