package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that an account balance cannot cover a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAccountState indicates that the account cannot take part in the
// requested operation (inactive, deleted, or a savings policy violation).
var ErrInvalidAccountState = errors.New("invalid account state")

// ErrCurrencyMismatch indicates that currencies of the involved records differ.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrSplitExceedsTransaction indicates that splits would exceed the parent transaction amount.
var ErrSplitExceedsTransaction = errors.New("split exceeds transaction amount")

// ErrConcurrencyConflict indicates lock contention or a serialization failure.
// The whole operation is safe to retry.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrRateNotFound indicates that no applicable exchange rate exists.
var ErrRateNotFound = errors.New("exchange rate not found")

// ErrExternalServiceUnavailable indicates that a third-party provider failed.
var ErrExternalServiceUnavailable = errors.New("external service unavailable")

// ErrConfiguration indicates invalid persisted configuration, such as an unknown frequency.
var ErrConfiguration = errors.New("configuration error")

// AppError carries a status code alongside an infrastructure failure.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
