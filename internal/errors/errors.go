package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidArgument   ErrorCode = "invalid_argument"
	NotFound          ErrorCode = "not_found"
	InsufficientFunds ErrorCode = "insufficient_funds"
	InternalError     ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target carries the same code, so any not-found error
// matches ErrAccountNotFound regardless of its message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy carrying details. Predefined errors stay untouched.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// HTTPStatus maps the error code to the status the HTTP adapter responds with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidArgument, InsufficientFunds:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound        = NewAppError(NotFound, "account not found")
	ErrEmptyAccountName       = NewAppError(InvalidArgument, "account name cannot be empty")
	ErrInvalidAmount          = NewAppError(InvalidArgument, "amount must be positive")
	ErrInvalidTransactionType = NewAppError(InvalidArgument, "transaction type must be DEPOSIT or WITHDRAWAL")
	ErrSameAccountTransfer    = NewAppError(InvalidArgument, "source and destination accounts cannot be the same")
	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "insufficient funds")
)
