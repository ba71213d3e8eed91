package apperrors

import "errors"

// Common errors
var (
	// Persistence errors
	ErrDuplicateTicketID = errors.New("ticket ID already exists")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// CustomError wraps a sentinel error with a human-readable message.
type CustomError struct {
	Err     error
	Message string
}

// Error returns the error message
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error for errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}
