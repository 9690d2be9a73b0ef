package errors

import "fmt"

// ErrorCode represents a tick error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED" // 503
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// TickError represents a structured error with code, status, and details.
type TickError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TickError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TickError {
	return &TickError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a todo cannot be found.
func NewNotFound(id int64) *TickError {
	return &TickError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("todo not found: %d", id),
		Details: map[string]any{"id": id},
	}
}

// NewResourceExhausted creates a 503 error for when a store connection
// could not be acquired before the request deadline.
func NewResourceExhausted() *TickError {
	return &TickError{
		Code:    ErrResourceExhausted,
		Status:  503,
		Message: "timed out waiting for a store connection",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TickError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TickError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TickError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TickError); ok {
		return tErr.Code == code
	}
	return false
}
