package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a prodsynth error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrIOFailure      ErrorCode = "IO_FAILURE"      // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// SynthError represents a structured error with code, status, and details.
type SynthError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *SynthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *SynthError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SynthError {
	return &SynthError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a run cannot be found.
func NewNotFound(identifier string) *SynthError {
	return &SynthError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("run not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing dataset file.
func NewFileNotFound(path string) *SynthError {
	return &SynthError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled by its caller.
func NewCancelled(operation string) *SynthError {
	return &SynthError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewIOFailure creates a 500 error for filesystem failures while writing or
// reading a dataset. The cause stays reachable through errors.Unwrap.
func NewIOFailure(op, path string, err error) *SynthError {
	msg := fmt.Sprintf("%s %s", op, path)
	if err != nil {
		msg = fmt.Sprintf("%s %s: %v", op, path, err)
	}
	return &SynthError{
		Code:    ErrIOFailure,
		Status:  500,
		Message: msg,
		Details: map[string]any{"op": op, "path": path},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SynthError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SynthError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is a SynthError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SynthError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
