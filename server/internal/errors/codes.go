package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for schedule operations.
type ErrorCode string

const (
	// ErrCodeMalformedTime indicates a meeting or clock time string that failed strict parsing.
	ErrCodeMalformedTime ErrorCode = "MALFORMED_TIME"
	// ErrCodeOracleUnavailable indicates the travel-time lookup failed or had no answer.
	ErrCodeOracleUnavailable ErrorCode = "ORACLE_UNAVAILABLE"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeStoreUnavailable indicates the persistent store could not be reached.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// ScheduleError represents a structured error for schedule operations.
type ScheduleError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *ScheduleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ScheduleError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *ScheduleError) WithContext(key string, value any) *ScheduleError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// MalformedTime creates a malformed time error for the offending input.
func MalformedTime(input string) *ScheduleError {
	return &ScheduleError{
		Code:    ErrCodeMalformedTime,
		Message: fmt.Sprintf("malformed time %q", input),
	}
}

// OracleUnavailable creates an oracle unavailable error.
func OracleUnavailable(msg string, cause error) *ScheduleError {
	return &ScheduleError{Code: ErrCodeOracleUnavailable, Message: msg, Cause: cause}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ScheduleError {
	return &ScheduleError{Code: ErrCodeInvalidArgument, Message: msg}
}

// StoreUnavailable creates a store unavailable error.
func StoreUnavailable(msg string, cause error) *ScheduleError {
	return &ScheduleError{Code: ErrCodeStoreUnavailable, Message: msg, Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *ScheduleError {
	return &ScheduleError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// IsCode checks if an error, or any error it wraps, is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var se *ScheduleError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ScheduleError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var se *ScheduleError
	if errors.As(err, &se) {
		return se.Code
	}
	return defaultCode
}
