package errors

import (
	"fmt"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Protocol violation errors: the event is illegal in the current state
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	ErrCodeSelfCall      ErrorCode = "SELF_CALL"
	ErrCodeInvalidState  ErrorCode = "INVALID_STATE"
	ErrCodeNotConnected  ErrorCode = "NOT_CONNECTED"
	ErrCodeNoSession     ErrorCode = "NO_SESSION"

	// Contention errors
	ErrCodeCallerBusy ErrorCode = "CALLER_BUSY"

	// Session conflict errors
	ErrCodeDuplicateSession ErrorCode = "DUPLICATE_SESSION"

	// Validation errors
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrCodeStorage  ErrorCode = "STORAGE_ERROR"
)

// AppError represents a structured application error with a stable
// machine-readable code and a human-readable message
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface, returning a formatted error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the given code and message
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError, preserving the original error
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Protocol violation errors

func NotRegisteredError() *AppError {
	return New(ErrCodeNotRegistered, "Participant is not registered on this connection")
}

func SelfCallError() *AppError {
	return New(ErrCodeSelfCall, "Cannot call yourself")
}

func InvalidStateError(message string) *AppError {
	return New(ErrCodeInvalidState, message)
}

func NotConnectedError() *AppError {
	return New(ErrCodeNotConnected, "Not connected to this participant")
}

func NoSessionError() *AppError {
	return New(ErrCodeNoSession, "No matching call session")
}

// Contention errors

func CallerBusyError() *AppError {
	return New(ErrCodeCallerBusy, "You are already in a call")
}

// Session conflict errors

func DuplicateSessionError() *AppError {
	return New(ErrCodeDuplicateSession, "Signed in from another connection")
}

// Validation errors

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInputError(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// Internal errors

func InternalError(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func DatabaseError(err error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", err)
}

func StorageError(err error) *AppError {
	return Wrap(ErrCodeStorage, "Storage error", err)
}

// IsAppError checks if an error is an AppError type
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError extracts AppError from an error, wrapping non-AppErrors as InternalError
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return InternalError(err.Error())
}
