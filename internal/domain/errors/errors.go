// Package errors defines the application error taxonomy. Every failure a
// component can surface is a predefined AppError (or a typed error built on
// one), so callers can branch on business codes and the delivery layer can
// map them to HTTP statuses without string matching.
package errors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Input validation failures, recoverable by caller correction.
	ErrValidation = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_ERROR",
		"Invalid input",
		"",
	)

	// Task number uniqueness violation, surfaced to the caller for retry
	// with a new number.
	ErrDuplicateTaskNumber = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_TASK_NUMBER",
		"Task number is already assigned to another case",
		"",
	)

	// Verification failures, user-recoverable via retry or resend. The
	// distinct codes let the UI prompt "resend" (expired) vs "retry"
	// (mismatched).
	ErrNoActiveCode = NewBaseError(
		http.StatusUnauthorized,
		"NO_ACTIVE_CODE",
		"No active verification code, request a new one",
		"",
	)

	ErrCodeExpired = NewBaseError(
		http.StatusUnauthorized,
		"CODE_EXPIRED",
		"Verification code has expired, request a new one",
		"",
	)

	ErrCodeMismatch = NewBaseError(
		http.StatusUnauthorized,
		"CODE_MISMATCH",
		"Verification code does not match",
		"",
	)

	// Race-safe idempotency signal: a reminder was already dispatched for
	// the case. The scheduler treats this as a benign no-op.
	ErrAlreadyReminded = NewBaseError(
		http.StatusConflict,
		"ALREADY_REMINDED",
		"Reminder already sent for this case",
		"",
	)

	// Upstream failures. The case is held in its pre-transition state for
	// retry, never rolled back further.
	ErrTranslationUnavailable = NewBaseError(
		http.StatusBadGateway,
		"TRANSLATION_UNAVAILABLE",
		"Translation provider is unavailable",
		"",
	)

	ErrManufacturerUnavailable = NewBaseError(
		http.StatusBadGateway,
		"MANUFACTURER_UNAVAILABLE",
		"Manufacturer submission is unavailable",
		"",
	)

	// Authentication and account errors.
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"This email is already registered",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect email or password",
		"",
	)

	ErrNotAuthenticated = NewBaseError(
		http.StatusUnauthorized,
		"NOT_AUTHENTICATED",
		"Session is missing or expired",
		"",
	)

	ErrPermissionDenied = NewBaseError(
		http.StatusForbidden,
		"PERMISSION_DENIED",
		"You do not have access to this resource",
		"",
	)

	ErrCaseNotFound = NewBaseError(
		http.StatusNotFound,
		"CASE_NOT_FOUND",
		"Case not found",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// InvalidTransitionError reports a case state machine precondition violation:
// a transition was attempted from a state that is not its valid predecessor.
// It is always surfaced, never silently swallowed.
type InvalidTransitionError struct {
	From      string // Current case status.
	Attempted string // Target status of the rejected transition.
}

// NewInvalidTransition creates an InvalidTransitionError for the given states.
func NewInvalidTransition(from, attempted string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, Attempted: attempted}
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.Attempted)
}

// HTTPCode returns the HTTP status code
func (e *InvalidTransitionError) HTTPCode() int {
	return http.StatusConflict
}

// ErrorCode returns the business error code
func (e *InvalidTransitionError) ErrorCode() string {
	return "INVALID_TRANSITION"
}

// Message returns the user-friendly error message
func (e *InvalidTransitionError) Message() string {
	return "Case is not in a state that allows this operation"
}

// Details returns detailed error information
func (e *InvalidTransitionError) Details() string {
	return e.Error()
}

// DatabaseExecuteError wraps an unexpected storage failure
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_ERROR"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "A storage error occurred"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// Unwrap exposes the underlying storage error for errors.Is/As.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}
