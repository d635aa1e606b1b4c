package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Repository-level skips
	ErrUserNotEligible  ErrorCode = "USER_NOT_ELIGIBLE"
	ErrRepoUnavailable  ErrorCode = "REPO_UNAVAILABLE"
	ErrApprovalDeclined ErrorCode = "APPROVAL_DECLINED"

	// Link-level warnings
	ErrSourceMissing ErrorCode = "SOURCE_MISSING"

	// Repository-level failures
	ErrProbeFailure     ErrorCode = "PROBE_FAILURE"
	ErrDuplicateTarget  ErrorCode = "DUPLICATE_TARGET"
	ErrExecutionFailure ErrorCode = "EXECUTION_FAILURE"
	ErrActionInvalid    ErrorCode = "ACTION_INVALID"

	// State errors
	ErrStateCorrupt ErrorCode = "STATE_CORRUPT"
	ErrStateLocked  ErrorCode = "STATE_LOCKED"
	ErrStateWrite   ErrorCode = "STATE_WRITE"
	ErrStateRead    ErrorCode = "STATE_READ"

	// Setup errors
	ErrTransportSetup ErrorCode = "TRANSPORT_SETUP"
	ErrCommandFailed  ErrorCode = "COMMAND_FAILED"
)

// DotlinksError represents a structured error with code and details
type DotlinksError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DotlinksError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotlinksError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DotlinksError) Is(target error) bool {
	var targetErr *DotlinksError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DotlinksError with the given code and message
func New(code ErrorCode, message string) *DotlinksError {
	return &DotlinksError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotlinksError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotlinksError {
	return &DotlinksError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotlinksError
func Wrap(err error, code ErrorCode, message string) *DotlinksError {
	if err == nil {
		return nil
	}
	return &DotlinksError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotlinksError {
	if err == nil {
		return nil
	}
	return &DotlinksError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotlinksError) WithDetail(key string, value interface{}) *DotlinksError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dlErr *DotlinksError
	if errors.As(err, &dlErr) {
		return dlErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DotlinksError
func GetErrorCode(err error) ErrorCode {
	var dlErr *DotlinksError
	if errors.As(err, &dlErr) {
		return dlErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DotlinksError
func GetErrorDetails(err error) map[string]interface{} {
	var dlErr *DotlinksError
	if errors.As(err, &dlErr) {
		return dlErr.Details
	}
	return nil
}

// IsSkip reports whether err means a repository was skipped rather than failed.
func IsSkip(err error) bool {
	switch GetErrorCode(err) {
	case ErrUserNotEligible, ErrRepoUnavailable, ErrApprovalDeclined:
		return true
	}
	return false
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrConfigLoad, ErrConfigParse, ErrConfigValid, ErrTransportSetup:
		return true
	}
	return false
}
