// Package errors provides coded application errors for the engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes an error for callers that need to branch on failure kind.
type Code string

const (
	// CodeUnknown indicates an unclassified error.
	CodeUnknown Code = "unknown"

	// CodeInvalidArgument indicates the caller supplied an invalid argument.
	CodeInvalidArgument Code = "invalid_argument"

	// CodeNotFound indicates a requested resource was not found.
	CodeNotFound Code = "not_found"

	// CodeAlreadyExists indicates an attempt to create a resource that exists.
	CodeAlreadyExists Code = "already_exists"

	// CodeUnavailable indicates a transient failure; the operation may be retried.
	CodeUnavailable Code = "unavailable"

	// CodeContract indicates an external collaborator violated its contract
	// (nil or unparseable output). Not retryable.
	CodeContract Code = "contract"

	// CodeInternal indicates an internal invariant was violated.
	CodeInternal Code = "internal"

	// CodeValidation indicates content failed validation.
	CodeValidation Code = "validation"
)

// Error is an application error carrying a code and optional metadata.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta attaches a metadata key to the error.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with additional context, preserving its code when it is
// already an *Error.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and forces the given code.
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidArgumentf creates a formatted invalid argument error.
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a formatted not found error.
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// AlreadyExists creates an already exists error.
func AlreadyExists(message string) *Error {
	return New(CodeAlreadyExists, message)
}

// AlreadyExistsf creates a formatted already exists error.
func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

// Unavailable creates a transient, retryable error.
func Unavailable(message string) *Error {
	return New(CodeUnavailable, message)
}

// Unavailablef creates a formatted transient error.
func Unavailablef(format string, args ...any) *Error {
	return Newf(CodeUnavailable, format, args...)
}

// Contract creates a collaborator contract violation error.
func Contract(message string) *Error {
	return New(CodeContract, message)
}

// Internal creates an internal error.
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Internalf creates a formatted internal error.
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsUnavailable reports whether err is transient and may be retried.
func IsUnavailable(err error) bool {
	return Is(err, CodeUnavailable)
}

// IsInvalidArgument reports whether err is an invalid argument error.
func IsInvalidArgument(err error) bool {
	return Is(err, CodeInvalidArgument)
}

// GetCode returns the code carried by err, or CodeUnknown.
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// ValidationIssue is a single content validation failure, addressed by the
// JSON-ish path of the offending value.
type ValidationIssue struct {
	Path    string
	Message string
	Code    string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Path, v.Message, v.Code)
}

// ValidationErrors aggregates every issue found in a validation pass so the
// caller sees all problems at once instead of the first one.
type ValidationErrors struct {
	Issues []ValidationIssue
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%d validation issue(s): %s", len(v.Issues), strings.Join(parts, "; "))
}

// Add records an issue.
func (v *ValidationErrors) Add(path, message, code string) {
	v.Issues = append(v.Issues, ValidationIssue{Path: path, Message: message, Code: code})
}

// HasIssues reports whether any issue was recorded.
func (v *ValidationErrors) HasIssues() bool {
	return len(v.Issues) > 0
}
