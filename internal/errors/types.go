package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

// ErrorCode defines error code type
type ErrorCode string

// Error codes
const (
	// Setup errors: the environment is not ready to do any work
	ErrCredentialMissing ErrorCode = "CREDENTIAL_MISSING"
	ErrDotfileLoad       ErrorCode = "DOTFILE_LOAD"
	ErrToolMissing       ErrorCode = "TOOL_MISSING"

	// Usage errors: the command line is wrong
	ErrInvalidFlag  ErrorCode = "INVALID_FLAG"
	ErrMissingValue ErrorCode = "MISSING_VALUE"
	ErrEmptyPrompt  ErrorCode = "EMPTY_PROMPT"
	ErrUnknownModel ErrorCode = "UNKNOWN_MODEL"
	ErrNoSelection  ErrorCode = "NO_SELECTION"
	ErrUnknownMode  ErrorCode = "UNKNOWN_MODE"

	// Generation errors: the request could not produce an answer
	ErrPayload       ErrorCode = "PAYLOAD"
	ErrRequest       ErrorCode = "REQUEST"
	ErrStatus        ErrorCode = "STATUS"
	ErrStream        ErrorCode = "STREAM"
	ErrEmptyResponse ErrorCode = "EMPTY_RESPONSE"
	ErrUserCancel    ErrorCode = "USER_CANCEL"
)

// Category groups error codes by how the CLI reports them.
type Category string

const (
	CategorySetup      Category = "setup"
	CategoryUsage      Category = "usage"
	CategoryGeneration Category = "generation"
)

// RelayError represents a structured error for the relay
type RelayError struct {
	Code     ErrorCode              `json:"code"`
	Category Category               `json:"category"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Cause    error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
	Stack    string                 `json:"stack,omitempty"`
}

// Error implements error interface
func (e *RelayError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports Go 1.13+ error wrapping
func (e *RelayError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information
func (e *RelayError) WithContext(key string, value interface{}) *RelayError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds root cause
func (e *RelayError) WithCause(cause error) *RelayError {
	e.Cause = cause
	return e
}

// WithDetails attaches a short human readable detail
func (e *RelayError) WithDetails(details string) *RelayError {
	e.Details = details
	return e
}

func newError(cat Category, code ErrorCode, message string) *RelayError {
	return &RelayError{
		Code:     code,
		Category: cat,
		Message:  message,
		Context:  make(map[string]interface{}),
		Stack:    captureStack(),
	}
}

// NewSetupError creates an error for a missing credential or tool.
func NewSetupError(code ErrorCode, message string) *RelayError {
	return newError(CategorySetup, code, message)
}

// NewUsageError creates an error for a malformed command line.
func NewUsageError(code ErrorCode, message string) *RelayError {
	return newError(CategoryUsage, code, message)
}

// NewGenerationError creates an error for a failed generation request.
func NewGenerationError(code ErrorCode, message string) *RelayError {
	return newError(CategoryGeneration, code, message)
}

// WrapError wraps existing error as a generation error
func WrapError(err error, code ErrorCode, message string) *RelayError {
	if err == nil {
		return nil
	}
	e := newError(CategoryGeneration, code, message)
	e.Cause = err
	return e
}

// captureStack captures current stack information
func captureStack() string {
	// Skip captureStack, newError and the exported constructor
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// GetRelayError finds the first RelayError in err's chain
func GetRelayError(err error) (*RelayError, bool) {
	var re *RelayError
	if stderrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsRelayError checks if err wraps a RelayError
func IsRelayError(err error) bool {
	_, ok := GetRelayError(err)
	return ok
}

// HasCode checks if error has specific code
func HasCode(err error, code ErrorCode) bool {
	if re, ok := GetRelayError(err); ok {
		return re.Code == code
	}
	return false
}

// CategoryOf reports the category of err. Plain errors count as generation errors.
func CategoryOf(err error) Category {
	if re, ok := GetRelayError(err); ok {
		return re.Category
	}
	return CategoryGeneration
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
