package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Analysis errors (ANALYZE-001 to ANALYZE-099)
	ErrCodeTaskEmpty ErrorCode = "ANALYZE-001"

	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound  ErrorCode = "PLAN-001"
	ErrCodePlanInvalid   ErrorCode = "PLAN-002"
	ErrCodePlanCyclicDep ErrorCode = "PLAN-003"

	// Provider errors (PROVIDER-001 to PROVIDER-099)
	ErrCodeProviderNotConfigured ErrorCode = "PROVIDER-001"
	ErrCodeProviderAuth          ErrorCode = "PROVIDER-002"
	ErrCodeProviderAPI           ErrorCode = "PROVIDER-003"
	ErrCodeProviderRateLimit     ErrorCode = "PROVIDER-004"
	ErrCodeProviderTimeout       ErrorCode = "PROVIDER-005"

	// Enhancement errors (ENHANCE-001 to ENHANCE-099)
	ErrCodeEnhanceNotInitialized ErrorCode = "ENHANCE-001"
	ErrCodeEnhanceNoJSON         ErrorCode = "ENHANCE-002"
	ErrCodeEnhanceTruncated      ErrorCode = "ENHANCE-003"
	ErrCodeEnhanceSchemaInvalid  ErrorCode = "ENHANCE-004"
	ErrCodeEnhanceBatchFailed    ErrorCode = "ENHANCE-005"

	// State errors (STATE-001 to STATE-099)
	ErrCodeStateNotFound ErrorCode = "STATE-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound   ErrorCode = "IO-001"
	ErrCodeFileReadFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal  ErrorCode = "IO-003"
)

// PlanforgeError represents an enhanced error with code, suggestions, and a cause chain
type PlanforgeError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *PlanforgeError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PlanforgeError) Unwrap() error {
	return e.Cause
}

// New creates a new PlanforgeError
func New(code ErrorCode, message string) *PlanforgeError {
	return &PlanforgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PlanforgeError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PlanforgeError {
	return &PlanforgeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PlanforgeError) WithSuggestion(suggestion string) *PlanforgeError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PlanforgeError) WithSuggestions(suggestions ...string) *PlanforgeError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Transient marks an error as temporary; callers may retry.
type Transient struct {
	Err error
}

func (e *Transient) Error() string { return e.Err.Error() }
func (e *Transient) Unwrap() error { return e.Err }

// Fatal marks an error as permanent; callers must not retry.
type Fatal struct {
	Err error
}

func (e *Fatal) Error() string { return e.Err.Error() }
func (e *Fatal) Unwrap() error { return e.Err }

// NewTransient wraps an error as transient (retryable).
func NewTransient(err error) error {
	return &Transient{Err: err}
}

// NewFatal wraps an error as fatal (non-retryable).
func NewFatal(err error) error {
	return &Fatal{Err: err}
}

// IsTransient returns true if the error should be retried.
func IsTransient(err error) bool {
	var t *Transient
	return stderrors.As(err, &t)
}

// IsFatal returns true if the error must not be retried.
func IsFatal(err error) bool {
	var f *Fatal
	return stderrors.As(err, &f)
}

// Common error constructors for frequently used errors

// NewProviderNotConfiguredError signals that no model credential is available.
func NewProviderNotConfiguredError() *PlanforgeError {
	return New(ErrCodeProviderNotConfigured, "no model provider credential configured").
		WithSuggestion("Set the OPENAI_API_KEY or ANTHROPIC_API_KEY environment variable").
		WithSuggestion("Pass a credential in the generation options")
}

// NewProviderAuthError creates a provider authentication error
func NewProviderAuthError(provider string) *PlanforgeError {
	return New(ErrCodeProviderAuth, fmt.Sprintf("authentication failed for provider: %s", provider)).
		WithSuggestion(fmt.Sprintf("Set the %s_API_KEY environment variable", strings.ToUpper(provider))).
		WithSuggestion("Check if your API key is valid and not expired").
		WithSuggestion("Run 'planforge doctor' to verify connectivity")
}

// NewProviderRateLimitError creates a rate limit error
func NewProviderRateLimitError(provider string, retryAfter string) *PlanforgeError {
	msg := fmt.Sprintf("rate limit exceeded for provider: %s", provider)
	if retryAfter != "" {
		msg += fmt.Sprintf(" (retry after: %s)", retryAfter)
	}

	return New(ErrCodeProviderRateLimit, msg).
		WithSuggestion("Wait before retrying the request").
		WithSuggestion("Lower the enhancement concurrency limit")
}

// NewStateNotFoundError creates an unknown task hash error
func NewStateNotFoundError(taskHash string) *PlanforgeError {
	return New(ErrCodeStateNotFound, fmt.Sprintf("no enhancement state for task hash: %s", taskHash)).
		WithSuggestion("Generate a plan first to register enhancement state").
		WithSuggestion("State older than the configured max age is swept; regenerate the plan")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *PlanforgeError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *PlanforgeError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
