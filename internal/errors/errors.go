package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeInput         ErrorType = "INPUT"
	TypeInternal      ErrorType = "INTERNAL"
)

// FailureReason classifies why a completion request failed.
type FailureReason string

const (
	ReasonNone      FailureReason = ""
	ReasonAuth      FailureReason = "auth"
	ReasonNetwork   FailureReason = "network"
	ReasonRateLimit FailureReason = "rate_limit"
	ReasonUnknown   FailureReason = "unknown"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Reason     FailureReason
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if status, ok := e.Context["status"].(int); ok && status != 0 {
			msg += fmt.Sprintf(" - HTTP %d", status)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by type, reason and message so wrapped copies
// created with WithError/WithContext still satisfy errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Reason == t.Reason && e.Message == t.Message
}

func (e *AppError) clone() *AppError {
	return &AppError{
		Type:       e.Type,
		Reason:     e.Reason,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	c := e.clone()
	c.Err = err
	return c
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	c := e.clone()
	c.Context = ctx
	return c
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	c := e.clone()
	c.Suggestion = suggestion
	return c
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

func newAIError(reason FailureReason, msg string) *AppError {
	e := NewAppError(TypeAI, msg, nil)
	e.Reason = reason
	return e
}

// ReasonOf returns the failure reason carried by err. Errors that are not
// AppErrors, or AppErrors without a reason, are reported as unknown.
func ReasonOf(err error) FailureReason {
	if err == nil {
		return ReasonNone
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Reason != ReasonNone {
		return appErr.Reason
	}
	return ReasonUnknown
}

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "ANTHROPIC_API_KEY not found in environment variables", nil).
				WithSuggestion("Create a .env file with your API key:\n   ANTHROPIC_API_KEY=your_api_key_here\n   ANTHROPIC_MODEL=claude-3-5-haiku-20241022")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration is invalid", nil)

	ErrPricingInvalid = NewAppError(TypeConfiguration, "Pricing overrides are invalid", nil).
				WithSuggestion("Rates are USD per million tokens and must not be negative")
)

// Input errors
var (
	ErrCatalogNotFound = NewAppError(TypeInput, "Metadata file not found", nil).
				WithSuggestion("Point --data (or PROMPTCACHE_DATA) at a JSON file")

	ErrCatalogInvalid = NewAppError(TypeInput, "Metadata file is not valid JSON", nil).
				WithSuggestion("Validate the file with: jq . <file>")

	ErrHistoryUnavailable = NewAppError(TypeInput, "Activity history could not be read", nil).
				WithSuggestion("Record some activity first with: promptcache --record demo")
)

// AI errors
var (
	ErrAIAuth = newAIError(ReasonAuth, "Anthropic rejected the API key").
			WithSuggestion("Check ANTHROPIC_API_KEY at: https://console.anthropic.com/settings/keys")

	ErrAINetwork = newAIError(ReasonNetwork, "Could not reach the Anthropic API").
			WithSuggestion("Check your network connection and ANTHROPIC_BASE_URL")

	ErrAIRateLimited = newAIError(ReasonRateLimit, "Anthropic API rate limit exceeded").
				WithSuggestion("Wait a few seconds and try again")

	ErrAIUnknown = newAIError(ReasonUnknown, "Anthropic API request failed")

	ErrEmptyResponse = newAIError(ReasonUnknown, "Anthropic returned no text content")
)
