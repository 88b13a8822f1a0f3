package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrContentTooShort is returned when text-mode content is under MinContentChars.
	ErrContentTooShort = errors.New("text content is too short")
	// ErrMissingFile is returned when file mode has no bytes to send.
	ErrMissingFile = errors.New("file data is required for file mode")
	// ErrUnsupportedMode is returned for mode/kind combinations that do not exist.
	ErrUnsupportedMode = errors.New("unsupported generation mode")

	ErrNotConfigured       = errors.New("generation provider not configured")
	ErrModelUnavailable    = errors.New("model not available")
	ErrNoModelAvailable    = errors.New("no configured model is available")
	ErrProviderAuth        = errors.New("provider rejected credentials")
	ErrProviderRateLimited = errors.New("provider rate limit exceeded")
	ErrProviderOverloaded  = errors.New("provider overloaded")
	ErrProviderUnknown     = errors.New("provider request failed")
	ErrInvalidOutput       = errors.New("model output could not be parsed")
)

// Failure classifies a provider failure.
type Failure int

const (
	FailureUnknown Failure = iota
	FailureModelUnavailable
	FailureAuth
	FailureRateLimited
	FailureOverloaded
)

func (k Failure) sentinel() error {
	switch k {
	case FailureModelUnavailable:
		return ErrModelUnavailable
	case FailureAuth:
		return ErrProviderAuth
	case FailureRateLimited:
		return ErrProviderRateLimited
	case FailureOverloaded:
		return ErrProviderOverloaded
	default:
		return ErrProviderUnknown
	}
}

// StatusError carries an HTTP status from a provider adapter.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Message)
}

// ClassifiedError lets adapters report a kind they already know.
type ClassifiedError interface {
	error
	Failure() Failure
}

// ProviderError wraps a classified provider failure for one model.
type ProviderError struct {
	Failure  Failure
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s model %s: %v", e.Provider, e.Model, e.Err)
}

// Unwrap exposes both the matching sentinel and the underlying cause.
func (e *ProviderError) Unwrap() []error {
	return []error{e.Failure.sentinel(), e.Err}
}

// Message is the user-facing text for the failure.
func (e *ProviderError) Message() string {
	switch e.Failure {
	case FailureAuth:
		return "API key is invalid or restricted. Please check the generation provider credentials."
	case FailureRateLimited:
		return "API rate limit exceeded. Please wait a moment and try again."
	case FailureOverloaded:
		return "The generation service is temporarily overloaded. Please try again in a few moments."
	case FailureModelUnavailable:
		return fmt.Sprintf("Model %s is not available.", e.Model)
	default:
		return fmt.Sprintf("Generation failed: %v", e.Err)
	}
}

// NoModelError reports that every configured model was unavailable.
type NoModelError struct {
	Models []string
	Last   error
}

func (e *NoModelError) Error() string {
	return fmt.Sprintf("none of the available models (%s) are accessible: %v", strings.Join(e.Models, ", "), e.Last)
}

func (e *NoModelError) Unwrap() error { return ErrNoModelAvailable }

// Message is the user-facing text for the failure.
func (e *NoModelError) Message() string {
	return fmt.Sprintf("None of the available models (%s) are accessible with the configured API key. Please check that the API key has access to these models.", strings.Join(e.Models, ", "))
}

// Classify maps a provider error to a Failure. Typed errors win over
// message inspection.
func Classify(err error) Failure {
	if err == nil {
		return FailureUnknown
	}
	var classified ClassifiedError
	if errors.As(err, &classified) {
		return classified.Failure()
	}
	var status *StatusError
	if errors.As(err, &status) {
		if kind, ok := failureForStatus(status.StatusCode); ok {
			return kind
		}
	}
	return classifyMessage(err.Error())
}

func failureForStatus(code int) (Failure, bool) {
	switch code {
	case http.StatusNotFound:
		return FailureModelUnavailable, true
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureAuth, true
	case http.StatusTooManyRequests:
		return FailureRateLimited, true
	case http.StatusServiceUnavailable:
		return FailureOverloaded, true
	default:
		return FailureUnknown, false
	}
}

// FailureForStatus exposes the HTTP status mapping to provider adapters.
func FailureForStatus(code int) Failure {
	kind, _ := failureForStatus(code)
	return kind
}

func classifyMessage(msg string) Failure {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "404") || strings.Contains(lower, "not found") || strings.Contains(lower, "not available"):
		return FailureModelUnavailable
	case strings.Contains(lower, "403") || strings.Contains(lower, "401") ||
		strings.Contains(lower, "api key") || strings.Contains(lower, "permission denied") || strings.Contains(lower, "unauthenticated"):
		return FailureAuth
	case strings.Contains(lower, "429") || strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "resource exhausted"):
		return FailureRateLimited
	case strings.Contains(lower, "503") || strings.Contains(lower, "overloaded") || strings.Contains(lower, "unavailable"):
		return FailureOverloaded
	default:
		return FailureUnknown
	}
}
