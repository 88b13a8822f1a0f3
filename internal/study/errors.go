package study

import (
	"errors"
	"net/http"

	"study-backend/internal/documents"
	"study-backend/internal/llm"
)

// ErrReuploadRequired is returned when file mode is required but the original
// bytes are gone. The user must upload the file again.
var ErrReuploadRequired = errors.New("file mode required but original bytes are missing")

const reuploadMessage = "This document appears to be a scanned PDF (image-based), but the original file was not saved. " +
	"Please re-upload the file to enable direct processing. The system will automatically detect and process scanned PDFs."

// messager is implemented by llm errors that carry user-facing text.
type messager interface {
	Message() string
}

// statusFor maps a service error onto the HTTP status, error code and message.
func statusFor(err error) (int, string, string) {
	var noModel *llm.NoModelError
	var provider *llm.ProviderError
	switch {
	case errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound, "not_found", "Document not found"
	case errors.Is(err, ErrReuploadRequired):
		return http.StatusBadRequest, "reupload_required", reuploadMessage
	case errors.Is(err, documents.ErrInvalidInput):
		return http.StatusBadRequest, "validation_error", err.Error()
	case errors.Is(err, llm.ErrContentTooShort):
		return http.StatusBadRequest, "validation_error", "Document text is too short to generate study material. Please upload at least 20 characters."
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusInternalServerError, "provider_not_configured", "The generation provider is not configured."
	case errors.As(err, &noModel):
		return http.StatusBadGateway, "model_unavailable", noModel.Message()
	case errors.As(err, &provider):
		return providerStatus(provider)
	case errors.Is(err, llm.ErrInvalidOutput):
		return http.StatusBadGateway, "invalid_output", "The model returned output that could not be parsed. Please try again."
	default:
		var m messager
		if errors.As(err, &m) {
			return http.StatusInternalServerError, "internal_error", m.Message()
		}
		return http.StatusInternalServerError, "internal_error", err.Error()
	}
}

func providerStatus(err *llm.ProviderError) (int, string, string) {
	switch err.Failure {
	case llm.FailureAuth:
		return http.StatusInternalServerError, "provider_auth", err.Message()
	case llm.FailureRateLimited:
		return http.StatusTooManyRequests, "provider_rate_limited", err.Message()
	case llm.FailureOverloaded:
		return http.StatusServiceUnavailable, "provider_overloaded", err.Message()
	default:
		return http.StatusInternalServerError, "internal_error", err.Message()
	}
}
