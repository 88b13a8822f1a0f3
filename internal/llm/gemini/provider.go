// Package gemini adapts the Google generative AI SDK to llm.Provider.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"study-backend/internal/llm"
)

// Provider calls Gemini models through one long-lived SDK client.
type Provider struct {
	client *genai.Client
}

// NewProvider creates the SDK client for apiKey. Call Close on shutdown.
func NewProvider(ctx context.Context, apiKey string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", llm.ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client}, nil
}

// Close releases the SDK client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return "gemini" }

// Generate sends the instruction, with the file inline when present, to model.
func (p *Provider) Generate(ctx context.Context, model string, instruction string, file *llm.FilePart) (string, error) {
	parts := []genai.Part{genai.Text(instruction)}
	if file != nil {
		parts = append(parts, genai.Blob{MIMEType: file.MediaType, Data: file.Data})
	}

	resp, err := p.client.GenerativeModel(model).GenerateContent(ctx, parts...)
	if err != nil {
		return "", classify(err)
	}
	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		// First candidate with content wins.
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}

// classifiedError tags an SDK error with the failure derived from its status.
type classifiedError struct {
	failure llm.Failure
	err     error
}

func (e *classifiedError) Error() string         { return e.err.Error() }
func (e *classifiedError) Unwrap() error         { return e.err }
func (e *classifiedError) Failure() llm.Failure { return e.failure }

// classify inspects REST (googleapi) and gRPC status errors. Anything else
// is returned unchanged for message-based classification.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if f := llm.FailureForStatus(apiErr.Code); f != llm.FailureUnknown {
			return &classifiedError{failure: f, err: err}
		}
		return err
	}
	if st, ok := status.FromError(err); ok {
		if f := failureForCode(st.Code()); f != llm.FailureUnknown {
			return &classifiedError{failure: f, err: err}
		}
	}
	return err
}

func failureForCode(code codes.Code) llm.Failure {
	switch code {
	case codes.NotFound:
		return llm.FailureModelUnavailable
	case codes.PermissionDenied, codes.Unauthenticated:
		return llm.FailureAuth
	case codes.ResourceExhausted:
		return llm.FailureRateLimited
	case codes.Unavailable:
		return llm.FailureOverloaded
	default:
		return llm.FailureUnknown
	}
}
