package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"study-backend/internal/llm"
)

func TestClassifyGoogleAPIErrors(t *testing.T) {
	tests := []struct {
		code int
		want llm.Failure
	}{
		{code: 404, want: llm.FailureModelUnavailable},
		{code: 403, want: llm.FailureAuth},
		{code: 401, want: llm.FailureAuth},
		{code: 429, want: llm.FailureRateLimited},
		{code: 503, want: llm.FailureOverloaded},
	}
	for _, tt := range tests {
		err := classify(fmt.Errorf("generate: %w", &googleapi.Error{Code: tt.code, Message: "x"}))
		if got := llm.Classify(err); got != tt.want {
			t.Fatalf("code %d: got %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestClassifyGRPCStatus(t *testing.T) {
	tests := []struct {
		code codes.Code
		want llm.Failure
	}{
		{code: codes.NotFound, want: llm.FailureModelUnavailable},
		{code: codes.PermissionDenied, want: llm.FailureAuth},
		{code: codes.ResourceExhausted, want: llm.FailureRateLimited},
		{code: codes.Unavailable, want: llm.FailureOverloaded},
	}
	for _, tt := range tests {
		err := classify(status.Error(tt.code, "x"))
		if got := llm.Classify(err); got != tt.want {
			t.Fatalf("code %v: got %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestClassifyKeepsCause(t *testing.T) {
	cause := &googleapi.Error{Code: 429, Message: "quota"}
	err := classify(cause)
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr != cause {
		t.Fatalf("expected cause preserved, got %v", err)
	}
}

func TestExtractTextFirstCandidate(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("[{\"question\":"), genai.Text("\"Q\",\"answer\":\"A\"}]")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	if got := extractText(resp); got != `[{"question":"Q","answer":"A"}]` {
		t.Fatalf("unexpected text: %s", got)
	}
	if extractText(nil) != "" {
		t.Fatal("nil response should yield empty text")
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := NewProvider(context.Background(), " "); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
