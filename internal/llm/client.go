package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"study-backend/internal/shared/metrics"
	"study-backend/internal/shared/telemetry"
)

// DefaultModels is used when no model list is configured.
var DefaultModels = []string{"gemini-2.5-flash"}

// Client runs prompts against an ordered list of models. A model reported as
// unavailable is skipped; any other provider failure ends the attempt.
type Client struct {
	provider Provider
	models   []string
}

// NewClient constructs a Client. Blank model names are dropped.
func NewClient(provider Provider, models []string) *Client {
	cleaned := make([]string, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultModels...)
	}
	if provider == nil {
		provider = PlaceholderProvider{}
	}
	return &Client{provider: provider, models: cleaned}
}

// Models returns the configured model order.
func (c *Client) Models() []string {
	return append([]string(nil), c.models...)
}

// Generate returns the raw model text for prompt.
func (c *Client) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var lastErr error
	for i, model := range c.models {
		text, err := c.attempt(ctx, prompt, model)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrNotConfigured) || ctx.Err() != nil {
			return "", err
		}

		failure := Classify(err)
		fields := map[string]any{
			"provider": c.provider.Name(),
			"model":    model,
			"kind":     string(prompt.Kind),
			"mode":     string(prompt.Mode),
			"error":    err,
		}
		if failure != FailureModelUnavailable {
			telemetry.Error("llm.generate_failed", fields)
			return "", &ProviderError{Failure: failure, Provider: c.provider.Name(), Model: model, Err: err}
		}

		lastErr = err
		fields["remaining"] = len(c.models) - i - 1
		telemetry.Warn("llm.model_unavailable", fields)
		if i < len(c.models)-1 {
			metrics.IncModelFallback()
		}
	}
	return "", &NoModelError{Models: c.Models(), Last: lastErr}
}

func (c *Client) attempt(ctx context.Context, prompt Prompt, model string) (string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.provider.Name()),
		attribute.String("llm.model", model),
		attribute.String("llm.kind", string(prompt.Kind)),
		attribute.String("llm.mode", string(prompt.Mode)),
		attribute.Int("llm.instruction_chars", len(prompt.Instruction)),
	)

	start := time.Now()
	text, err := c.provider.Generate(ctx, model, prompt.Instruction, prompt.File)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.ObserveGenerationMs(elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	telemetry.Info("llm.generated", map[string]any{
		"provider":    c.provider.Name(),
		"model":       model,
		"kind":        string(prompt.Kind),
		"mode":        string(prompt.Mode),
		"duration_ms": elapsed,
		"chars":       len(text),
	})
	return text, nil
}
