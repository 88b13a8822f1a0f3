// Package llm builds generation prompts and runs them against a generative
// model provider, walking an ordered list of model names.
package llm

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Kind is the study artifact being generated.
type Kind string

const (
	KindSummary    Kind = "summary"
	KindFlashcards Kind = "flashcards"
	KindQuiz       Kind = "quiz"
)

// Mode selects how document content reaches the model.
type Mode string

const (
	// ModeFile sends the raw file bytes inline with an instruction.
	ModeFile Mode = "file"
	// ModeText embeds extracted text in the instruction.
	ModeText Mode = "text"
	// ModeDirectPrompt treats pasted text as a question to answer. Summary only.
	ModeDirectPrompt Mode = "direct_prompt"
)

// FilePart is an inline file attachment.
type FilePart struct {
	MediaType string
	Data      []byte
}

// Base64 returns the standard base64 encoding of the file bytes.
func (f FilePart) Base64() string {
	return base64.StdEncoding.EncodeToString(f.Data)
}

// Prompt is a fully built generation request. File is set only in ModeFile.
type Prompt struct {
	Kind        Kind
	Mode        Mode
	Instruction string
	File        *FilePart
}

// Provider sends one instruction (plus optional file) to one named model and
// returns the raw text of the first candidate.
type Provider interface {
	Name() string
	Generate(ctx context.Context, model string, instruction string, file *FilePart) (string, error)
}

// PlaceholderProvider is used when no provider credentials are configured.
type PlaceholderProvider struct {
	Reason string
}

// Name implements Provider.
func (PlaceholderProvider) Name() string { return "placeholder" }

// Generate always fails with ErrNotConfigured.
func (p PlaceholderProvider) Generate(ctx context.Context, model string, instruction string, file *FilePart) (string, error) {
	_ = ctx
	_ = instruction
	_ = file
	if p.Reason != "" {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, p.Reason)
	}
	return "", ErrNotConfigured
}
