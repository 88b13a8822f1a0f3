package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

const (
	// MaxPromptChars caps the text embedded in text and direct-prompt instructions.
	MaxPromptChars = 15000
	// MinContentChars is the shortest trimmed text accepted in text modes.
	MinContentChars = 20
)

//go:embed prompts/*.tmpl
var promptFiles embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFiles, "prompts/*.tmpl"))

// Payload is the document content available to BuildPrompt.
type Payload struct {
	Text string
	File *FilePart
}

// BuildPrompt returns the instruction for kind in mode. Text modes embed at
// most MaxPromptChars of trimmed text; file mode attaches payload.File.
func BuildPrompt(kind Kind, mode Mode, payload Payload) (Prompt, error) {
	name, err := templateName(kind, mode)
	if err != nil {
		return Prompt{}, err
	}

	var content string
	switch mode {
	case ModeFile:
		if payload.File == nil || len(payload.File.Data) == 0 {
			return Prompt{}, ErrMissingFile
		}
	default:
		trimmed := strings.TrimSpace(payload.Text)
		if len([]rune(trimmed)) < MinContentChars {
			return Prompt{}, ErrContentTooShort
		}
		content = truncateRunes(trimmed, MaxPromptChars)
	}

	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, struct{ Content string }{content}); err != nil {
		return Prompt{}, fmt.Errorf("render prompt %s: %w", name, err)
	}

	prompt := Prompt{Kind: kind, Mode: mode, Instruction: strings.TrimSpace(buf.String())}
	if mode == ModeFile {
		file := *payload.File
		prompt.File = &file
	}
	return prompt, nil
}

func templateName(kind Kind, mode Mode) (string, error) {
	switch kind {
	case KindSummary, KindFlashcards, KindQuiz:
	default:
		return "", fmt.Errorf("%w: kind %q", ErrUnsupportedMode, kind)
	}
	switch mode {
	case ModeFile, ModeText:
	case ModeDirectPrompt:
		if kind != KindSummary {
			return "", fmt.Errorf("%w: %s has no direct-prompt mode", ErrUnsupportedMode, kind)
		}
		return "summary_direct.tmpl", nil
	default:
		return "", fmt.Errorf("%w: mode %q", ErrUnsupportedMode, mode)
	}
	return fmt.Sprintf("%s_%s.tmpl", kind, mode), nil
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
