// Command studyctl runs the upload-time pipeline on a local file: text
// extraction, quality classification and mode selection, and optionally a
// single generation against the configured provider.
//
//	go run ./cmd/studyctl -file notes.pdf
//	go run ./cmd/studyctl -file scan.png -kind summary
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"study-backend/internal/documents"
	"study-backend/internal/extract"
	"study-backend/internal/llm"
	"study-backend/internal/llm/gemini"
	"study-backend/internal/llm/openai"
	"study-backend/internal/quality"
	"study-backend/internal/shared/config"
	"study-backend/internal/study"
)

type report struct {
	File          string            `json:"file"`
	MediaType     string            `json:"mediaType"`
	TextLength    int               `json:"textLength"`
	Verdict       quality.Verdict   `json:"verdict"`
	UseFileUpload bool              `json:"useFileUpload"`
	Modes         map[string]string `json:"modes"`
}

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to a pdf, docx, txt or image file")
	kind := flag.String("kind", "", "Generate one of: summary, flashcards, quiz (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider (gemini or openai)")
	models := flag.String("models", strings.Join(cfg.LLMModels, ","), "Comma-separated model order")
	outPath := flag.String("out", "", "Path to write the raw model output (optional)")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}
	mediaType, err := mimeFromExt(*filePath)
	if err != nil {
		exitErr(err.Error())
	}
	data, err := os.ReadFile(*filePath)
	if err != nil {
		exitErr(fmt.Sprintf("read file: %v", err))
	}

	ctx := context.Background()
	doc, err := inspect(ctx, filepath.Base(*filePath), mediaType, data)
	if err != nil {
		exitErr(err.Error())
	}
	writeJSON(os.Stdout, newReport(*filePath, doc))

	if strings.TrimSpace(*kind) == "" {
		return
	}
	k := llm.Kind(strings.ToLower(strings.TrimSpace(*kind)))

	p, err := buildProvider(ctx, *provider, cfg)
	if err != nil {
		exitErr(err.Error())
	}
	client := llm.NewClient(p, strings.Split(*models, ","))

	mode := study.SelectMode(doc, k)
	payload := llm.Payload{Text: doc.ExtractedText}
	if mode == llm.ModeFile {
		payload.File = &llm.FilePart{MediaType: doc.MediaType, Data: data}
	}
	prompt, err := llm.BuildPrompt(k, mode, payload)
	if err != nil {
		exitErr(fmt.Sprintf("build prompt: %v", err))
	}
	raw, err := client.Generate(ctx, prompt)
	if err != nil {
		exitErr(fmt.Sprintf("generate: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(raw), 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	fmt.Println(raw)
}

// inspect mirrors the upload path: PDF parse failures become empty text and
// the upload decision comes from the quality verdict.
func inspect(ctx context.Context, name, mediaType string, data []byte) (documents.Document, error) {
	isImage := quality.IsImage(mediaType)
	var text string
	if !isImage {
		extracted, err := extract.ExtractTextFromBytes(ctx, data, mediaType, name)
		if err != nil && !extract.IsPDFParseError(err) {
			return documents.Document{}, fmt.Errorf("extract text: %w", err)
		}
		text = strings.TrimSpace(extracted)
	}
	useFile := quality.ShouldUseFileUpload(text, isImage, false)
	if text == "" {
		text = documents.NoTextPlaceholder
	}
	return documents.Document{
		OriginalName:          name,
		MediaType:             mediaType,
		Source:                documents.SourceFile,
		ExtractedText:         text,
		UseMultimodalFallback: useFile,
	}, nil
}

func newReport(path string, doc documents.Document) report {
	modes := map[string]string{}
	for _, k := range []llm.Kind{llm.KindSummary, llm.KindFlashcards, llm.KindQuiz} {
		modes[string(k)] = string(study.SelectMode(doc, k))
	}
	return report{
		File:          path,
		MediaType:     doc.MediaType,
		TextLength:    len([]rune(doc.ExtractedText)),
		Verdict:       quality.Analyze(doc.ExtractedText),
		UseFileUpload: doc.UseMultimodalFallback,
		Modes:         modes,
	}
}

func buildProvider(ctx context.Context, name string, cfg config.Config) (llm.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gemini":
		return gemini.NewProvider(ctx, cfg.GeminiAPIKey)
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extract.MimePDF, nil
	case ".docx":
		return extract.MimeDOCX, nil
	case ".txt", ".md":
		return extract.MimeText, nil
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".gif":
		return "image/gif", nil
	case ".webp":
		return "image/webp", nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func writeJSON(f *os.File, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		exitErr(fmt.Sprintf("encode report: %v", err))
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	buf.WriteByte('\n')
	_, _ = f.Write(buf.Bytes())
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
