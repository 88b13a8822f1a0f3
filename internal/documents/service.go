package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"study-backend/internal/extract"
	"study-backend/internal/quality"
	"study-backend/internal/shared/metrics"
	"study-backend/internal/shared/storage/object"
	"study-backend/internal/shared/telemetry"
	"study-backend/internal/shared/util"
)

const (
	defaultMaxUploadBytes = 10 << 20
	defaultMinTextLength  = 20
)

// Service contains business logic for documents.
type Service struct {
	Repo Repo
	// Store archives original uploads. Nil disables archiving.
	Store             object.ObjectStore
	MaxUploadBytes    int64
	AllowedMediaTypes []string
	MinTextLength     int
	Now               func() time.Time
}

// UploadInput is one uploaded file.
type UploadInput struct {
	FileName  string
	MediaType string
	Data      []byte
}

// UploadResult is the stored document plus the text extracted at upload time.
type UploadResult struct {
	Document Document
	Text     string
}

// Upload extracts text, decides the generation mode and records the document.
// Raw bytes are kept on the record only when generation must use file mode.
func (s *Service) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if strings.TrimSpace(in.FileName) == "" || len(in.Data) == 0 {
		return UploadResult{}, invalid("No file uploaded")
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(in.MediaType, ";")[0]))
	if !s.allowed(mediaType) {
		return UploadResult{}, invalid("Invalid file type. Only PDF, DOCX, TXT, and image files are allowed.")
	}
	if int64(len(in.Data)) > s.maxUploadBytes() {
		return UploadResult{}, invalid("File too large")
	}

	isImage := quality.IsImage(mediaType)
	var text string
	if !isImage {
		extracted, err := extract.ExtractTextFromBytes(ctx, in.Data, mediaType, in.FileName)
		switch {
		case err == nil:
			text = extracted
		case extract.IsPDFParseError(err):
			// Scanned PDFs often fail to parse; file mode takes over.
			telemetry.Warn("upload.pdf_parse_failed", map[string]any{"file_name": in.FileName, "error": err})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return UploadResult{}, err
		default:
			return UploadResult{}, invalid("Failed to parse file: %v", err)
		}
	}

	trimmed := strings.TrimSpace(text)
	verdict := quality.Analyze(trimmed)
	useFile := quality.UseFileUpload(verdict, isImage, false)

	now := s.now()
	doc := Document{
		ID:                    uuid.NewString(),
		FileName:              fmt.Sprintf("%d-%s", now.UnixMilli(), safeName(in.FileName)),
		OriginalName:          in.FileName,
		MediaType:             mediaType,
		Source:                SourceFile,
		ExtractedText:         trimmed,
		UseMultimodalFallback: useFile,
		CreatedAt:             now,
	}
	if doc.ExtractedText == "" {
		doc.ExtractedText = NoTextPlaceholder
	}
	if useFile {
		doc.FileBytes = in.Data
	}
	doc.StorageKey = s.archive(ctx, doc.ID, in.FileName, mediaType, in.Data)

	if err := s.Repo.Create(ctx, doc); err != nil {
		return UploadResult{}, err
	}

	mode := "text"
	if useFile {
		mode = "file"
	}
	metrics.IncUpload(mode)
	telemetry.Info("upload.stored", map[string]any{
		"document_id":  doc.ID,
		"media_type":   mediaType,
		"bytes":        len(in.Data),
		"mode":         mode,
		"word_count":   verdict.WordCount,
		"unique_words": verdict.UniqueWordCount,
		"low_quality":  verdict.IsLowQuality,
		"watermark":    verdict.HasWatermarkArtifact,
		"archived":     doc.StorageKey != "",
	})
	return UploadResult{Document: doc, Text: text}, nil
}

// UploadText records pasted text. It always generates in text mode.
func (s *Service) UploadText(ctx context.Context, text string) (UploadResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return UploadResult{}, invalid("Text content is required")
	}
	minLen := s.minTextLength()
	if len([]rune(trimmed)) < minLen {
		return UploadResult{}, invalid("Text must be at least %d characters long", minLen)
	}

	now := s.now()
	doc := Document{
		ID:            uuid.NewString(),
		FileName:      fmt.Sprintf("text-%d.txt", now.UnixMilli()),
		OriginalName:  TextDocumentName,
		MediaType:     extract.MimeText,
		Source:        SourceText,
		ExtractedText: trimmed,
		CreatedAt:     now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return UploadResult{}, err
	}

	metrics.IncUpload("text")
	telemetry.Info("upload.text_stored", map[string]any{
		"document_id": doc.ID,
		"chars":       len([]rune(trimmed)),
	})
	return UploadResult{Document: doc, Text: trimmed}, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// FileBytes returns the raw upload for doc, preferring bytes on the record and
// falling back to the archived copy. It returns nil when neither exists.
func (s *Service) FileBytes(ctx context.Context, doc Document) ([]byte, error) {
	if len(doc.FileBytes) > 0 {
		return doc.FileBytes, nil
	}
	if s.Store == nil || doc.StorageKey == "" {
		return nil, nil
	}
	data, err := object.ReadAll(ctx, s.Store, doc.StorageKey, s.maxUploadBytes())
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("document.archive_missing", map[string]any{"document_id": doc.ID, "storage_key": doc.StorageKey})
			return nil, nil
		}
		return nil, fmt.Errorf("read archived upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *Service) archive(ctx context.Context, documentID, fileName, mediaType string, data []byte) string {
	if s.Store == nil {
		return ""
	}
	key, _, err := s.Store.Save(ctx, documentID, safeName(fileName), mediaType, bytes.NewReader(data))
	if err != nil {
		// The record stays usable without the archive.
		telemetry.Warn("upload.archive_failed", map[string]any{"document_id": documentID, "error": err})
		return ""
	}
	return key
}

func (s *Service) allowed(mediaType string) bool {
	types := s.AllowedMediaTypes
	if len(types) == 0 {
		types = DefaultMediaTypes
	}
	for _, t := range types {
		if strings.EqualFold(t, mediaType) {
			return true
		}
	}
	return false
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (s *Service) minTextLength() int {
	if s.MinTextLength > 0 {
		return s.MinTextLength
	}
	return defaultMinTextLength
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// DefaultMediaTypes are accepted when no list is configured.
var DefaultMediaTypes = []string{
	extract.MimePDF,
	extract.MimeDOCX,
	extract.MimeText,
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

func safeName(name string) string {
	clean, err := util.SanitizeFileName(name)
	if err != nil {
		return "upload"
	}
	return clean
}
