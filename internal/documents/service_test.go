package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"study-backend/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	return &Service{
		Repo: repo,
		Now:  func() time.Time { return time.UnixMilli(1700000000000) },
	}, repo
}

func richText() string {
	var words []string
	for i := 0; i < 60; i++ {
		words = append(words, "word"+strings.Repeat("x", i%7)+string(rune('a'+i%26)))
	}
	return strings.Join(words, " ")
}

func docxBytes(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	xml := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + body + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(xml)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUploadRichTextUsesTextMode(t *testing.T) {
	svc, repo := newTestService(t)
	text := richText()

	res, err := svc.Upload(context.Background(), UploadInput{FileName: "notes.txt", MediaType: "text/plain", Data: []byte(text)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	stored, err := repo.GetByID(context.Background(), res.Document.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.UseMultimodalFallback || stored.FileBytes != nil {
		t.Fatalf("expected text mode without bytes, got %+v", stored)
	}
	if stored.FileName != "1700000000000-notes.txt" {
		t.Fatalf("unexpected file name: %s", stored.FileName)
	}
	if stored.ExtractedText != text {
		t.Fatalf("unexpected text")
	}
}

func TestUploadDocxExtractsText(t *testing.T) {
	svc, _ := newTestService(t)
	text := richText()

	res, err := svc.Upload(context.Background(), UploadInput{
		FileName:  "lecture.docx",
		MediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:      docxBytes(t, text),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Document.ExtractedText != text || res.Document.UseMultimodalFallback {
		t.Fatalf("unexpected document: %+v", res.Document)
	}
}

func TestUploadImageKeepsBytes(t *testing.T) {
	svc, _ := newTestService(t)
	data := []byte{0x89, 0x50, 0x4e, 0x47}

	res, err := svc.Upload(context.Background(), UploadInput{FileName: "board.png", MediaType: "image/png", Data: data})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	doc := res.Document
	if !doc.UseMultimodalFallback || !bytes.Equal(doc.FileBytes, data) {
		t.Fatalf("expected file mode with bytes, got %+v", doc)
	}
	if doc.ExtractedText != NoTextPlaceholder {
		t.Fatalf("expected placeholder, got %q", doc.ExtractedText)
	}
}

func TestUploadBrokenPDFDowngradesToFileMode(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Upload(context.Background(), UploadInput{FileName: "scan.pdf", MediaType: "application/pdf", Data: []byte("not really a pdf")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !res.Document.UseMultimodalFallback || res.Document.ExtractedText != NoTextPlaceholder {
		t.Fatalf("unexpected document: %+v", res.Document)
	}
	if res.Text != "" {
		t.Fatalf("expected empty extracted text, got %q", res.Text)
	}
}

func TestUploadBrokenDocxRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), UploadInput{
		FileName:  "broken.docx",
		MediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:      []byte("garbage"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Failed to parse file") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestUploadValidation(t *testing.T) {
	svc, _ := newTestService(t)
	svc.MaxUploadBytes = 8

	tests := []struct {
		name string
		in   UploadInput
	}{
		{name: "missing", in: UploadInput{}},
		{name: "type", in: UploadInput{FileName: "a.exe", MediaType: "application/x-msdownload", Data: []byte("MZ")}},
		{name: "size", in: UploadInput{FileName: "a.txt", MediaType: "text/plain", Data: []byte("123456789")}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Upload(context.Background(), tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUploadArchivesAndRecoversBytes(t *testing.T) {
	svc, repo := newTestService(t)
	svc.Store = local.New(t.TempDir())
	text := richText()

	res, err := svc.Upload(context.Background(), UploadInput{FileName: "notes.txt", MediaType: "text/plain", Data: []byte(text)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), res.Document.ID)
	if stored.StorageKey == "" {
		t.Fatal("expected storage key")
	}

	data, err := svc.FileBytes(context.Background(), stored)
	if err != nil {
		t.Fatalf("FileBytes: %v", err)
	}
	if string(data) != text {
		t.Fatalf("unexpected archived bytes")
	}
}

func TestFileBytesWithoutSource(t *testing.T) {
	svc, _ := newTestService(t)
	data, err := svc.FileBytes(context.Background(), Document{ID: "x"})
	if err != nil || data != nil {
		t.Fatalf("expected nil bytes, got %v %v", data, err)
	}

	svc.Store = local.New(t.TempDir())
	data, err = svc.FileBytes(context.Background(), Document{ID: "x", StorageKey: "documents/x/gone.pdf"})
	if err != nil || data != nil {
		t.Fatalf("expected nil bytes for missing archive, got %v %v", data, err)
	}
}

func TestUploadText(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.UploadText(context.Background(), "   The mitochondria is the powerhouse.  ")
	if err != nil {
		t.Fatalf("UploadText: %v", err)
	}
	doc := res.Document
	if doc.FileName != "text-1700000000000.txt" || doc.OriginalName != TextDocumentName || doc.MediaType != "text/plain" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Source != SourceText || doc.UseMultimodalFallback {
		t.Fatalf("pasted text must use text mode: %+v", doc)
	}
	if doc.ExtractedText != "The mitochondria is the powerhouse." {
		t.Fatalf("expected trimmed text, got %q", doc.ExtractedText)
	}

	if _, err := svc.UploadText(context.Background(), "too short"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UploadText(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short"); got != "short..." {
		t.Fatalf("unexpected preview: %q", got)
	}
	long := strings.Repeat("é", 600)
	if got := preview(long); len([]rune(got)) != 503 {
		t.Fatalf("unexpected preview length: %d", len([]rune(got)))
	}
}
