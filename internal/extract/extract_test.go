package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Photosynthesis converts light</w:t></w:r></w:p>
<w:p><w:r><w:t>into chemical energy.</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_Docx(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	text, err := ExtractTextFromBytes(context.Background(), data, MimeDOCX, "notes.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if text != "Photosynthesis converts light\ninto chemical energy." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	if _, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "test.docx"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})

	_, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_PlainText(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), []byte("plain notes"), "text/plain; charset=utf-8", "a.txt")
	if err != nil || text != "plain notes" {
		t.Fatalf("unexpected result %q %v", text, err)
	}
}

func TestExtractTextFromBytes_BrokenPDF(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("not a pdf"), MimePDF, "scan.pdf")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !IsPDFParseError(err) {
		t.Fatalf("expected pdf parse error, got %v", err)
	}
}

func TestExtractTextFromBytes_BrokenDocxIsNotPDF(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("garbage"), MimeDOCX, "a.docx")
	if err == nil || IsPDFParseError(err) {
		t.Fatalf("expected docx parse error, got %v", err)
	}
}

func TestExtractTextFromBytes_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractTextFromBytes(ctx, []byte("x"), MimeText, "a.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestExtractTextFromBytes_DocxKeepsOnlyRunText(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p>
  <w:r><w:t>Cells divide.</w:t></w:r>
  <w:r><w:instrText xml:space="preserve"> PAGE \* MERGEFORMAT </w:instrText></w:r>
  <w:del><w:r><w:delText>removed words</w:delText></w:r></w:del>
</w:p>
<w:p><w:r><w:t>Term</w:t><w:tab/><w:t>Definition</w:t><w:br/><w:t xml:space="preserve">next line</w:t></w:r></w:p>
</w:body>
</w:document>`
	data := buildZip(t, map[string]string{"word/document.xml": body})

	text, err := ExtractTextFromBytes(context.Background(), data, MimeDOCX, "cells.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	want := "Cells divide.\nTerm\tDefinition\nnext line"
	if text != want {
		t.Fatalf("unexpected text: %q, want %q", text, want)
	}
}
