package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const testDocID = "6f1c2a4e-8b7d-4c1e-9a3f-2d5b6c7e8f90"

var selectColumns = []string{
	"id", "file_name", "original_name", "media_type", "source", "extracted_text", "file_bytes",
	"storage_key", "use_file_upload", "summary", "flashcards", "quiz", "created_at",
}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := Document{
		ID:                    testDocID,
		FileName:              "1700000000000-scan.pdf",
		OriginalName:          "scan.pdf",
		MediaType:             "application/pdf",
		ExtractedText:         NoTextPlaceholder,
		FileBytes:             []byte("%PDF"),
		UseMultimodalFallback: true,
		CreatedAt:             time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.FileName,
			doc.OriginalName,
			doc.MediaType,
			"file",
			doc.ExtractedText,
			doc.FileBytes,
			nil, // storage_key
			true,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesJSON(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(selectColumns).AddRow(
		testDocID, "text-1.txt", TextDocumentName, "text/plain", "text", "Cells divide by mitosis.",
		nil, nil, false, "## Summary",
		[]byte(`[{"question":"Q1","answer":"A1"}]`),
		[]byte(`[{"question":"Q","options":["a","b","c","d"],"correctAnswer":2,"explanation":"e"}]`),
		created,
	)
	mock.ExpectQuery("SELECT id, file_name").WithArgs(testDocID).WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), testDocID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Source != SourceText || !doc.IsPastedText() {
		t.Fatalf("unexpected source: %q", doc.Source)
	}
	if doc.FileBytes != nil {
		t.Fatalf("expected nil bytes, got %v", doc.FileBytes)
	}
	if len(doc.Flashcards) != 1 || doc.Flashcards[0].Answer != "A1" {
		t.Fatalf("unexpected flashcards: %+v", doc.Flashcards)
	}
	if len(doc.Quiz) != 1 || doc.Quiz[0].CorrectAnswer != 2 || len(doc.Quiz[0].Options) != 4 {
		t.Fatalf("unexpected quiz: %+v", doc.Quiz)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, file_name").WithArgs(testDocID).WillReturnRows(sqlmock.NewRows(selectColumns))

	if _, err := repo.GetByID(context.Background(), testDocID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDRejectsMalformedID(t *testing.T) {
	repo, mock := newMockRepo(t)
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestPGRepoSetFlashcardsWritesJSON(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE documents SET flashcards").
		WithArgs(testDocID, []byte(`[{"question":"Q","answer":"A"}]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetFlashcards(context.Background(), testDocID, []Flashcard{{Question: "Q", Answer: "A"}}); err != nil {
		t.Fatalf("SetFlashcards: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetSummaryMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE documents SET summary").
		WithArgs(testDocID, "text").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetSummary(context.Background(), testDocID, "text"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
