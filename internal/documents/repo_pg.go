package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres. Flashcards and quiz live in JSONB columns.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    file_name,
    original_name,
    media_type,
    source,
    extracted_text,
    file_bytes,
    storage_key,
    use_file_upload,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	source := doc.Source
	if source == "" {
		source = SourceFile
	}
	var fileBytes any
	if len(doc.FileBytes) > 0 {
		fileBytes = doc.FileBytes
	}
	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.FileName,
		doc.OriginalName,
		doc.MediaType,
		string(source),
		doc.ExtractedText,
		fileBytes,
		storageKey,
		doc.UseMultimodalFallback,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	const query = `
SELECT id, file_name, original_name, media_type, source, extracted_text, file_bytes, storage_key, use_file_upload, summary, flashcards, quiz, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	var doc Document
	var source string
	var fileBytes []byte
	var storageKey sql.NullString
	var flashcardsRaw []byte
	var quizRaw []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.FileName,
		&doc.OriginalName,
		&doc.MediaType,
		&source,
		&doc.ExtractedText,
		&fileBytes,
		&storageKey,
		&doc.UseMultimodalFallback,
		&doc.Summary,
		&flashcardsRaw,
		&quizRaw,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	doc.Source = Source(source)
	doc.FileBytes = NormalizeFileBytes(fileBytes)
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if len(flashcardsRaw) > 0 {
		if err := json.Unmarshal(flashcardsRaw, &doc.Flashcards); err != nil {
			return Document{}, fmt.Errorf("decode flashcards: %w", err)
		}
	}
	if len(quizRaw) > 0 {
		if err := json.Unmarshal(quizRaw, &doc.Quiz); err != nil {
			return Document{}, fmt.Errorf("decode quiz: %w", err)
		}
	}
	return doc, nil
}

// SetSummary stores the generated summary.
func (r *PGRepo) SetSummary(ctx context.Context, id, summary string) error {
	const query = `UPDATE documents SET summary = $2 WHERE id = $1`
	return r.exec(ctx, query, id, summary)
}

// SetFlashcards stores the generated flashcards.
func (r *PGRepo) SetFlashcards(ctx context.Context, id string, cards []Flashcard) error {
	if cards == nil {
		cards = []Flashcard{}
	}
	raw, err := json.Marshal(cards)
	if err != nil {
		return err
	}
	const query = `UPDATE documents SET flashcards = $2 WHERE id = $1`
	return r.exec(ctx, query, id, raw)
}

// SetQuiz stores the generated quiz.
func (r *PGRepo) SetQuiz(ctx context.Context, id string, quiz []QuizQuestion) error {
	if quiz == nil {
		quiz = []QuizQuestion{}
	}
	raw, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	const query = `UPDATE documents SET quiz = $2 WHERE id = $1`
	return r.exec(ctx, query, id, raw)
}

func (r *PGRepo) exec(ctx context.Context, query string, id string, value any) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, query, id, value)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
