package documents

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = cloneDocument(doc)
	return nil
}

// GetByID returns a copy of the stored document.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

// SetSummary replaces the cached summary.
func (r *MemoryRepo) SetSummary(ctx context.Context, id, summary string) error {
	return r.update(ctx, id, func(doc *Document) {
		doc.Summary = summary
	})
}

// SetFlashcards replaces the cached flashcards.
func (r *MemoryRepo) SetFlashcards(ctx context.Context, id string, cards []Flashcard) error {
	return r.update(ctx, id, func(doc *Document) {
		doc.Flashcards = append([]Flashcard(nil), cards...)
	})
}

// SetQuiz replaces the cached quiz.
func (r *MemoryRepo) SetQuiz(ctx context.Context, id string, quiz []QuizQuestion) error {
	return r.update(ctx, id, func(doc *Document) {
		doc.Quiz = cloneQuiz(quiz)
	})
}

func (r *MemoryRepo) update(ctx context.Context, id string, fn func(doc *Document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	fn(&doc)
	r.data[id] = doc
	return nil
}

func cloneDocument(doc Document) Document {
	out := doc
	if doc.FileBytes != nil {
		out.FileBytes = append([]byte(nil), doc.FileBytes...)
	}
	if doc.Flashcards != nil {
		out.Flashcards = append([]Flashcard(nil), doc.Flashcards...)
	}
	out.Quiz = cloneQuiz(doc.Quiz)
	return out
}

func cloneQuiz(quiz []QuizQuestion) []QuizQuestion {
	if quiz == nil {
		return nil
	}
	out := make([]QuizQuestion, len(quiz))
	for i, q := range quiz {
		out[i] = q
		out[i].Options = append([]string(nil), q.Options...)
	}
	return out
}
