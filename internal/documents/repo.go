package documents

import "context"

// Repo defines persistence operations for documents. Each Set* call writes a
// single field so concurrent generations of different kinds never clobber
// each other.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	SetSummary(ctx context.Context, id, summary string) error
	SetFlashcards(ctx context.Context, id string, cards []Flashcard) error
	SetQuiz(ctx context.Context, id string, quiz []QuizQuestion) error
}
