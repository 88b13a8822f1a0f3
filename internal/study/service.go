// Package study turns stored documents into summaries, flashcards and
// quizzes, caching each result on the document.
package study

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"study-backend/internal/documents"
	"study-backend/internal/llm"
	"study-backend/internal/quality"
	"study-backend/internal/shared/lock"
	"study-backend/internal/shared/metrics"
	"study-backend/internal/shared/telemetry"
)

// DocumentSource reads documents and recovers their raw bytes.
type DocumentSource interface {
	Get(ctx context.Context, id string) (documents.Document, error)
	FileBytes(ctx context.Context, doc documents.Document) ([]byte, error)
}

// Generator runs one prompt against the configured models.
type Generator interface {
	Generate(ctx context.Context, prompt llm.Prompt) (string, error)
}

// Service orchestrates generation for one document at a time.
type Service struct {
	docs   DocumentSource
	repo   documents.Repo
	gen    Generator
	locker lock.Locker
}

// NewService constructs a Service. A nil locker disables serialization.
func NewService(docs DocumentSource, repo documents.Repo, gen Generator, locker lock.Locker) *Service {
	if locker == nil {
		locker = lock.Noop{}
	}
	return &Service{docs: docs, repo: repo, gen: gen, locker: locker}
}

// All is the result of generating every kind for a document.
type All struct {
	Summary    string                   `json:"summary"`
	Flashcards []documents.Flashcard    `json:"flashcards"`
	Quiz       []documents.QuizQuestion `json:"quiz"`
}

// SelectMode picks how doc reaches the model. Pasted text never uses file
// mode; its summary answers the text as a question.
func SelectMode(doc documents.Document, kind llm.Kind) llm.Mode {
	if doc.IsPastedText() {
		if kind == llm.KindSummary {
			return llm.ModeDirectPrompt
		}
		return llm.ModeText
	}
	verdict := quality.Analyze(doc.ExtractedText)
	if quality.UseFileUpload(verdict, quality.IsImage(doc.MediaType), doc.UseMultimodalFallback) {
		return llm.ModeFile
	}
	return llm.ModeText
}

// Summary returns the cached summary or generates and stores one. The bool
// reports a cache hit.
func (s *Service) Summary(ctx context.Context, id string) (string, bool, error) {
	var summary string
	cached, err := s.cachedOrGenerate(ctx, id, llm.KindSummary,
		func(doc documents.Document) bool {
			summary = doc.Summary
			return strings.TrimSpace(doc.Summary) != ""
		},
		func(ctx context.Context, raw string) error {
			summary = raw
			return s.repo.SetSummary(ctx, id, raw)
		},
	)
	if err != nil {
		return "", false, err
	}
	return summary, cached, nil
}

// Flashcards returns cached flashcards or generates and stores them. With
// more set it always generates a fresh batch and leaves the store untouched.
func (s *Service) Flashcards(ctx context.Context, id string, more bool) ([]documents.Flashcard, bool, error) {
	if more {
		raw, err := s.generateFresh(ctx, id, llm.KindFlashcards)
		if err != nil {
			return nil, false, err
		}
		cards, err := parseFlashcards(raw)
		if err != nil {
			metrics.IncGeneration(string(llm.KindFlashcards), metrics.OutcomeFailed)
			return nil, false, err
		}
		return cards, false, nil
	}

	var cards []documents.Flashcard
	cached, err := s.cachedOrGenerate(ctx, id, llm.KindFlashcards,
		func(doc documents.Document) bool {
			cards = doc.Flashcards
			return len(doc.Flashcards) > 0
		},
		func(ctx context.Context, raw string) error {
			parsed, err := parseFlashcards(raw)
			if err != nil {
				return err
			}
			cards = parsed
			return s.repo.SetFlashcards(ctx, id, parsed)
		},
	)
	if err != nil {
		return nil, false, err
	}
	return cards, cached, nil
}

// Quiz returns the cached quiz or generates and stores one. With more set it
// always generates a fresh batch and leaves the store untouched.
func (s *Service) Quiz(ctx context.Context, id string, more bool) ([]documents.QuizQuestion, bool, error) {
	if more {
		raw, err := s.generateFresh(ctx, id, llm.KindQuiz)
		if err != nil {
			return nil, false, err
		}
		quiz, err := parseQuiz(raw)
		if err != nil {
			metrics.IncGeneration(string(llm.KindQuiz), metrics.OutcomeFailed)
			return nil, false, err
		}
		return quiz, false, nil
	}

	var quiz []documents.QuizQuestion
	cached, err := s.cachedOrGenerate(ctx, id, llm.KindQuiz,
		func(doc documents.Document) bool {
			quiz = doc.Quiz
			return len(doc.Quiz) > 0
		},
		func(ctx context.Context, raw string) error {
			parsed, err := parseQuiz(raw)
			if err != nil {
				return err
			}
			quiz = parsed
			return s.repo.SetQuiz(ctx, id, parsed)
		},
	)
	if err != nil {
		return nil, false, err
	}
	return quiz, cached, nil
}

// GenerateAll fills every kind concurrently through the same cached path as
// the single-kind operations. The first failure cancels the rest.
func (s *Service) GenerateAll(ctx context.Context, id string) (All, error) {
	var out All
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, _, err := s.Summary(gctx, id)
		out.Summary = summary
		return err
	})
	g.Go(func() error {
		cards, _, err := s.Flashcards(gctx, id, false)
		out.Flashcards = cards
		return err
	})
	g.Go(func() error {
		quiz, _, err := s.Quiz(gctx, id, false)
		out.Quiz = quiz
		return err
	})
	if err := g.Wait(); err != nil {
		return All{}, err
	}
	return out, nil
}

// cachedOrGenerate returns the cache when hit reports one. Otherwise it takes
// the per-document lock, checks again, generates and hands the raw output to
// store. The store write outlives client cancellation.
func (s *Service) cachedOrGenerate(
	ctx context.Context,
	id string,
	kind llm.Kind,
	hit func(documents.Document) bool,
	store func(ctx context.Context, raw string) error,
) (bool, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if hit(doc) {
		metrics.IncGeneration(string(kind), metrics.OutcomeCached)
		return true, nil
	}

	unlock, err := s.locker.Lock(ctx, fmt.Sprintf("%s:%s", id, kind))
	if err != nil {
		return false, fmt.Errorf("lock %s %s: %w", kind, id, err)
	}
	defer unlock()

	// Another request may have filled the cache while we waited.
	doc, err = s.docs.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if hit(doc) {
		metrics.IncGeneration(string(kind), metrics.OutcomeCached)
		return true, nil
	}

	raw, err := s.generate(ctx, doc, kind)
	if err != nil {
		return false, err
	}
	if err := store(context.WithoutCancel(ctx), raw); err != nil {
		metrics.IncGeneration(string(kind), metrics.OutcomeFailed)
		return false, err
	}
	metrics.IncGeneration(string(kind), metrics.OutcomeGenerated)
	return false, nil
}

func (s *Service) generateFresh(ctx context.Context, id string, kind llm.Kind) (string, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return "", err
	}
	raw, err := s.generate(ctx, doc, kind)
	if err != nil {
		return "", err
	}
	metrics.IncGeneration(string(kind), metrics.OutcomeGenerated)
	return raw, nil
}

func (s *Service) generate(ctx context.Context, doc documents.Document, kind llm.Kind) (string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "study.generate")
	defer span.End()

	prompt, err := s.buildPrompt(ctx, doc, kind)
	if err != nil {
		metrics.IncGeneration(string(kind), metrics.OutcomeFailed)
		return "", err
	}
	span.SetAttributes(
		attribute.String("document.id", doc.ID),
		attribute.String("study.kind", string(kind)),
		attribute.String("study.mode", string(prompt.Mode)),
	)
	telemetry.Info("study.generate", map[string]any{
		"document_id": doc.ID,
		"kind":        string(kind),
		"mode":        string(prompt.Mode),
		"media_type":  doc.MediaType,
	})

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		metrics.IncGeneration(string(kind), metrics.OutcomeFailed)
		return "", err
	}
	return raw, nil
}

func (s *Service) buildPrompt(ctx context.Context, doc documents.Document, kind llm.Kind) (llm.Prompt, error) {
	mode := SelectMode(doc, kind)
	if mode != llm.ModeFile {
		return llm.BuildPrompt(kind, mode, llm.Payload{Text: doc.ExtractedText})
	}

	data, err := s.docs.FileBytes(ctx, doc)
	if err != nil {
		return llm.Prompt{}, err
	}
	if len(data) == 0 {
		telemetry.Warn("study.reupload_required", map[string]any{
			"document_id": doc.ID,
			"kind":        string(kind),
			"override":    doc.UseMultimodalFallback,
		})
		return llm.Prompt{}, ErrReuploadRequired
	}
	return llm.BuildPrompt(kind, llm.ModeFile, llm.Payload{
		File: &llm.FilePart{MediaType: doc.MediaType, Data: data},
	})
}
