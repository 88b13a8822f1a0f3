package study

import (
	"fmt"
	"strings"

	"study-backend/internal/documents"
	"study-backend/internal/llm"
	"study-backend/internal/shared/telemetry"
)

const quizOptions = 4

// parseFlashcards decodes the model's flashcard array. Cards missing a
// question or answer are dropped; an empty result is invalid output.
func parseFlashcards(raw string) ([]documents.Flashcard, error) {
	var decoded []documents.Flashcard
	if err := llm.DecodeArray(raw, &decoded); err != nil {
		return nil, err
	}
	cards := make([]documents.Flashcard, 0, len(decoded))
	for _, card := range decoded {
		card.Question = strings.TrimSpace(card.Question)
		card.Answer = strings.TrimSpace(card.Answer)
		if card.Question == "" || card.Answer == "" {
			continue
		}
		cards = append(cards, card)
	}
	if dropped := len(decoded) - len(cards); dropped > 0 {
		telemetry.Warn("study.flashcards_dropped", map[string]any{
			"received": len(decoded),
			"kept":     len(cards),
			"dropped":  dropped,
		})
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards in response", llm.ErrInvalidOutput)
	}
	return cards, nil
}

// parseQuiz decodes the model's quiz array. Questions without exactly four
// options or with an out-of-range correct answer are dropped.
func parseQuiz(raw string) ([]documents.QuizQuestion, error) {
	var decoded []documents.QuizQuestion
	if err := llm.DecodeArray(raw, &decoded); err != nil {
		return nil, err
	}
	quiz := make([]documents.QuizQuestion, 0, len(decoded))
	for _, q := range decoded {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) != quizOptions {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= quizOptions {
			continue
		}
		q.Explanation = strings.TrimSpace(q.Explanation)
		quiz = append(quiz, q)
	}
	if dropped := len(decoded) - len(quiz); dropped > 0 {
		telemetry.Warn("study.quiz_items_dropped", map[string]any{
			"received": len(decoded),
			"kept":     len(quiz),
			"dropped":  dropped,
		})
	}
	if len(quiz) == 0 {
		return nil, fmt.Errorf("%w: no valid quiz questions in response", llm.ErrInvalidOutput)
	}
	return quiz, nil
}
