package documents

import "time"

const previewChars = 500

// UploadResponse is returned by both upload endpoints.
type UploadResponse struct {
	Message       string `json:"message"`
	DocumentID    string `json:"documentId"`
	ExtractedText string `json:"extractedText"`
	TextLength    int    `json:"textLength"`
}

// DocumentResponse is the read view of a document. Raw bytes are never returned.
type DocumentResponse struct {
	DocumentID            string         `json:"documentId"`
	FileName              string         `json:"fileName"`
	OriginalName          string         `json:"originalName"`
	MediaType             string         `json:"mediaType"`
	Source                Source         `json:"source"`
	ExtractedText         string         `json:"extractedText"`
	TextLength            int            `json:"textLength"`
	UseMultimodalFallback bool           `json:"useMultimodalFallback"`
	HasFileBytes          bool           `json:"hasFileBytes"`
	Archived              bool           `json:"archived"`
	Summary               string         `json:"summary,omitempty"`
	Flashcards            []Flashcard    `json:"flashcards"`
	Quiz                  []QuizQuestion `json:"quiz"`
	CreatedAt             time.Time      `json:"createdAt"`
}

func toUploadResponse(message string, res UploadResult) UploadResponse {
	return UploadResponse{
		Message:       message,
		DocumentID:    res.Document.ID,
		ExtractedText: preview(res.Text),
		TextLength:    len([]rune(res.Text)),
	}
}

func toResponse(doc Document) DocumentResponse {
	flashcards := doc.Flashcards
	if flashcards == nil {
		flashcards = []Flashcard{}
	}
	quiz := doc.Quiz
	if quiz == nil {
		quiz = []QuizQuestion{}
	}
	return DocumentResponse{
		DocumentID:            doc.ID,
		FileName:              doc.FileName,
		OriginalName:          doc.OriginalName,
		MediaType:             doc.MediaType,
		Source:                doc.Source,
		ExtractedText:         doc.ExtractedText,
		TextLength:            len([]rune(doc.ExtractedText)),
		UseMultimodalFallback: doc.UseMultimodalFallback,
		HasFileBytes:          len(doc.FileBytes) > 0,
		Archived:              doc.StorageKey != "",
		Summary:               doc.Summary,
		Flashcards:            flashcards,
		Quiz:                  quiz,
		CreatedAt:             doc.CreatedAt,
	}
}

// preview keeps the first 500 characters and always appends an ellipsis.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewChars {
		runes = runes[:previewChars]
	}
	return string(runes) + "..."
}
