package documents

import "time"

// NoTextPlaceholder stands in for extracted text when extraction yielded nothing.
const NoTextPlaceholder = "No text extracted (scanned PDF)"

// TextDocumentName is the original name recorded for pasted text.
const TextDocumentName = "Text Document"

// Source records how a document entered the system.
type Source string

const (
	SourceFile Source = "file"
	SourceText Source = "text"
)

// Document is one uploaded file or pasted text plus its cached study material.
type Document struct {
	ID           string
	FileName     string
	OriginalName string
	MediaType    string
	Source       Source

	// ExtractedText is never empty; see NoTextPlaceholder.
	ExtractedText string
	// FileBytes is kept only when generation must fall back to the raw file.
	FileBytes  []byte
	StorageKey string
	// UseMultimodalFallback forces file mode regardless of text quality.
	UseMultimodalFallback bool

	Summary    string
	Flashcards []Flashcard
	Quiz       []QuizQuestion

	CreatedAt time.Time
}

// Flashcard is a question/answer pair.
type Flashcard struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// QuizQuestion is a four-option multiple choice question.
type QuizQuestion struct {
	Question      string   `json:"question" bson:"question"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer int      `json:"correctAnswer" bson:"correctAnswer"`
	Explanation   string   `json:"explanation" bson:"explanation"`
}

// IsPastedText reports whether the document came from pasted text.
func (d Document) IsPastedText() bool {
	return d.Source == SourceText || (d.Source == "" && d.OriginalName == TextDocumentName)
}
