// Package quality decides whether extracted text is good enough to send to
// the model or whether the raw file should be sent instead.
package quality

import (
	"strings"
)

// Verdict summarizes extracted text.
type Verdict struct {
	IsEmpty              bool
	HasWatermarkArtifact bool
	IsLowQuality         bool
	WordCount            int
	UniqueWordCount      int
	TextLength           int
}

const (
	minWords       = 50
	minUniqueWords = 5
)

var watermarkMarkers = []string{"camscanner", "scanner"}

// Analyze classifies text. It never fails and has no side effects.
func Analyze(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Verdict{IsEmpty: true}
	}

	words := strings.Fields(trimmed)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}

	lower := strings.ToLower(trimmed)
	wordCount := len(words)
	uniqueCount := len(unique)

	watermark := uniqueCount == 1 && wordCount > 5
	for _, marker := range watermarkMarkers {
		if strings.Contains(lower, marker) {
			watermark = true
			break
		}
	}

	lowQuality := wordCount < minWords ||
		uniqueCount < minUniqueWords ||
		(uniqueCount == 1 && wordCount > 10) ||
		(uniqueCount <= 3 && wordCount > 20) ||
		watermark ||
		strings.Contains(trimmed, "No text extracted")

	return Verdict{
		HasWatermarkArtifact: watermark,
		IsLowQuality:         lowQuality,
		WordCount:            wordCount,
		UniqueWordCount:      uniqueCount,
		TextLength:           len([]rune(trimmed)),
	}
}

// UseFileUpload reports whether generation should send the raw file instead of text.
func UseFileUpload(v Verdict, isImage, override bool) bool {
	return isImage || override || v.IsEmpty || v.IsLowQuality
}

// ShouldUseFileUpload analyzes text and applies UseFileUpload.
func ShouldUseFileUpload(text string, isImage, override bool) bool {
	return UseFileUpload(Analyze(text), isImage, override)
}

// IsImage reports whether mediaType is an image/* type.
func IsImage(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	return strings.HasPrefix(mt, "image/")
}
