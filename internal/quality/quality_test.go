package quality

import (
	"fmt"
	"strings"
	"testing"
)

func distinctWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantEmpty     bool
		wantWatermark bool
		wantLow       bool
		wantWords     int
		wantUnique    int
	}{
		{name: "empty", text: "", wantEmpty: true},
		{name: "whitespace only", text: " \n\t ", wantEmpty: true},
		{name: "repeated word", text: strings.TrimSpace(strings.Repeat("scan ", 11)), wantWatermark: true, wantLow: true, wantWords: 11, wantUnique: 1},
		{name: "sixty distinct words", text: distinctWords(60), wantWords: 60, wantUnique: 60},
		{name: "short text", text: "Photosynthesis converts light into chemical energy.", wantLow: true, wantWords: 6, wantUnique: 6},
		{name: "camscanner marker", text: distinctWords(60) + " Scanned with CamScanner", wantWatermark: true, wantLow: true, wantWords: 63, wantUnique: 63},
		{name: "placeholder", text: "No text extracted (scanned PDF) " + distinctWords(60), wantLow: true, wantWords: 65, wantUnique: 65},
		{name: "few unique many words", text: strings.TrimSpace(strings.Repeat("a b c ", 10)), wantLow: true, wantWords: 30, wantUnique: 3},
		{name: "case folded uniques", text: strings.TrimSpace(strings.Repeat("Page page PAGE ", 2)), wantWatermark: true, wantLow: true, wantWords: 6, wantUnique: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			v := Analyze(tt.text)
			if v.IsEmpty != tt.wantEmpty {
				t.Fatalf("IsEmpty = %v, want %v", v.IsEmpty, tt.wantEmpty)
			}
			if v.HasWatermarkArtifact != tt.wantWatermark {
				t.Fatalf("HasWatermarkArtifact = %v, want %v", v.HasWatermarkArtifact, tt.wantWatermark)
			}
			if v.IsLowQuality != tt.wantLow {
				t.Fatalf("IsLowQuality = %v, want %v", v.IsLowQuality, tt.wantLow)
			}
			if v.WordCount != tt.wantWords || v.UniqueWordCount != tt.wantUnique {
				t.Fatalf("counts = %d/%d, want %d/%d", v.WordCount, v.UniqueWordCount, tt.wantWords, tt.wantUnique)
			}
		})
	}
}

func TestEmptyExcludesOtherFlags(t *testing.T) {
	v := Analyze("   ")
	if !v.IsEmpty || v.IsLowQuality || v.HasWatermarkArtifact {
		t.Fatalf("empty verdict must not carry other flags: %+v", v)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	text := distinctWords(40) + " CamScanner"
	if Analyze(text) != Analyze(text) {
		t.Fatal("expected identical verdicts for identical input")
	}
}

func TestUseFileUpload(t *testing.T) {
	good := Analyze(distinctWords(60))
	if UseFileUpload(good, false, false) {
		t.Fatal("good text should use text mode")
	}
	if !UseFileUpload(good, true, false) {
		t.Fatal("image must force file mode")
	}
	if !UseFileUpload(good, false, true) {
		t.Fatal("override must force file mode")
	}
	if !UseFileUpload(Analyze(""), false, false) {
		t.Fatal("empty text must use file mode")
	}
	if !ShouldUseFileUpload(strings.Repeat("scan ", 11), false, false) {
		t.Fatal("watermark text must use file mode")
	}
}

func TestIsImage(t *testing.T) {
	for mt, want := range map[string]bool{
		"image/png":       true,
		" IMAGE/JPEG ":    true,
		"application/pdf": false,
		"":                false,
	} {
		if got := IsImage(mt); got != want {
			t.Fatalf("IsImage(%q) = %v, want %v", mt, got, want)
		}
	}
}
