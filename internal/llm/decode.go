package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// arrayPattern is greedy: it spans from the first '[' to the last ']'.
var arrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

// DecodeArray extracts the JSON array embedded in raw model output (which may
// be wrapped in prose or code fences) and decodes it into out. Without a
// bracketed span the whole text is decoded.
func DecodeArray(raw string, out any) error {
	candidate := arrayPattern.FindString(raw)
	if candidate == "" {
		candidate = strings.TrimSpace(raw)
	}
	if err := json.Unmarshal([]byte(candidate), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}
