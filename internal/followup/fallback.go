package followup

import "fmt"

// fallbackSnippetLimit is the longest answer excerpt embedded in a
// fallback follow-up before truncation.
const fallbackSnippetLimit = 120

// FallbackQuestion builds the deterministic follow-up used when the
// decision model is unavailable or returns an empty question. The answer
// is embedded verbatim up to 120 characters, then truncated with an
// ellipsis.
func FallbackQuestion(question, answer string) string {
	snippet := answer
	if runes := []rune(answer); len(runes) > fallbackSnippetLimit {
		snippet = string(runes[:fallbackSnippetLimit-3]) + "..."
	}
	return fmt.Sprintf("You mentioned '%s' when asked '%s'. Could you share a bit more detail?", snippet, question)
}
