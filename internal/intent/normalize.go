package intent

import (
	"regexp"
	"strings"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	// Conversational lead-ins that carry no retrieval signal.
	leadInPattern = regexp.MustCompile(`(?i)^(?:please\s+)?(?:can you\s+|could you\s+)?(?:tell me|show me|i want to know|i'd like to know|what does the data say about)\s+`)
)

// NormalizeQuery reduces a query to a stable cache key: lowercase, punctuation
// stripped, whitespace collapsed, with conversational lead-ins removed so
// phrasings like "can you tell me about AI?" and "about ai" key identically.
func NormalizeQuery(query string) string {
	q := strings.TrimSpace(query)
	q = leadInPattern.ReplaceAllString(q, "")
	q = strings.ToLower(q)
	q = nonWordPattern.ReplaceAllString(q, "")
	q = whitespacePattern.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
