package intent

import (
	"regexp"
	"strings"
)

var (
	starterCodePattern = regexp.MustCompile(`(?i)^sq\d+$`)

	starterPhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:top|key|main) (?:findings|insights|takeaways)`),
		regexp.MustCompile(`(?i)^(?:what are the )?(?:headline|overall) (?:results|numbers)`),
		regexp.MustCompile(`(?i)^(?:give me an? )?overview`),
		regexp.MustCompile(`(?i)^summar(?:y|ize|ise)`),
	}
)

// IsStarterQuestion reports whether a query is one of the canned starter
// questions served from precompiled data: an SQ code, a known starter
// phrasing, or a very short generic prompt.
func IsStarterQuestion(query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return false
	}
	if starterCodePattern.MatchString(q) {
		return true
	}
	for _, re := range starterPhrasePatterns {
		if re.MatchString(q) {
			return true
		}
	}
	if len(q) < 15 && len(strings.Fields(q)) < 5 {
		return true
	}
	return false
}

// StarterCode extracts the SQ code from a starter question, or "" when the
// query is not a coded starter.
func StarterCode(query string) string {
	q := strings.TrimSpace(query)
	if starterCodePattern.MatchString(q) {
		return strings.ToUpper(q)
	}
	return ""
}
