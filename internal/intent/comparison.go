package intent

import "regexp"

// comparisonPatterns flag queries that set two or more years against each
// other, as opposed to merely mentioning a year.
var comparisonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcompar(?:e|ed|ing|ison)\b`),
	regexp.MustCompile(`(?i)\b(?:vs\.?|versus)\b`),
	regexp.MustCompile(`(?i)\b(?:change[ds]?|changing|shift(?:ed)?|trend(?:s|ing)?)\b`),
	regexp.MustCompile(`(?i)\bover (?:time|the years?)\b`),
	regexp.MustCompile(`(?i)\b(?:year over year|year-over-year|yoy)\b`),
	regexp.MustCompile(`(?i)\bsince (?:last year|20\d{2})\b`),
	regexp.MustCompile(`(?i)\bbetween 20\d{2} and 20\d{2}\b`),
	regexp.MustCompile(`(?i)\b(?:difference|different) (?:from|between|than)\b`),
	regexp.MustCompile(`(?i)\b(?:increase[ds]?|decrease[ds]?|grow(?:n|th)?|declin(?:e|ed|ing))\b`),
}

// IsComparisonQuery reports whether a query asks for a cross-year comparison.
func IsComparisonQuery(query string) bool {
	for _, re := range comparisonPatterns {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}
