package domain

// Query specificity levels.
const (
	SpecificityGeneral  = "general"
	SpecificitySpecific = "specific"
)

// QueryIntent is the parsed intent of a single query. Derived fresh per
// request; never persisted.
type QueryIntent struct {
	Topics       []string `json:"topics"`
	Demographics []string `json:"demographics"`
	Years        []int    `json:"years"`
	Specificity  string   `json:"specificity"`
	IsFollowUp   bool     `json:"is_follow_up"`
}

// EmptyIntent is the fail-open result for unrecognized or unparseable input.
func EmptyIntent() QueryIntent {
	return QueryIntent{
		Topics:       []string{},
		Demographics: []string{},
		Years:        []int{},
		Specificity:  SpecificityGeneral,
	}
}
