package intent

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
)

// demographicPatterns maps query phrasings to canonical segment names. Order
// matters only for readability; all patterns are tried.
var demographicPatterns = []struct {
	re      *regexp.Regexp
	segment string
}{
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:age|ages|age group|age groups|generation gap)\b`), "age"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:gender|genders|men|women|male|female)\b`), "gender"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:region|regions|country|countries|market|markets|geography|location)\b`), "region"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:job level|job levels|seniority|senior leaders?|managers vs|individual contributors?)\b`), "job_level"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:org size|organization size|company size|organisation size)\b`), "org_size"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:sector|sectors|industry|industries)\b`), "sector"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:generation|generations|gen z|millennials?|gen x|boomers?)\b`), "generation"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:education|education level|degree)\b`), "education"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:relationship status|marital status)\b`), "relationship_status"},
	{regexp.MustCompile(`(?i)\b(?:by |across |per )?(?:employment status|full.?time|part.?time)\b`), "employment_status"},
}

// topicPatterns maps query keywords to canonical topic IDs.
var topicPatterns = []struct {
	re    *regexp.Regexp
	topic string
}{
	{regexp.MustCompile(`(?i)remote|flexib|hybrid|work from home|wfh`), "Work_Flexibility"},
	{regexp.MustCompile(`(?i)\bai\b|artificial intelligence`), "AI_Attitudes"},
	{regexp.MustCompile(`(?i)leav(?:e|ing)|attrition|quit`), "Attrition_Factors"},
	{regexp.MustCompile(`(?i)attract`), "Attraction_Factors"},
	{regexp.MustCompile(`(?i)retention|staying|stay at`), "Retention_Factors"},
	{regexp.MustCompile(`(?i)leadership|leaders?\b|managers?\b`), "Leadership_Confidence"},
	{regexp.MustCompile(`(?i)intention to leave|plan(?:ning)? to leave`), "Intention_to_Leave"},
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

var followUpPrefixes = []string{
	"what about",
	"how about",
	"and by",
	"and for",
	"what else",
	"same for",
}

// Parser extracts structured query intent with lightweight pattern matching.
// It never fails: unrecognizable queries produce an empty, general intent.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new intent parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse extracts topics, demographics, years, specificity and follow-up
// status from a query. History is prior user queries in the same thread,
// oldest first; follow-up detection only applies when it is non-empty.
func (p *Parser) Parse(query string, history []string) domain.QueryIntent {
	intent := domain.EmptyIntent()
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return intent
	}
	lower := strings.ToLower(trimmed)

	seen := map[string]bool{}
	for _, dp := range demographicPatterns {
		if dp.re.MatchString(lower) && !seen[dp.segment] {
			seen[dp.segment] = true
			intent.Demographics = append(intent.Demographics, dp.segment)
		}
	}

	seenTopic := map[string]bool{}
	for _, tp := range topicPatterns {
		if tp.re.MatchString(lower) && !seenTopic[tp.topic] {
			seenTopic[tp.topic] = true
			intent.Topics = append(intent.Topics, tp.topic)
		}
	}

	seenYear := map[int]bool{}
	for _, m := range yearPattern.FindAllString(lower, -1) {
		year, err := strconv.Atoi(m)
		if err != nil || seenYear[year] {
			continue
		}
		seenYear[year] = true
		intent.Years = append(intent.Years, year)
	}

	// A query is specific when it pins down a topic or a demographic;
	// naming a year alone does not make it specific.
	if len(intent.Demographics) > 0 || len(intent.Topics) > 0 {
		intent.Specificity = domain.SpecificitySpecific
	}

	intent.IsFollowUp = p.isFollowUp(lower, intent, history)

	p.logger.Debug("parsed query intent",
		zap.Strings("topics", intent.Topics),
		zap.Strings("demographics", intent.Demographics),
		zap.Ints("years", intent.Years),
		zap.String("specificity", intent.Specificity),
		zap.Bool("is_follow_up", intent.IsFollowUp))

	return intent
}

func (p *Parser) isFollowUp(lower string, intent domain.QueryIntent, history []string) bool {
	if len(history) == 0 {
		return false
	}
	for _, prefix := range followUpPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	words := strings.Fields(lower)
	if len(words) <= 6 && len(words) > 0 {
		return true
	}
	// "how does that split by gender?" style: interrogative plus a
	// demographic but no topic of its own.
	if len(intent.Demographics) > 0 && len(intent.Topics) == 0 {
		for _, w := range []string{"what", "how", "which", "who"} {
			if strings.HasPrefix(lower, w) {
				return true
			}
		}
	}
	return false
}
