package identify

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/compat"
	"github.com/workpulse/surveychat/internal/intent"
)

const defaultExplanation = "No explanation provided"

// Identifier maps a query to canonical data file IDs. Resolution order:
// exact match against the normalized-query cache, lexical scan of the topic
// mapping, then the external semantic matcher. Whatever the path, the result
// is validated so callers always see well-typed fields.
type Identifier struct {
	loader    *compat.Loader
	matcher   Matcher
	threshold float64
	logger    *zap.Logger

	mu    sync.RWMutex
	cache map[string]MatchResult
}

// NewIdentifier creates a new file identifier
func NewIdentifier(loader *compat.Loader, matcher Matcher, threshold float64, logger *zap.Logger) *Identifier {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Identifier{
		loader:    loader,
		matcher:   matcher,
		threshold: threshold,
		logger:    logger,
		cache:     make(map[string]MatchResult),
	}
}

// Identify resolves a query to file IDs and matched topics.
func (i *Identifier) Identify(ctx context.Context, req MatchRequest) (MatchResult, error) {
	key := intent.NormalizeQuery(req.Query)
	if key != "" {
		i.mu.RLock()
		cached, ok := i.cache[key]
		i.mu.RUnlock()
		if ok {
			i.logger.Debug("file identification cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	if result, ok := i.scanMapping(req.Query); ok {
		result = Normalize(result)
		i.store(key, result)
		return result, nil
	}

	result, err := i.matcher.Match(ctx, req)
	if err != nil {
		i.logger.Warn("semantic matcher failed, returning empty match",
			zap.String("query", req.Query), zap.Error(err))
		return Normalize(MatchResult{Explanation: "Semantic matching was unavailable for this query"}), nil
	}
	result = Normalize(result)
	i.store(key, result)
	return result, nil
}

// Reset clears the normalized-query cache. Used after a mapping refresh.
func (i *Identifier) Reset() {
	i.mu.Lock()
	i.cache = make(map[string]MatchResult)
	i.mu.Unlock()
}

func (i *Identifier) store(key string, result MatchResult) {
	if key == "" {
		return
	}
	i.mu.Lock()
	i.cache[key] = result
	i.mu.Unlock()
}

// scanMapping scores each topic's phrasings and keywords against the query
// and accepts the best topic only when its score clears the confidence
// threshold. Scores are the fraction of a phrasing's words present in the
// query, so short generic phrasings do not dominate.
func (i *Identifier) scanMapping(query string) (MatchResult, bool) {
	mapping, err := i.loader.Mapping()
	if err != nil {
		i.logger.Warn("topic mapping unavailable for lexical scan", zap.Error(err))
		return MatchResult{}, false
	}

	queryWords := wordSet(intent.NormalizeQuery(query))
	if len(queryWords) == 0 {
		return MatchResult{}, false
	}

	bestScore := 0.0
	var bestTopic *compat.Topic
	for _, topic := range mapping.Topics() {
		score := topicScore(topic, queryWords)
		if score > bestScore {
			bestScore = score
			bestTopic = topic
		}
	}
	if bestTopic == nil || bestScore < i.threshold {
		return MatchResult{}, false
	}

	var fileIDs []string
	for _, refs := range bestTopic.Mapping {
		for _, ref := range refs {
			fileIDs = append(fileIDs, ref.File)
		}
	}
	sort.Strings(fileIDs)

	i.logger.Debug("lexical topic match",
		zap.String("topic", bestTopic.ID), zap.Float64("score", bestScore))

	return MatchResult{
		FileIDs:       fileIDs,
		MatchedTopics: []string{bestTopic.ID},
		Explanation:   "Matched topic " + bestTopic.ID + " from its canonical phrasings",
	}, true
}

func topicScore(topic *compat.Topic, queryWords map[string]bool) float64 {
	best := 0.0
	phrasings := make([]string, 0, len(topic.AlternatePhrasings)+1+len(topic.Keywords))
	if topic.CanonicalQuestion != "" {
		phrasings = append(phrasings, topic.CanonicalQuestion)
	}
	phrasings = append(phrasings, topic.AlternatePhrasings...)
	phrasings = append(phrasings, topic.Keywords...)

	for _, phrasing := range phrasings {
		words := wordSet(intent.NormalizeQuery(phrasing))
		if len(words) == 0 {
			continue
		}
		hits := 0
		for w := range words {
			if queryWords[w] {
				hits++
			}
		}
		score := float64(hits) / float64(len(words))
		if score > best {
			best = score
		}
	}
	return best
}

func wordSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}

// Normalize enforces the result contract: file_ids and matched_topics are
// never nil and explanation is never empty, even when the matcher misbehaves.
// Callers building MatchResults by hand should route them through here too.
func Normalize(r MatchResult) MatchResult {
	if r.FileIDs == nil {
		r.FileIDs = []string{}
	}
	if r.MatchedTopics == nil {
		r.MatchedTopics = []string{}
	}
	if strings.TrimSpace(r.Explanation) == "" {
		r.Explanation = defaultExplanation
	}
	return r
}
