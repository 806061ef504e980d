package compat

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
)

// comparableByDefault are the segment types whose methodology held steady
// across survey years.
var comparableByDefault = map[string]bool{
	"age":                 true,
	"gender":              true,
	"sector":              true,
	"org_size":            true,
	"job_level":           true,
	"relationship_status": true,
	"education":           true,
	"generation":          true,
	"employment_status":   true,
}

const unknownSegmentMessage = "This demographic was not explicitly validated for cross-year comparison; treat year-over-year differences with caution."

// FilterOutcome is the result of removing files whose topics cannot be
// compared across years.
type FilterOutcome struct {
	FilteredFileIDs           []string          `json:"filtered_file_ids"`
	IncomparableTopicMessages map[string]string `json:"incomparable_topic_messages"`
}

// Assessor computes cross-year comparability for topics and segment types
// against the canonical mapping.
type Assessor struct {
	loader *Loader
	logger *zap.Logger
}

// NewAssessor creates a new compatibility assessor
func NewAssessor(loader *Loader, logger *zap.Logger) *Assessor {
	return &Assessor{loader: loader, logger: logger}
}

// Assess evaluates the given topics and segment types. A mapping load failure
// does not raise: it yields a conservative result with IsFullyCompatible
// false and a structured TECHNICAL error, so callers can still proceed
// without cross-year comparison.
func (a *Assessor) Assess(topicIDs, segmentTypes []string) domain.CompatibilityMetadata {
	meta := domain.CompatibilityMetadata{
		IsFullyCompatible:    true,
		TopicCompatibility:   make(map[string]domain.TopicCompatibility),
		SegmentCompatibility: make(map[string]domain.SegmentCompatibility),
		AssessedAt:           time.Now(),
	}

	mapping, err := a.loader.Mapping()
	if err != nil {
		a.logger.Error("compatibility mapping unavailable", zap.Error(err))
		meta.IsFullyCompatible = false
		meta.Error = &domain.CompatibilityError{
			Type:    "TECHNICAL",
			Message: "compatibility mapping could not be loaded",
			Details: err.Error(),
		}
		return meta
	}
	meta.MappingVersion = mapping.Metadata.Version

	for _, topicID := range topicIDs {
		topic, found := mapping.FindTopic(topicID)
		if !found {
			meta.TopicCompatibility[topicID] = domain.TopicCompatibility{
				Comparable:  false,
				UserMessage: "This topic is not in the canonical mapping; cross-year comparison is unavailable.",
			}
			meta.IsFullyCompatible = false
			continue
		}

		years := topic.AvailableYears()
		yearStrs := make([]string, len(years))
		for i, y := range years {
			yearStrs[i] = strconv.Itoa(y)
		}
		meta.TopicCompatibility[topicID] = domain.TopicCompatibility{
			Comparable:       topic.Comparable,
			AvailableYears:   yearStrs,
			AvailableMarkets: topic.AvailableMarkets,
			UserMessage:      topic.UserMessage,
		}
		// A single-year topic cannot produce an invalid comparison, so it
		// does not veto overall compatibility.
		if !topic.Comparable && len(years) > 1 {
			meta.IsFullyCompatible = false
		}
	}

	for _, segType := range segmentTypes {
		canonical := segType
		if c, ok := domain.CanonicalSegment(segType); ok {
			canonical = c
		}
		switch {
		case canonical == "region":
			markets := mapping.DataAccess.ComparableMarkets
			sc := domain.SegmentCompatibility{
				Comparable:       len(markets) > 0,
				ComparableValues: markets,
			}
			if !sc.Comparable {
				sc.UserMessage = "No markets were surveyed in all years; regional results cannot be compared across years."
				meta.IsFullyCompatible = false
			}
			meta.SegmentCompatibility[segType] = sc
		case comparableByDefault[canonical]:
			meta.SegmentCompatibility[segType] = domain.SegmentCompatibility{Comparable: true}
		default:
			meta.SegmentCompatibility[segType] = domain.SegmentCompatibility{
				Comparable:  true,
				UserMessage: unknownSegmentMessage,
			}
		}
	}

	return meta
}

// FilterIncomparableFiles removes files whose topic is flagged non-comparable
// from a mixed-year comparison. A no-op unless the query is a comparison and
// the file set spans more than one year; when both hold, every file of a
// non-comparable topic is removed, not just the overlapping year, and the
// topic's user message is surfaced.
func (a *Assessor) FilterIncomparableFiles(fileIDs []string, isComparisonQuery bool) FilterOutcome {
	out := FilterOutcome{
		FilteredFileIDs:           fileIDs,
		IncomparableTopicMessages: map[string]string{},
	}
	if !isComparisonQuery || len(fileIDs) == 0 {
		return out
	}

	mapping, err := a.loader.Mapping()
	if err != nil {
		a.logger.Error("compatibility mapping unavailable, skipping filter", zap.Error(err))
		return out
	}

	type fileInfo struct {
		topicID string
		year    int
	}
	infos := make(map[string]fileInfo, len(fileIDs))
	years := map[int]bool{}
	for _, id := range fileIDs {
		topicID, year, _ := mapping.TopicForFile(id)
		infos[id] = fileInfo{topicID: topicID, year: year}
		if year != 0 {
			years[year] = true
		}
	}
	if len(years) <= 1 {
		return out
	}

	var kept []string
	for _, id := range fileIDs {
		info := infos[id]
		topic, found := mapping.FindTopic(info.topicID)
		if !found || topic.Comparable {
			kept = append(kept, id)
			continue
		}
		msg := topic.UserMessage
		if msg == "" {
			msg = "This topic's methodology changed between years and cannot be compared directly."
		}
		out.IncomparableTopicMessages[topic.ID] = msg
		a.logger.Info("removed incomparable file from comparison",
			zap.String("file_id", id), zap.String("topic_id", topic.ID))
	}
	out.FilteredFileIDs = kept
	if out.FilteredFileIDs == nil {
		out.FilteredFileIDs = []string{}
	}
	return out
}
