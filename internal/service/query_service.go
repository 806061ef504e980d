package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/compat"
	"github.com/workpulse/surveychat/internal/domain"
	"github.com/workpulse/surveychat/internal/filter"
	"github.com/workpulse/surveychat/internal/identify"
	"github.com/workpulse/surveychat/internal/intent"
	"github.com/workpulse/surveychat/internal/repository"
)

// Terminal states of a query run.
const (
	StatusSuccess        = "success"
	StatusEarlyReturn    = "early_return"
	StatusPartialFailure = "partial_failure"
)

// currentSurveyYear is the year whose files answer single-year queries;
// prior-year files are only pulled in for comparisons or when a year is
// named.
const currentSurveyYear = 2025

// QueryRequest is one retrieval request against a thread.
type QueryRequest struct {
	ThreadID         string
	Query            string
	Context          string
	History          []string
	PreviousQuery    string
	PreviousResponse string
}

// QueryResult is the assembled outcome of a pipeline run.
type QueryResult struct {
	Status        string                       `json:"status"`
	Intent        domain.QueryIntent           `json:"intent"`
	FileIDs       []string                     `json:"file_ids"`
	MatchedTopics []string                     `json:"matched_topics"`
	Explanation   string                       `json:"explanation"`
	Filter        domain.FilterResult          `json:"filter"`
	Compatibility domain.CompatibilityMetadata `json:"compatibility"`
	Caveats       []string                     `json:"caveats"`
	CacheStatus   string                       `json:"cache_status"`
	PromptBlock   string                       `json:"prompt_block"`
	FailedFileIDs []string                     `json:"failed_file_ids,omitempty"`
}

// QueryProcessor composes the retrieval pipeline: intent parsing, file
// identification, cache reconciliation, segment loading, filtering, and
// compatibility assessment.
type QueryProcessor struct {
	parser     *intent.Parser
	identifier *identify.Identifier
	cache      *repository.ThreadCacheRepository
	files      *repository.FileRepository
	starters   *repository.StarterRepository
	filter     *filter.Processor
	assessor   *compat.Assessor
	logger     *zap.Logger
}

// NewQueryProcessor creates a new query processor
func NewQueryProcessor(
	parser *intent.Parser,
	identifier *identify.Identifier,
	cache *repository.ThreadCacheRepository,
	files *repository.FileRepository,
	starters *repository.StarterRepository,
	filterProc *filter.Processor,
	assessor *compat.Assessor,
	logger *zap.Logger,
) *QueryProcessor {
	return &QueryProcessor{
		parser:     parser,
		identifier: identifier,
		cache:      cache,
		files:      files,
		starters:   starters,
		filter:     filterProc,
		assessor:   assessor,
		logger:     logger,
	}
}

// Process runs the full pipeline for one query. Failed file loads never fail
// the run: the result proceeds on the subset that loaded, flagged as a
// partial failure.
func (p *QueryProcessor) Process(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	parsed := p.parser.Parse(req.Query, req.History)

	if strings.TrimSpace(req.Query) == "" {
		return &QueryResult{Status: StatusEarlyReturn, Intent: parsed}, nil
	}

	match, starter := p.identifyFiles(ctx, req, parsed)

	isComparison := intent.IsComparisonQuery(req.Query)
	fileIDs := match.FileIDs
	if starter == nil {
		// Starter file sets are curated and may span years on purpose.
		fileIDs = p.applyYearPolicy(fileIDs, parsed, isComparison)
	}

	var caveats []string
	if isComparison {
		outcome := p.assessor.FilterIncomparableFiles(fileIDs, true)
		fileIDs = outcome.FilteredFileIDs
		topicIDs := make([]string, 0, len(outcome.IncomparableTopicMessages))
		for topicID := range outcome.IncomparableTopicMessages {
			topicIDs = append(topicIDs, topicID)
		}
		sort.Strings(topicIDs)
		for _, topicID := range topicIDs {
			caveats = append(caveats, outcome.IncomparableTopicMessages[topicID])
		}
	}

	segments := parsed.Demographics
	if len(segments) == 0 {
		segments = domain.DefaultSegments
	}
	if starter != nil {
		segments = starter.SegmentList()
	}

	files, cacheStatus, failed := p.loadFiles(ctx, req.ThreadID, fileIDs, segments)

	var filterResult domain.FilterResult
	if parsed.Specificity == domain.SpecificityGeneral && starter == nil {
		filterResult = p.filter.GetBaseData(files)
	} else {
		filterResult = p.filter.FilterDataBySegments(files, segments)
	}

	compatMeta := p.assessor.Assess(match.MatchedTopics, segments)
	if compatMeta.Error != nil {
		caveats = append(caveats, "Cross-year comparability could not be verified for this answer.")
	}

	p.writeBack(req.ThreadID, files, segments)

	result := &QueryResult{
		Status:        StatusSuccess,
		Intent:        parsed,
		FileIDs:       fileIDs,
		MatchedTopics: match.MatchedTopics,
		Explanation:   match.Explanation,
		Filter:        filterResult,
		Compatibility: compatMeta,
		Caveats:       caveats,
		CacheStatus:   cacheStatus,
		FailedFileIDs: failed,
	}
	if len(failed) > 0 {
		result.Status = StatusPartialFailure
	}
	result.PromptBlock = FormatPromptBlock(filterResult, caveats)

	p.logger.Info("query processed",
		zap.String("thread_id", req.ThreadID),
		zap.String("status", result.Status),
		zap.Int("files", len(files)),
		zap.Int("stats", len(filterResult.Stats)),
		zap.String("cache_status", cacheStatus))

	return result, nil
}

// identifyFiles resolves the query to file IDs: starters short-circuit to
// precompiled definitions, follow-ups reuse the thread's cached IDs, and
// everything else goes through the identifier. The matched starter rides
// along so later stages never look it up again.
func (p *QueryProcessor) identifyFiles(ctx context.Context, req QueryRequest, parsed domain.QueryIntent) (identify.MatchResult, *repository.StarterQuestion) {
	if intent.IsStarterQuestion(req.Query) {
		if sq, ok := p.starters.Lookup(req.Query); ok {
			p.logger.Debug("starter question matched", zap.String("code", sq.Code))
			return identify.Normalize(identify.MatchResult{
				FileIDs:     sq.FileIDs,
				Explanation: "Precompiled starter question",
			}), &sq
		}
	}

	if parsed.IsFollowUp {
		if cached := p.cache.CachedFileIDs(req.ThreadID); len(cached) > 0 {
			p.logger.Debug("follow-up reusing cached file ids",
				zap.String("thread_id", req.ThreadID), zap.Int("count", len(cached)))
			return identify.Normalize(identify.MatchResult{
				FileIDs:     cached,
				Explanation: "Follow-up query; reusing files from the previous turn",
			}), nil
		}
	}

	match, err := p.identifier.Identify(ctx, identify.MatchRequest{
		Query:            req.Query,
		Context:          req.Context,
		IsFollowUp:       parsed.IsFollowUp,
		PreviousQuery:    req.PreviousQuery,
		PreviousResponse: req.PreviousResponse,
	})
	if err != nil {
		p.logger.Warn("file identification failed", zap.Error(err))
		return identify.Normalize(identify.MatchResult{Explanation: "Identification unavailable"}), nil
	}
	return match, nil
}

// applyYearPolicy drops prior-year files from non-comparison queries unless
// the query names a year explicitly.
func (p *QueryProcessor) applyYearPolicy(fileIDs []string, parsed domain.QueryIntent, isComparison bool) []string {
	if isComparison || len(parsed.Years) > 0 {
		return fileIDs
	}
	var kept []string
	for _, id := range fileIDs {
		if year, ok := fileYear(id); ok && year != currentSurveyYear {
			p.logger.Debug("dropping prior-year file from single-year query",
				zap.String("file_id", id), zap.Int("year", year))
			continue
		}
		kept = append(kept, id)
	}
	return kept
}

// loadFiles reconciles the thread cache against the requested segments and
// loads only what is missing, merging cached and fresh data.
func (p *QueryProcessor) loadFiles(ctx context.Context, threadID string, fileIDs, segments []string) (files []*domain.DataFile, cacheStatus string, failed []string) {
	// A read failure is a miss; entry stays nil and everything reloads.
	entry, _ := p.cache.Get(threadID)

	requested := domain.NewSegmentSet(segments...)

	var toLoad []string
	hits := 0
	for _, id := range fileIDs {
		cached := entry.File(id)
		if cached != nil && requestedCovered(cached, requested) {
			files = append(files, cached.DataFile(segments))
			hits++
			continue
		}
		toLoad = append(toLoad, id)
	}

	switch {
	case hits == len(fileIDs) && len(fileIDs) > 0:
		cacheStatus = "hit"
	case hits > 0:
		cacheStatus = "partial"
	default:
		cacheStatus = "miss"
	}

	if len(toLoad) == 0 {
		return files, cacheStatus, nil
	}

	loaded, failedIDs, err := p.files.LoadSegments(ctx, toLoad, segments)
	if err != nil {
		p.logger.Error("segment load failed", zap.Error(err))
		return files, cacheStatus, toLoad
	}
	files = append(files, loaded...)
	return files, cacheStatus, failedIDs
}

// writeBack merges the served files into the thread cache. Write failures
// are logged and absorbed; the result already in hand is unaffected.
func (p *QueryProcessor) writeBack(threadID string, files []*domain.DataFile, segments []string) {
	if len(files) == 0 {
		return
	}
	loaded := domain.NewSegmentSet(segments...)
	incoming := make([]domain.CachedFile, 0, len(files))
	for _, f := range files {
		incoming = append(incoming, domain.NewCachedFile(f, loaded))
	}
	if err := p.cache.Update(threadID, incoming); err != nil {
		p.logger.Warn("thread cache write failed",
			zap.String("thread_id", threadID), zap.Error(err))
	}
}

// requestedCovered reports whether the cached file already holds every
// requested segment it could hold.
func requestedCovered(cached *domain.CachedFile, requested domain.SegmentSet) bool {
	for seg := range requested {
		if cached.AvailableSegments.Has(seg) && !cached.LoadedSegments.Has(seg) {
			return false
		}
	}
	return true
}

func fileYear(fileID string) (int, bool) {
	if len(fileID) < 5 || fileID[4] != '_' {
		return 0, false
	}
	year, err := strconv.Atoi(fileID[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}
