package filter

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
)

// Processor filters loaded data files down to requested demographic segments,
// producing flat statistic records. Absent segments are reported, never
// raised.
type Processor struct {
	logger *zap.Logger
}

// NewProcessor creates a new segment filter
func NewProcessor(logger *zap.Logger) *Processor {
	return &Processor{logger: logger}
}

// FilterDataBySegments emits a stat record for every value of every requested
// canonical segment present in the files, plus the overall baseline
// unconditionally. FoundSegments covers requested segments only; the overall
// baseline does not count toward it.
func (p *Processor) FilterDataBySegments(files []*domain.DataFile, requestedSegments []string) domain.FilterResult {
	requested := domain.NewSegmentSet()
	for _, seg := range requestedSegments {
		if canonical, ok := domain.CanonicalSegment(seg); ok {
			requested.Add(canonical)
			continue
		}
		// Unrecognized segment names stay in the requested set so their
		// absence is reported, never silently dropped.
		requested.Add(seg)
	}

	found := domain.NewSegmentSet()
	result := domain.FilterResult{
		AvailableSegmentsByFile: make(map[string][]string),
	}

	for _, file := range files {
		if file == nil {
			continue
		}
		result.FilteredData = append(result.FilteredData, file)
		result.AvailableSegmentsByFile[file.ID] = file.AvailableSegments().Values()

		for _, row := range file.Responses {
			categories := make([]string, 0, len(row.Data))
			for category := range row.Data {
				categories = append(categories, category)
			}
			sort.Strings(categories)

			for _, category := range categories {
				canonical, ok := domain.CanonicalSegment(category)
				if !ok {
					continue
				}
				overall := canonical == "overall"
				if !overall && !requested.Has(canonical) {
					continue
				}
				if requested.Has(canonical) {
					found.Add(canonical)
				}

				values := row.Data[category]
				keys := make([]string, 0, len(values))
				for k := range values {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, value := range keys {
					result.Stats = append(result.Stats, domain.Stat{
						FileID:     file.ID,
						Question:   file.Question,
						Response:   row.Response,
						Category:   canonical,
						Value:      value,
						Percentage: toPercentage(values[value]),
					})
				}
			}
		}
	}

	result.FoundSegments = found.Values()
	result.MissingSegments = missing(requested, found)
	result.Summary = fmt.Sprintf("%d statistics across %d files; segments found: %d, missing: %d",
		len(result.Stats), len(files), len(result.FoundSegments), len(result.MissingSegments))

	if len(result.MissingSegments) > 0 {
		p.logger.Info("requested segments absent from loaded files",
			zap.Strings("missing", result.MissingSegments))
	}
	return result
}

// GetBaseData returns only overall-baseline statistics. Used for general
// queries to bound prompt size.
func (p *Processor) GetBaseData(files []*domain.DataFile) domain.FilterResult {
	return p.FilterDataBySegments(files, nil)
}

func missing(requested, found domain.SegmentSet) []string {
	var out []string
	for _, seg := range requested.Values() {
		if !found.Has(seg) {
			out = append(out, seg)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func toPercentage(fraction float64) int {
	return int(math.Round(fraction * 100))
}
