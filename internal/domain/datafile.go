package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FileMetadata describes a survey data file.
type FileMetadata struct {
	TopicID          string   `json:"topicId"`
	QuestionID       string   `json:"questionId"`
	Year             int      `json:"year"`
	Comparable       bool     `json:"comparable"`
	UserMessage      string   `json:"userMessage"`
	Keywords         []string `json:"keywords"`
	AvailableMarkets []string `json:"availableMarkets"`
	Segments         []string `json:"segments,omitempty"`
	PrimaryMetric    string   `json:"primaryMetric,omitempty"`
	ValueFormat      string   `json:"valueFormat,omitempty"`
	SortOrder        string   `json:"sortOrder,omitempty"`
}

// CategoryValues holds the recorded fractions for one demographic category of
// a response row, keyed by segment value. Fractions are normalized to 0..1 on
// load; the overall baseline, stored as a bare number in source files, is
// represented under the "overall" key.
type CategoryValues map[string]float64

// UnmarshalJSON accepts the three shapes source files use for a category:
// a bare fraction, a percentage string, or a map of segment value to either.
func (cv *CategoryValues) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		*cv = CategoryValues{}
		return nil
	}

	if trimmed[0] == '{' {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(CategoryValues, len(raw))
		for key, val := range raw {
			f, ok := parseFraction(val)
			if !ok {
				continue
			}
			out[key] = f
		}
		*cv = out
		return nil
	}

	f, ok := parseFraction(data)
	if !ok {
		*cv = CategoryValues{}
		return nil
	}
	*cv = CategoryValues{"overall": f}
	return nil
}

// parseFraction normalizes a raw JSON scalar to a 0..1 fraction. Numbers
// above 1 and percentage strings ("67%") are treated as percentage points.
func parseFraction(raw json.RawMessage) (float64, bool) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if num > 1 {
			return num / 100, true
		}
		return num, true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, false
	}
	str = strings.TrimSpace(str)
	percent := strings.HasSuffix(str, "%")
	str = strings.TrimSuffix(str, "%")
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false
	}
	if percent || f > 1 {
		return f / 100, true
	}
	return f, true
}

// ResponseRow is one answer option of a survey question together with its
// per-category breakdowns.
type ResponseRow struct {
	Response string                    `json:"response"`
	Data     map[string]CategoryValues `json:"data"`
}

// DataFile is a survey data file as loaded from storage. Immutable once
// loaded; may be partially populated (only requested segments present) when
// loaded incrementally.
type DataFile struct {
	ID        string        `json:"id"`
	Metadata  FileMetadata  `json:"metadata"`
	Question  string        `json:"question"`
	Responses []ResponseRow `json:"responses"`
}

// AvailableSegments returns the canonical segments the file carries. The
// metadata segment list takes precedence when present, so a partially
// populated file still reports its full availability; otherwise the response
// data is scanned.
func (f *DataFile) AvailableSegments() SegmentSet {
	out := NewSegmentSet()
	if len(f.Metadata.Segments) > 0 {
		for _, seg := range f.Metadata.Segments {
			if canonical, ok := CanonicalSegment(seg); ok {
				out.Add(canonical)
			}
		}
		return out
	}
	for _, row := range f.Responses {
		for category := range row.Data {
			if canonical, ok := CanonicalSegment(category); ok {
				out.Add(canonical)
			}
		}
	}
	return out
}

// PruneToSegments returns a copy of the file containing only the requested
// canonical segments plus the overall baseline. The copy's metadata records
// the full segment availability so downstream caching knows what a reload
// could still fetch. The receiver is not modified.
func (f *DataFile) PruneToSegments(segments []string) *DataFile {
	keep := NewSegmentSet(segments...)
	keep.Add("overall")

	pruned := &DataFile{
		ID:       f.ID,
		Metadata: f.Metadata,
		Question: f.Question,
	}
	if len(pruned.Metadata.Segments) == 0 {
		pruned.Metadata.Segments = f.AvailableSegments().Values()
	}
	for _, row := range f.Responses {
		data := make(map[string]CategoryValues)
		for category, values := range row.Data {
			canonical, ok := CanonicalSegment(category)
			if !ok || !keep.Has(canonical) {
				continue
			}
			data[category] = values
		}
		pruned.Responses = append(pruned.Responses, ResponseRow{
			Response: row.Response,
			Data:     data,
		})
	}
	return pruned
}
