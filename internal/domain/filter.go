package domain

import "fmt"

// Stat is one flat statistic record emitted by segment filtering. Values are
// never fabricated: every record corresponds to a fraction present in a
// source file.
type Stat struct {
	FileID     string `json:"file_id"`
	Question   string `json:"question"`
	Response   string `json:"response"`
	Category   string `json:"category"`
	Value      string `json:"value"`
	Percentage int    `json:"percentage"`
}

// Formatted renders the percentage for prompt assembly.
func (s Stat) Formatted() string {
	return fmt.Sprintf("%d%%", s.Percentage)
}

// FilterResult is the outcome of filtering loaded files down to the
// requested segments. Absence of a segment is reported via MissingSegments,
// never as an error.
type FilterResult struct {
	FilteredData            []*DataFile         `json:"filtered_data,omitempty"`
	Stats                   []Stat              `json:"stats"`
	FoundSegments           []string            `json:"found_segments"`
	MissingSegments         []string            `json:"missing_segments"`
	AvailableSegmentsByFile map[string][]string `json:"available_segments_by_file"`
	Summary                 string              `json:"summary"`
}
