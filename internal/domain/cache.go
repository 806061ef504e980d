package domain

import (
	"sort"
	"time"
)

// SegmentSlice is the cached extraction of one segment across a file's
// response rows.
type SegmentSlice struct {
	Response string             `json:"response"`
	Values   map[string]float64 `json:"values"`
}

// CachedFile tracks, at segment granularity, what has already been loaded
// for one data file within a thread. Invariant: LoadedSegments is always a
// subset of AvailableSegments.
type CachedFile struct {
	ID                string                    `json:"id"`
	Question          string                    `json:"question"`
	Metadata          FileMetadata              `json:"metadata"`
	LoadedSegments    SegmentSet                `json:"loadedSegments"`
	AvailableSegments SegmentSet                `json:"availableSegments"`
	Data              map[string][]SegmentSlice `json:"data"`
}

// ThreadCacheEntry is the per-thread cache record. Created on first write;
// expires after a TTL with no explicit delete needed.
type ThreadCacheEntry struct {
	ThreadID  string       `json:"threadId"`
	Files     []CachedFile `json:"files"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// File returns the cached file with the given ID, or nil.
func (e *ThreadCacheEntry) File(id string) *CachedFile {
	if e == nil {
		return nil
	}
	for i := range e.Files {
		if e.Files[i].ID == id {
			return &e.Files[i]
		}
	}
	return nil
}

// NewCachedFile slices a loaded data file into per-segment form for caching.
// Only the canonical segments present in the file are sliced; loaded records
// which of them this request actually fetched.
func NewCachedFile(f *DataFile, loaded SegmentSet) CachedFile {
	available := f.AvailableSegments()
	loaded = loaded.Clone()
	// loadedSegments must stay within what the file actually carries.
	for seg := range loaded {
		if !available.Has(seg) {
			delete(loaded, seg)
		}
	}
	// The overall baseline is always carried when present.
	if available.Has("overall") {
		loaded.Add("overall")
	}

	data := make(map[string][]SegmentSlice)
	for _, row := range f.Responses {
		for category, values := range row.Data {
			canonical, ok := CanonicalSegment(category)
			if !ok {
				continue
			}
			flat := make(map[string]float64, len(values))
			for k, v := range values {
				flat[k] = v
			}
			data[canonical] = append(data[canonical], SegmentSlice{
				Response: row.Response,
				Values:   flat,
			})
		}
	}

	return CachedFile{
		ID:                f.ID,
		Question:          f.Question,
		Metadata:          f.Metadata,
		LoadedSegments:    loaded,
		AvailableSegments: available,
		Data:              data,
	}
}

// DataFile reconstructs a (possibly partial) data file from the cached
// segment slices, restricted to the requested segments plus the overall
// baseline. Response order follows first appearance across segments, with
// segments visited in sorted order for determinism.
func (cf *CachedFile) DataFile(segments []string) *DataFile {
	keep := NewSegmentSet(segments...)
	keep.Add("overall")

	type rowAcc struct {
		response string
		data     map[string]CategoryValues
	}
	var order []string
	rows := make(map[string]*rowAcc)

	segs := make([]string, 0, len(cf.Data))
	for seg := range cf.Data {
		segs = append(segs, seg)
	}
	sort.Strings(segs)

	for _, seg := range segs {
		// The overall baseline rides along whenever it was sliced; other
		// segments must have been both requested and loaded.
		if seg != "overall" && (!keep.Has(seg) || !cf.LoadedSegments.Has(seg)) {
			continue
		}
		for _, slice := range cf.Data[seg] {
			acc, ok := rows[slice.Response]
			if !ok {
				acc = &rowAcc{
					response: slice.Response,
					data:     make(map[string]CategoryValues),
				}
				rows[slice.Response] = acc
				order = append(order, slice.Response)
			}
			values := make(CategoryValues, len(slice.Values))
			for k, v := range slice.Values {
				values[k] = v
			}
			acc.data[seg] = values
		}
	}

	file := &DataFile{
		ID:       cf.ID,
		Metadata: cf.Metadata,
		Question: cf.Question,
	}
	for _, response := range order {
		acc := rows[response]
		file.Responses = append(file.Responses, ResponseRow{
			Response: acc.response,
			Data:     acc.data,
		})
	}
	return file
}

// Merge folds an incoming cached file into the receiver: segment sets are
// unioned and new segment data is added key-by-key, leaving existing segment
// data untouched unless the incoming file carries the same segment.
func (cf *CachedFile) Merge(incoming CachedFile) {
	if cf.Question == "" {
		cf.Question = incoming.Question
	}
	if cf.Metadata.TopicID == "" {
		cf.Metadata = incoming.Metadata
	}
	if cf.LoadedSegments == nil {
		cf.LoadedSegments = NewSegmentSet()
	}
	if cf.AvailableSegments == nil {
		cf.AvailableSegments = NewSegmentSet()
	}
	cf.LoadedSegments.Union(incoming.LoadedSegments)
	cf.AvailableSegments.Union(incoming.AvailableSegments)
	// Post-merge invariant: loaded never exceeds available.
	cf.AvailableSegments.Union(cf.LoadedSegments)

	if cf.Data == nil {
		cf.Data = make(map[string][]SegmentSlice)
	}
	for seg := range incoming.LoadedSegments {
		if slices, ok := incoming.Data[seg]; ok {
			cf.Data[seg] = slices
		}
	}
}
