package domain

import (
	"encoding/json"
	"sort"
)

// CanonicalSegments is the complete list of valid segment types available in
// the data files. Used for validation and segment availability checking.
var CanonicalSegments = []string{
	"overall",
	"region",
	"age",
	"gender",
	"org_size",
	"sector",
	"job_level",
	"relationship_status",
	"education",
	"generation",
	"employment_status",
}

// DefaultSegments are used when a query does not request specific segments.
var DefaultSegments = []string{"region", "age", "gender"}

// categoryAliases maps category names as they appear in source files to
// canonical segment names.
var categoryAliases = map[string]string{
	"country": "region",
	"market":  "region",
}

var canonicalSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(CanonicalSegments))
	for _, s := range CanonicalSegments {
		m[s] = struct{}{}
	}
	return m
}()

// CanonicalSegment translates a source category name to its canonical segment
// name. Returns the canonical name and true, or "" and false when the
// category is not a recognized segment.
func CanonicalSegment(category string) (string, bool) {
	if alias, ok := categoryAliases[category]; ok {
		return alias, true
	}
	if _, ok := canonicalSet[category]; ok {
		return category, true
	}
	return "", false
}

// IsCanonicalSegment reports whether name is a canonical segment type.
func IsCanonicalSegment(name string) bool {
	_, ok := canonicalSet[name]
	return ok
}

// SegmentSet is a set of segment names. On the wire it is serialized as a
// sorted array with no uniqueness guarantee; rehydration dedupes.
type SegmentSet map[string]struct{}

// NewSegmentSet builds a set from the given values.
func NewSegmentSet(values ...string) SegmentSet {
	s := make(SegmentSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts a value into the set.
func (s SegmentSet) Add(value string) {
	s[value] = struct{}{}
}

// Has reports whether value is in the set.
func (s SegmentSet) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Union adds every value of other into s.
func (s SegmentSet) Union(other SegmentSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Subset reports whether every value of s is in other.
func (s SegmentSet) Subset(other SegmentSet) bool {
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Values returns the members sorted for deterministic output.
func (s SegmentSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s SegmentSet) Clone() SegmentSet {
	c := make(SegmentSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// MarshalJSON flattens the set to a sorted array.
func (s SegmentSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON rehydrates an array into a set, deduping entries.
func (s *SegmentSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSegmentSet(values...)
	return nil
}
