package domain

import "time"

// TopicCompatibility describes whether one topic's data can be validly
// compared across survey years.
type TopicCompatibility struct {
	Comparable       bool     `json:"comparable"`
	AvailableYears   []string `json:"available_years"`
	AvailableMarkets []string `json:"available_markets"`
	UserMessage      string   `json:"user_message"`
}

// SegmentCompatibility describes cross-year comparability for one segment
// type.
type SegmentCompatibility struct {
	Comparable       bool     `json:"comparable"`
	ComparableValues []string `json:"comparable_values"`
	UserMessage      string   `json:"user_message"`
}

// CompatibilityError carries a structured, non-throwing failure from the
// assessor so the caller can degrade gracefully.
type CompatibilityError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// CompatibilityMetadata is the full assessment for a set of topics and
// segment types against one version of the canonical mapping.
type CompatibilityMetadata struct {
	IsFullyCompatible    bool                            `json:"is_fully_compatible"`
	TopicCompatibility   map[string]TopicCompatibility   `json:"topic_compatibility"`
	SegmentCompatibility map[string]SegmentCompatibility `json:"segment_compatibility"`
	MappingVersion       string                          `json:"mapping_version"`
	AssessedAt           time.Time                       `json:"assessed_at"`
	Error                *CompatibilityError             `json:"error,omitempty"`
}
