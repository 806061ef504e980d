package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCanonicalSegment(t *testing.T) {
	tests := []struct {
		category string
		want     string
		ok       bool
	}{
		{"age", "age", true},
		{"country", "region", true},
		{"market", "region", true},
		{"region", "region", true},
		{"overall", "overall", true},
		{"job_level", "job_level", true},
		{"favorite_color", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := CanonicalSegment(tt.category)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CanonicalSegment(%q) = (%q, %v), want (%q, %v)",
				tt.category, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSegmentSetUnion(t *testing.T) {
	a := NewSegmentSet("age", "gender")
	b := NewSegmentSet("gender", "region")

	a.Union(b)

	want := []string{"age", "gender", "region"}
	if got := a.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("Union values = %v, want %v", got, want)
	}

	// Union is idempotent.
	a.Union(b)
	if got := a.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("repeated Union values = %v, want %v", got, want)
	}
}

func TestSegmentSetSubset(t *testing.T) {
	loaded := NewSegmentSet("age")
	available := NewSegmentSet("age", "gender")

	if !loaded.Subset(available) {
		t.Error("expected {age} to be a subset of {age, gender}")
	}
	if available.Subset(loaded) {
		t.Error("expected {age, gender} not to be a subset of {age}")
	}
}

func TestSegmentSetJSONRoundTrip(t *testing.T) {
	s := NewSegmentSet("region", "age")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `["age","region"]` {
		t.Errorf("marshaled = %s, want sorted array", data)
	}

	var back SegmentSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Values(), s.Values()) {
		t.Errorf("round trip = %v, want %v", back.Values(), s.Values())
	}
}

func TestSegmentSetUnmarshalDedupes(t *testing.T) {
	// Wire arrays carry no uniqueness guarantee.
	var s SegmentSet
	if err := json.Unmarshal([]byte(`["age","age","gender"]`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(s) != 2 {
		t.Errorf("deduped set size = %d, want 2", len(s))
	}
}
