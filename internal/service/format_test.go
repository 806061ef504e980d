package service

import (
	"strings"
	"testing"

	"github.com/workpulse/surveychat/internal/domain"
)

func TestFormatPromptBlockDeterministic(t *testing.T) {
	result := domain.FilterResult{
		Stats: []domain.Stat{
			{FileID: "2025_1", Question: "Q1", Response: "Confident", Category: "overall", Value: "overall", Percentage: 81},
			{FileID: "2025_1", Question: "Q1", Response: "Confident", Category: "job_level", Value: "senior", Percentage: 92},
		},
		MissingSegments: []string{"age"},
	}
	caveats := []string{"Attrition data cannot be compared across years."}

	first := FormatPromptBlock(result, caveats)
	second := FormatPromptBlock(result, caveats)
	if first != second {
		t.Error("identical inputs must format identically")
	}

	for _, want := range []string{
		"[2025_1] Q1",
		"Confident:",
		"job_level / senior: 92%",
		"Requested segments with no data: age",
		"- Attrition data cannot be compared across years.",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("block missing %q:\n%s", want, first)
		}
	}
}

func TestFormatPromptBlockEmpty(t *testing.T) {
	block := FormatPromptBlock(domain.FilterResult{}, nil)
	if !strings.Contains(block, "No survey statistics") {
		t.Errorf("empty result block = %q", block)
	}
}
