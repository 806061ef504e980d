package intent

import (
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
)

func TestParseFollowUpWithDemographic(t *testing.T) {
	p := NewParser(zap.NewNop())

	got := p.Parse("What about by age?", []string{"How do people feel about remote work?"})

	if !got.IsFollowUp {
		t.Error("expected follow-up with non-empty history")
	}
	found := false
	for _, d := range got.Demographics {
		if d == "age" {
			found = true
		}
	}
	if !found {
		t.Errorf("demographics = %v, want to contain age", got.Demographics)
	}
}

func TestParseNotFollowUpWithoutHistory(t *testing.T) {
	p := NewParser(zap.NewNop())

	got := p.Parse("What about by age?", nil)
	if got.IsFollowUp {
		t.Error("no history, must not be a follow-up")
	}
}

func TestParseDemographicsAndTopics(t *testing.T) {
	p := NewParser(zap.NewNop())

	tests := []struct {
		query        string
		demographics []string
		topics       []string
		specificity  string
	}{
		{
			query:        "How does confidence in leadership vary by job level?",
			demographics: []string{"job_level"},
			topics:       []string{"Leadership_Confidence"},
			specificity:  domain.SpecificitySpecific,
		},
		{
			query:        "attitudes to AI by country",
			demographics: []string{"region"},
			topics:       []string{"AI_Attitudes"},
			specificity:  domain.SpecificitySpecific,
		},
		{
			query:        "tell me something interesting",
			demographics: []string{},
			topics:       []string{},
			specificity:  domain.SpecificityGeneral,
		},
	}

	for _, tt := range tests {
		got := p.Parse(tt.query, nil)
		if !reflect.DeepEqual(got.Demographics, tt.demographics) {
			t.Errorf("Parse(%q).Demographics = %v, want %v", tt.query, got.Demographics, tt.demographics)
		}
		if !reflect.DeepEqual(got.Topics, tt.topics) {
			t.Errorf("Parse(%q).Topics = %v, want %v", tt.query, got.Topics, tt.topics)
		}
		if got.Specificity != tt.specificity {
			t.Errorf("Parse(%q).Specificity = %q, want %q", tt.query, got.Specificity, tt.specificity)
		}
	}
}

func TestParseYears(t *testing.T) {
	p := NewParser(zap.NewNop())

	got := p.Parse("compare remote work between 2024 and 2025", nil)
	if !reflect.DeepEqual(got.Years, []int{2024, 2025}) {
		t.Errorf("Years = %v, want [2024 2025]", got.Years)
	}
}

func TestParseYearAloneIsGeneral(t *testing.T) {
	p := NewParser(zap.NewNop())

	got := p.Parse("what happened in 2024", nil)
	if got.Specificity != domain.SpecificityGeneral {
		t.Errorf("a year alone must not make a query specific, got %q", got.Specificity)
	}
}

func TestParseEmptyQueryFailsOpen(t *testing.T) {
	p := NewParser(zap.NewNop())

	got := p.Parse("   ", nil)
	if len(got.Topics) != 0 || len(got.Demographics) != 0 || got.IsFollowUp {
		t.Errorf("empty query must yield empty intent, got %+v", got)
	}
	if got.Specificity != domain.SpecificityGeneral {
		t.Errorf("Specificity = %q, want general", got.Specificity)
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Can you tell me about AI?", "about ai"},
		{"  What   about   by AGE? ", "what about by age"},
		{"remote-work, please!", "remotework please"},
	}

	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsComparisonQuery(t *testing.T) {
	comparisons := []string{
		"How has remote work changed since 2024?",
		"Compare AI attitudes between 2024 and 2025",
		"leadership confidence year over year",
		"2024 vs 2025 retention",
	}
	for _, q := range comparisons {
		if !IsComparisonQuery(q) {
			t.Errorf("IsComparisonQuery(%q) = false, want true", q)
		}
	}

	single := []string{
		"How do people feel about remote work?",
		"AI attitudes by age",
	}
	for _, q := range single {
		if IsComparisonQuery(q) {
			t.Errorf("IsComparisonQuery(%q) = true, want false", q)
		}
	}
}

func TestIsStarterQuestion(t *testing.T) {
	starters := []string{"SQ1", "sq12", "overview", "top findings", "summary"}
	for _, q := range starters {
		if !IsStarterQuestion(q) {
			t.Errorf("IsStarterQuestion(%q) = false, want true", q)
		}
	}

	nonStarters := []string{
		"",
		"How does confidence in leadership vary by job level?",
	}
	for _, q := range nonStarters {
		if IsStarterQuestion(q) {
			t.Errorf("IsStarterQuestion(%q) = true, want false", q)
		}
	}

	if got := StarterCode("sq7"); got != "SQ7" {
		t.Errorf("StarterCode(sq7) = %q, want SQ7", got)
	}
	if got := StarterCode("overview"); got != "" {
		t.Errorf("StarterCode(overview) = %q, want empty", got)
	}
}
