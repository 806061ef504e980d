package filter

import (
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
)

func leadershipFile() *domain.DataFile {
	return &domain.DataFile{
		ID:       "2025_1",
		Question: "How confident are you in senior leadership?",
		Responses: []domain.ResponseRow{
			{
				Response: "Confident",
				Data: map[string]domain.CategoryValues{
					"overall":   {"overall": 0.81},
					"job_level": {"senior": 0.92, "mid": 0.85, "junior": 0.77},
				},
			},
		},
	}
}

func genderOnlyFile() *domain.DataFile {
	return &domain.DataFile{
		ID:       "2025_2",
		Question: "Do you plan to stay at your organization?",
		Responses: []domain.ResponseRow{
			{
				Response: "Yes",
				Data: map[string]domain.CategoryValues{
					"overall": {"overall": 0.64},
					"gender":  {"male": 0.6, "female": 0.68},
				},
			},
		},
	}
}

func TestFilterEmitsRequestedSegment(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	result := p.FilterDataBySegments([]*domain.DataFile{leadershipFile()}, []string{"job_level"})

	var senior *domain.Stat
	for i := range result.Stats {
		if result.Stats[i].Category == "job_level" && result.Stats[i].Value == "senior" {
			senior = &result.Stats[i]
		}
	}
	if senior == nil {
		t.Fatal("expected a job_level/senior stat")
	}
	if senior.Percentage != 92 {
		t.Errorf("senior percentage = %d, want 92", senior.Percentage)
	}
	if senior.FileID != "2025_1" || senior.Response != "Confident" {
		t.Errorf("stat = %+v", senior)
	}

	if !reflect.DeepEqual(result.FoundSegments, []string{"job_level"}) {
		t.Errorf("FoundSegments = %v, want [job_level]", result.FoundSegments)
	}
	if len(result.MissingSegments) != 0 {
		t.Errorf("MissingSegments = %v, want empty", result.MissingSegments)
	}
}

func TestFilterReportsMissingSegments(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	result := p.FilterDataBySegments([]*domain.DataFile{genderOnlyFile()}, []string{"job_level"})

	if len(result.FoundSegments) != 0 {
		t.Errorf("FoundSegments = %v, want empty", result.FoundSegments)
	}
	if !reflect.DeepEqual(result.MissingSegments, []string{"job_level"}) {
		t.Errorf("MissingSegments = %v, want [job_level]", result.MissingSegments)
	}

	// Overall baseline is still emitted.
	found := false
	for _, stat := range result.Stats {
		if stat.Category == "overall" && stat.Percentage == 64 {
			found = true
		}
		if stat.Category == "gender" {
			t.Error("gender was not requested, must not be emitted")
		}
	}
	if !found {
		t.Error("expected the overall baseline stat")
	}
}

func TestFilterReportsUnknownRequestedSegments(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	result := p.FilterDataBySegments([]*domain.DataFile{genderOnlyFile()}, []string{"seniority_band"})

	if len(result.FoundSegments) != 0 {
		t.Errorf("FoundSegments = %v, want empty", result.FoundSegments)
	}
	if !reflect.DeepEqual(result.MissingSegments, []string{"seniority_band"}) {
		t.Errorf("MissingSegments = %v, want [seniority_band]", result.MissingSegments)
	}
}

func TestFilterMissingIsRequestedMinusFound(t *testing.T) {
	p := NewProcessor(zap.NewNop())
	requested := []string{"job_level", "gender", "age"}

	result := p.FilterDataBySegments(
		[]*domain.DataFile{leadershipFile(), genderOnlyFile()}, requested)

	if !reflect.DeepEqual(result.FoundSegments, []string{"gender", "job_level"}) {
		t.Errorf("FoundSegments = %v", result.FoundSegments)
	}
	if !reflect.DeepEqual(result.MissingSegments, []string{"age"}) {
		t.Errorf("MissingSegments = %v, want [age]", result.MissingSegments)
	}
}

func TestFilterCanonicalizesAliases(t *testing.T) {
	p := NewProcessor(zap.NewNop())
	file := &domain.DataFile{
		ID:       "2025_3",
		Question: "Where do you work?",
		Responses: []domain.ResponseRow{
			{
				Response: "Office",
				Data: map[string]domain.CategoryValues{
					"country": {"UK": 0.41},
				},
			},
		},
	}

	result := p.FilterDataBySegments([]*domain.DataFile{file}, []string{"region"})

	if len(result.Stats) != 1 {
		t.Fatalf("stats = %d, want 1", len(result.Stats))
	}
	if result.Stats[0].Category != "region" {
		t.Errorf("category = %q, want region (canonicalized from country)", result.Stats[0].Category)
	}
	if result.Stats[0].Percentage != 41 {
		t.Errorf("percentage = %d, want 41", result.Stats[0].Percentage)
	}
}

func TestGetBaseDataOnlyOverall(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	result := p.GetBaseData([]*domain.DataFile{leadershipFile(), genderOnlyFile()})

	if len(result.Stats) == 0 {
		t.Fatal("expected overall stats")
	}
	for _, stat := range result.Stats {
		if stat.Category != "overall" {
			t.Errorf("base data must be overall only, got %q", stat.Category)
		}
	}
}

func TestFilterIgnoresNilFiles(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	result := p.FilterDataBySegments([]*domain.DataFile{nil, leadershipFile()}, []string{"job_level"})
	if len(result.Stats) == 0 {
		t.Error("nil entries must be skipped, not fatal")
	}
}
