package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

const sampleFileJSON = `{
	"metadata": {"topicId": "Leadership_Confidence", "year": 2025, "comparable": true},
	"question": "How confident are you in senior leadership?",
	"responses": [
		{
			"response": "Confident",
			"data": {
				"overall": 0.81,
				"age": {"18-24": 0.75, "25-34": "80%"},
				"job_level": {"senior": 0.92}
			}
		}
	]
}`

func testFileRepo(t *testing.T) *FileRepository {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2025_1.json"), []byte(sampleFileJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return NewFileRepository(dir, time.Minute, 4, zap.NewNop())
}

func TestGetFileByID(t *testing.T) {
	repo := testFileRepo(t)

	file, err := repo.GetFileByID(context.Background(), "2025_1", LoadOptions{})
	if err != nil {
		t.Fatalf("GetFileByID: %v", err)
	}
	if file == nil {
		t.Fatal("expected file")
	}
	if file.ID != "2025_1" {
		t.Errorf("ID = %q, want 2025_1", file.ID)
	}
	if file.Metadata.TopicID != "Leadership_Confidence" {
		t.Errorf("TopicID = %q", file.Metadata.TopicID)
	}
	// Percentage strings normalize to fractions on load.
	if got := file.Responses[0].Data["age"]["25-34"]; got != 0.8 {
		t.Errorf("age/25-34 = %v, want 0.8", got)
	}
	if got := file.Responses[0].Data["overall"]["overall"]; got != 0.81 {
		t.Errorf("overall = %v, want 0.81", got)
	}
}

func TestGetFileByIDMissingIsNil(t *testing.T) {
	repo := testFileRepo(t)

	file, err := repo.GetFileByID(context.Background(), "2025_nope", LoadOptions{})
	if err != nil {
		t.Fatalf("missing file must not error, got %v", err)
	}
	if file != nil {
		t.Errorf("missing file must return nil, got %+v", file)
	}
}

func TestGetFileByIDSegmentRestriction(t *testing.T) {
	repo := testFileRepo(t)

	file, err := repo.GetFileByID(context.Background(), "2025_1", LoadOptions{Segments: []string{"age"}})
	if err != nil {
		t.Fatalf("GetFileByID: %v", err)
	}
	data := file.Responses[0].Data
	if _, ok := data["job_level"]; ok {
		t.Error("job_level not requested, must be pruned")
	}
	if _, ok := data["age"]; !ok {
		t.Error("requested age segment missing")
	}
	if _, ok := data["overall"]; !ok {
		t.Error("overall baseline must survive pruning")
	}
}

func TestGetFilesByIDsDropsFailures(t *testing.T) {
	repo := testFileRepo(t)

	files, failed, err := repo.GetFilesByIDs(context.Background(),
		[]string{"2025_1", "2025_missing"}, LoadOptions{})
	if err != nil {
		t.Fatalf("GetFilesByIDs: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("files = %d, want 1", len(files))
	}
	if len(failed) != 1 || failed[0] != "2025_missing" {
		t.Errorf("failed = %v, want [2025_missing]", failed)
	}
}

func TestMemoizationSurvivesFileRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2025_1.json")
	if err := os.WriteFile(path, []byte(sampleFileJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	repo := NewFileRepository(dir, time.Minute, 4, zap.NewNop())

	if f, _ := repo.GetFileByID(context.Background(), "2025_1", LoadOptions{}); f == nil {
		t.Fatal("first load failed")
	}

	// A memoized file is served from memory even after the file disappears.
	os.Remove(path)
	f, err := repo.GetFileByID(context.Background(), "2025_1", LoadOptions{})
	if err != nil || f == nil {
		t.Fatalf("memoized load failed: file=%v err=%v", f, err)
	}

	// Invalidation forces a reread, which now misses.
	repo.Invalidate("2025_1")
	f, err = repo.GetFileByID(context.Background(), "2025_1", LoadOptions{})
	if err != nil {
		t.Fatalf("missing file must not error, got %v", err)
	}
	if f != nil {
		t.Error("invalidated file must reread from disk and miss")
	}
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	repo := testFileRepo(t)

	f, err := repo.GetFileByID(context.Background(), "../2025_1", LoadOptions{})
	if err != nil {
		t.Fatalf("traversal id must not error, got %v", err)
	}
	if f != nil {
		t.Error("traversal id must not resolve to a file")
	}
}
