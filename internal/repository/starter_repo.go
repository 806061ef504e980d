package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
	"github.com/workpulse/surveychat/internal/intent"
)

// StarterQuestion is a precompiled starter: a canned question with the file
// IDs and segments its answer is built from, so the pipeline skips
// identification entirely.
type StarterQuestion struct {
	Code     string   `json:"code"`
	Question string   `json:"question"`
	FileIDs  []string `json:"fileIds"`
	Segments []string `json:"segments"`
}

// StarterRepository serves precompiled starter questions from a directory of
// JSON files, loaded once at startup. An absent or empty directory just means
// no starters are available.
type StarterRepository struct {
	logger *zap.Logger

	byCode     map[string]StarterQuestion
	byQuestion map[string]StarterQuestion
}

// NewStarterRepository loads all starter definitions under dir.
func NewStarterRepository(dir string, logger *zap.Logger) *StarterRepository {
	r := &StarterRepository{
		logger:     logger,
		byCode:     make(map[string]StarterQuestion),
		byQuestion: make(map[string]StarterQuestion),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Info("no starter questions directory", zap.String("dir", dir))
		return r
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable starter file", zap.String("path", path), zap.Error(err))
			continue
		}
		var sq StarterQuestion
		if err := json.Unmarshal(raw, &sq); err != nil {
			logger.Warn("skipping malformed starter file", zap.String("path", path), zap.Error(err))
			continue
		}
		if sq.Code != "" {
			r.byCode[strings.ToUpper(sq.Code)] = sq
		}
		if sq.Question != "" {
			r.byQuestion[normalizeStarter(sq.Question)] = sq
		}
	}

	logger.Info("starter questions loaded", zap.Int("count", len(r.byCode)+len(r.byQuestion)))
	return r
}

// Lookup finds a starter by SQ code or by its full canned question text.
func (r *StarterRepository) Lookup(query string) (StarterQuestion, bool) {
	if code := intent.StarterCode(query); code != "" {
		if sq, ok := r.byCode[code]; ok {
			return sq, true
		}
	}
	if sq, ok := r.byQuestion[normalizeStarter(query)]; ok {
		return sq, true
	}
	return StarterQuestion{}, false
}

// SegmentList returns the starter's segments, defaulting when unset.
func (sq StarterQuestion) SegmentList() []string {
	if len(sq.Segments) > 0 {
		return sq.Segments
	}
	return domain.DefaultSegments
}

func normalizeStarter(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}
