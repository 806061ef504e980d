package compat

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
)

// FileRef points at one data file backing a topic for one year.
type FileRef struct {
	File string `json:"file"`
}

// Topic is one canonical topic in the mapping: its comparability flag, the
// phrasings used for lexical matching, and the file IDs per survey year.
type Topic struct {
	ID                 string               `json:"id"`
	Comparable         bool                 `json:"comparable"`
	CanonicalQuestion  string               `json:"canonicalQuestion"`
	AlternatePhrasings []string             `json:"alternatePhrasings"`
	Keywords           []string             `json:"keywords"`
	Mapping            map[string][]FileRef `json:"mapping"`
	AvailableMarkets   []string             `json:"availableMarkets"`
	UserMessage        string               `json:"userMessage"`
}

// AvailableYears returns the survey years this topic has data for, sorted
// ascending. Years with an empty mapping entry do not count.
func (t *Topic) AvailableYears() []int {
	years := make([]int, 0, len(t.Mapping))
	for key, refs := range t.Mapping {
		if len(refs) == 0 {
			continue
		}
		if y, err := strconv.Atoi(key); err == nil {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// Theme groups related topics.
type Theme struct {
	Name   string  `json:"name"`
	Topics []Topic `json:"topics"`
}

// Mapping is the canonical topic mapping document.
type Mapping struct {
	Metadata struct {
		Version string `json:"version"`
	} `json:"metadata"`
	Themes     []Theme `json:"themes"`
	DataAccess struct {
		ComparableMarkets []string `json:"comparableMarkets"`
	} `json:"dataAccess"`
}

var fileYearPattern = regexp.MustCompile(`^(\d{4})_`)

// Loader loads the canonical topic mapping lazily and serves it to the
// identifier and the compatibility assessor. Refresh swaps the whole document
// atomically, so in-flight readers keep a consistent snapshot.
type Loader struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	mapping *Mapping
}

// NewLoader creates a new mapping loader
func NewLoader(path string, logger *zap.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Mapping returns the current mapping, loading it on first use.
func (l *Loader) Mapping() (*Mapping, error) {
	l.mu.RLock()
	m := l.mapping
	l.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	return l.Refresh()
}

// Refresh rereads the mapping from disk and replaces the cached document.
// On failure the previous document, if any, stays in place and the error
// wraps domain.ErrMappingLoad.
func (l *Loader) Refresh() (*Mapping, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrMappingLoad, l.path, err)
	}

	var m Mapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrMappingLoad, l.path, err)
	}

	l.mu.Lock()
	l.mapping = &m
	l.mu.Unlock()

	count := 0
	for _, theme := range m.Themes {
		count += len(theme.Topics)
	}
	l.logger.Info("topic mapping loaded",
		zap.String("version", m.Metadata.Version),
		zap.Int("themes", len(m.Themes)),
		zap.Int("topics", count))

	return &m, nil
}

// FindTopic looks a topic up by ID across all themes.
func (m *Mapping) FindTopic(id string) (*Topic, bool) {
	for i := range m.Themes {
		for j := range m.Themes[i].Topics {
			if m.Themes[i].Topics[j].ID == id {
				return &m.Themes[i].Topics[j], true
			}
		}
	}
	return nil, false
}

// TopicForFile resolves a file ID to its topic and survey year. Files not
// listed in any topic's mapping fall back to the year prefix of the ID.
func (m *Mapping) TopicForFile(fileID string) (topicID string, year int, ok bool) {
	for i := range m.Themes {
		for j := range m.Themes[i].Topics {
			topic := &m.Themes[i].Topics[j]
			for key, refs := range topic.Mapping {
				for _, ref := range refs {
					if ref.File == fileID {
						y, _ := strconv.Atoi(key)
						return topic.ID, y, true
					}
				}
			}
		}
	}
	if match := fileYearPattern.FindStringSubmatch(fileID); match != nil {
		y, _ := strconv.Atoi(match[1])
		return "", y, false
	}
	return "", 0, false
}

// Topics returns all topics across all themes.
func (m *Mapping) Topics() []*Topic {
	var out []*Topic
	for i := range m.Themes {
		for j := range m.Themes[i].Topics {
			out = append(out, &m.Themes[i].Topics[j])
		}
	}
	return out
}
