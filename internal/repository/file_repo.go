package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/workpulse/surveychat/internal/domain"
)

// LoadOptions controls which parts of a data file a load returns.
type LoadOptions struct {
	// Segments restricts the returned file to these canonical segments plus
	// the overall baseline. Empty means the full file.
	Segments []string
}

type memoEntry struct {
	file     *domain.DataFile
	loadedAt time.Time
}

// FileRepository loads survey data files from disk and memoizes them in
// memory. Memoized entries always hold the complete file; segment-restricted
// requests get a pruned copy, so repeat requests for further segments never
// reread the file within the freshness window.
type FileRepository struct {
	dataDir  string
	maxAge   time.Duration
	maxBatch int
	logger   *zap.Logger

	mu   sync.RWMutex
	memo map[string]memoEntry
}

// NewFileRepository creates a new file repository
func NewFileRepository(dataDir string, maxAge time.Duration, maxBatch int, logger *zap.Logger) *FileRepository {
	if maxBatch < 1 {
		maxBatch = 1
	}
	return &FileRepository{
		dataDir:  dataDir,
		maxAge:   maxAge,
		maxBatch: maxBatch,
		logger:   logger,
		memo:     make(map[string]memoEntry),
	}
}

// GetFileByID loads a single data file. A missing or unreadable file is not
// an error: it is logged and reported as (nil, nil) so one bad file never
// fails a whole query.
func (r *FileRepository) GetFileByID(ctx context.Context, id string, opts LoadOptions) (*domain.DataFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.load(id)
	if err != nil {
		r.logger.Error("data file load failed",
			zap.String("file_id", id), zap.Error(err))
		return nil, nil
	}
	if file == nil {
		return nil, nil
	}

	if len(opts.Segments) > 0 {
		return file.PruneToSegments(opts.Segments), nil
	}
	return file, nil
}

// GetFilesByIDs loads a batch of files concurrently with a bounded degree of
// parallelism. Files that fail to load are dropped from the result and
// returned in failed; the call itself only errors on context cancellation.
func (r *FileRepository) GetFilesByIDs(ctx context.Context, ids []string, opts LoadOptions) (files []*domain.DataFile, failed []string, err error) {
	results := make([]*domain.DataFile, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxBatch)
	for i, id := range ids {
		g.Go(func() error {
			f, err := r.GetFileByID(ctx, id, opts)
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for i, f := range results {
		if f == nil {
			failed = append(failed, ids[i])
			continue
		}
		files = append(files, f)
	}
	return files, failed, nil
}

// LoadSegments loads the given files restricted to the given segments.
// Idempotent: already-memoized files are served from memory and pruned.
func (r *FileRepository) LoadSegments(ctx context.Context, ids []string, segments []string) ([]*domain.DataFile, []string, error) {
	return r.GetFilesByIDs(ctx, ids, LoadOptions{Segments: segments})
}

// Invalidate drops a memoized file so the next request rereads it from disk.
func (r *FileRepository) Invalidate(id string) {
	r.mu.Lock()
	delete(r.memo, id)
	r.mu.Unlock()
}

func (r *FileRepository) load(id string) (*domain.DataFile, error) {
	id = strings.TrimSuffix(strings.TrimSpace(id), ".json")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("invalid file id %q", id)
	}

	r.mu.RLock()
	entry, ok := r.memo[id]
	r.mu.RUnlock()
	if ok && time.Since(entry.loadedAt) < r.maxAge {
		return entry.file, nil
	}

	path := filepath.Join(r.dataDir, id+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("data file not found: %s", id)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file domain.DataFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if file.ID == "" {
		file.ID = id
	}

	r.mu.Lock()
	r.memo[id] = memoEntry{file: &file, loadedAt: time.Now()}
	r.mu.Unlock()

	return &file, nil
}
