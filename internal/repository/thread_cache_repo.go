package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/domain"
)

// ThreadCacheRepository is the thread-scoped segment cache backed by a
// shared sqlite store, so multiple server processes see the same entries.
//
// Update is a read-modify-write with no optimistic concurrency: two
// concurrent updates for the same thread can race, and the later write wins
// at the whole-entry level. This is a documented limitation, not resolved
// here; per-request merges remain a union so the common single-writer case
// never loses segments.
type ThreadCacheRepository struct {
	db     *DB
	ttl    time.Duration
	logger *zap.Logger
}

// NewThreadCacheRepository creates a new thread cache repository
func NewThreadCacheRepository(db *DB, ttl time.Duration, logger *zap.Logger) *ThreadCacheRepository {
	return &ThreadCacheRepository{db: db, ttl: ttl, logger: logger}
}

// Get retrieves the cache entry for a thread. A thread with no prior write,
// an expired entry, or an unreadable payload all yield (nil, nil): read
// failures are cache misses, never errors.
func (r *ThreadCacheRepository) Get(threadID string) (*domain.ThreadCacheEntry, error) {
	var payload string
	var expiresAt time.Time

	err := r.db.QueryRow(`
		SELECT payload, expires_at FROM thread_cache WHERE thread_id = ?
	`, threadID).Scan(&payload, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Warn("thread cache read failed, treating as miss",
			zap.String("thread_id", threadID), zap.Error(err))
		return nil, nil
	}

	if time.Now().After(expiresAt) {
		return nil, nil
	}

	var entry domain.ThreadCacheEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		r.logger.Warn("thread cache payload corrupt, treating as miss",
			zap.String("thread_id", threadID), zap.Error(err))
		return nil, nil
	}
	entry.ThreadID = threadID
	entry.ExpiresAt = expiresAt
	return &entry, nil
}

// Update merges the incoming files into the thread's entry. For an existing
// file ID, segment sets are unioned and per-segment data is shallow-merged;
// new IDs are inserted. Every write refreshes the TTL.
func (r *ThreadCacheRepository) Update(threadID string, incoming []domain.CachedFile) error {
	entry, err := r.Get(threadID)
	if err != nil || entry == nil {
		entry = &domain.ThreadCacheEntry{ThreadID: threadID}
	}

	for _, in := range incoming {
		if existing := entry.File(in.ID); existing != nil {
			existing.Merge(in)
		} else {
			fresh := domain.CachedFile{ID: in.ID}
			fresh.Merge(in)
			entry.Files = append(entry.Files, fresh)
		}
	}

	entry.ExpiresAt = time.Now().Add(r.ttl)

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO thread_cache (thread_id, payload, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, threadID, string(payload), entry.ExpiresAt, time.Now())

	return err
}

// CachedFileIDs returns the IDs of all files cached for a thread. Used by
// follow-up queries to reuse the previous turn's file identification.
func (r *ThreadCacheRepository) CachedFileIDs(threadID string) []string {
	entry, err := r.Get(threadID)
	if err != nil || entry == nil {
		return nil
	}
	ids := make([]string, 0, len(entry.Files))
	for _, f := range entry.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// Purge removes expired entries. Called periodically from main.
func (r *ThreadCacheRepository) Purge() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM thread_cache WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
