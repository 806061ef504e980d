package service

import (
	"context"

	"github.com/workpulse/surveychat/internal/compat"
	"github.com/workpulse/surveychat/internal/domain"
	"github.com/workpulse/surveychat/internal/identify"
	"github.com/workpulse/surveychat/internal/repository"
)

// AdminService handles admin operations
type AdminService struct {
	loader      *compat.Loader
	identifier  *identify.Identifier
	cacheRepo   *repository.ThreadCacheRepository
	sessionRepo *repository.SessionRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	loader *compat.Loader,
	identifier *identify.Identifier,
	cacheRepo *repository.ThreadCacheRepository,
	sessionRepo *repository.SessionRepository,
) *AdminService {
	return &AdminService{
		loader:      loader,
		identifier:  identifier,
		cacheRepo:   cacheRepo,
		sessionRepo: sessionRepo,
	}
}

// MappingRefreshResult reports the outcome of a mapping reload.
type MappingRefreshResult struct {
	Version string `json:"version"`
	Topics  int    `json:"topics"`
}

// RefreshMapping rereads the canonical topic mapping and clears the
// identifier's normalized-query cache so stale matches do not outlive the
// old mapping version.
func (s *AdminService) RefreshMapping(ctx context.Context) (*MappingRefreshResult, error) {
	mapping, err := s.loader.Refresh()
	if err != nil {
		return nil, err
	}
	s.identifier.Reset()
	return &MappingRefreshResult{
		Version: mapping.Metadata.Version,
		Topics:  len(mapping.Topics()),
	}, nil
}

// ThreadCache returns the cache entry for one thread, or nil when the thread
// has no live entry.
func (s *AdminService) ThreadCache(ctx context.Context, threadID string) (*domain.ThreadCacheEntry, error) {
	return s.cacheRepo.Get(threadID)
}

// PurgeExpiredCache removes expired thread cache entries.
func (s *AdminService) PurgeExpiredCache(ctx context.Context) (int64, error) {
	return s.cacheRepo.Purge()
}

// Stats

func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	chats, _ := s.sessionRepo.CountChats()

	var version string
	var topics int
	if mapping, err := s.loader.Mapping(); err == nil {
		version = mapping.Metadata.Version
		topics = len(mapping.Topics())
	}

	return &domain.Stats{
		TotalChats:     chats,
		MappingVersion: version,
		TotalTopics:    topics,
	}, nil
}
