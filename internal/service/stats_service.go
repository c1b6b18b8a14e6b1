package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/persistence"
	"github.com/spec-kit/hostel-complaint-service/internal/repository"
	apperrors "github.com/spec-kit/hostel-complaint-service/pkg/util"
)

const statsCacheKey = "dashboard:complaint_counts"

// DashboardStats aggregates complaint counts for the dashboards.
type DashboardStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	NoAction   int64 `json:"no_action"`
	Escalated  int64 `json:"escalated"`
}

// StatsService serves dashboard counts with a short-lived Redis cache in
// front of the database aggregate.
type StatsService struct {
	complaints repository.ComplaintRepository
	redis      *persistence.Redis
	logger     *zap.Logger
	ttl        time.Duration
}

// NewStatsService constructs the service.
func NewStatsService(complaints repository.ComplaintRepository, redis *persistence.Redis, logger *zap.Logger, ttl time.Duration) *StatsService {
	return &StatsService{
		complaints: complaints,
		redis:      redis,
		logger:     logger,
		ttl:        ttl,
	}
}

// DashboardStats returns aggregate counts, served from cache when fresh.
// Cache failures degrade to a direct database read.
func (s *StatsService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	counts, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &DashboardStats{
		Pending:    counts[domain.ComplaintStatusPending],
		InProgress: counts[domain.ComplaintStatusInProgress],
		Resolved:   counts[domain.ComplaintStatusResolved],
		NoAction:   counts[domain.ComplaintStatusNoAction],
		Escalated:  counts[domain.ComplaintStatusEscalated],
	}
	for _, count := range counts {
		stats.Total += count
	}

	s.writeCache(ctx, stats)
	return stats, nil
}

// Invalidate drops the cached counts; called after any complaint mutation.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	if err := s.redis.Client.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Debug("stats cache invalidate failed", zap.Error(err))
	}
}

func (s *StatsService) readCache(ctx context.Context) *DashboardStats {
	if s.redis == nil || s.redis.Client == nil {
		return nil
	}
	raw, err := s.redis.Client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatsService) writeCache(ctx context.Context, stats *DashboardStats) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Client.Set(ctx, statsCacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Debug("stats cache write failed", zap.Error(err))
	}
}
