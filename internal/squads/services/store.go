package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-guildsync/internal/squads/models"
	"go-guildsync/pkg/database"
)

// ErrReportNotFound is returned for an unknown or expired report id
var ErrReportNotFound = errors.New("report not found")

const (
	reportKeyPrefix = "guildsync:report:"
	// DefaultReportTTL is how long a generated report stays downloadable
	DefaultReportTTL = 24 * time.Hour
)

// ReportStore retains generated reports for later download
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.PresetReport) error
	LoadReport(ctx context.Context, id string) (*models.PresetReport, error)
}

// RedisReportStore keeps reports as JSON under guildsync:report:<id>
type RedisReportStore struct {
	redis *database.Redis
	ttl   time.Duration
}

func NewRedisReportStore(redis *database.Redis, ttl time.Duration) *RedisReportStore {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &RedisReportStore{redis: redis, ttl: ttl}
}

func (s *RedisReportStore) SaveReport(ctx context.Context, report *models.PresetReport) error {
	if err := s.redis.SetJSON(ctx, reportKeyPrefix+report.ID, report, s.ttl); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (s *RedisReportStore) LoadReport(ctx context.Context, id string) (*models.PresetReport, error) {
	var report models.PresetReport
	if err := s.redis.GetJSON(ctx, reportKeyPrefix+id, &report); err != nil {
		if errors.Is(err, database.ErrCacheMiss) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return &report, nil
}
