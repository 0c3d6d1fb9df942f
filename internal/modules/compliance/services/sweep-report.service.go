package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"

	"carelink-compliance-core/internal/infrastructure/database/mongodb"
	redisInfra "carelink-compliance-core/internal/infrastructure/database/redis"
	"carelink-compliance-core/internal/modules/compliance/dto"
)

// ErrArchiveUnavailable is returned by history reads when MongoDB is disabled
// or unreachable. The last report stays readable from Redis regardless.
var ErrArchiveUnavailable = errors.New("sweep report archive is unavailable")

// SweepReportService keeps the last run report queryable and archives every
// report to MongoDB when the archive is configured.
type SweepReportService struct {
	redis   *redisInfra.Client
	archive *mongodb.CollectionManager
}

func NewSweepReportService(redis *redisInfra.Client, archive *mongodb.CollectionManager) *SweepReportService {
	return &SweepReportService{
		redis:   redis,
		archive: archive,
	}
}

// Publish records a completed run report. Publication is best-effort: the
// sweep's outcome is already committed, so report storage must never fail it.
func (s *SweepReportService) Publish(ctx context.Context, report *dto.SweepReport) {
	payload, err := json.Marshal(report)
	if err != nil {
		fmt.Printf("[SWEEP] ⚠️  failed to serialize report %s: %v\n", report.RunID, err)
		return
	}

	if err := s.redis.Set(ctx, s.redis.Keys().LastReportKey(), payload, 0); err != nil {
		fmt.Printf("[SWEEP] ⚠️  failed to store last report: %v\n", err)
	}

	// Archive asynchronously; Mongo being down must not delay the caller
	go s.archiveReport(report)
}

func (s *SweepReportService) archiveReport(report *dto.SweepReport) {
	if s.archive == nil || !s.archive.Available() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.archive.InsertReport(ctx, report); err != nil {
		fmt.Printf("[SWEEP] ⚠️  failed to archive report %s: %v\n", report.RunID, err)
	}
}

// History returns up to limit archived run reports, newest first
func (s *SweepReportService) History(ctx context.Context, limit int64) ([]bson.M, error) {
	if s.archive == nil || !s.archive.Available() {
		return nil, ErrArchiveUnavailable
	}

	reports, err := s.archive.LatestReports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load sweep history: %w", err)
	}
	return reports, nil
}

// LastReport returns the most recent run report, or nil when none was recorded
func (s *SweepReportService) LastReport(ctx context.Context) (*dto.SweepReport, error) {
	payload, err := s.redis.Get(ctx, s.redis.Keys().LastReportKey())
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last report: %w", err)
	}

	var report dto.SweepReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to decode last report: %w", err)
	}
	return &report, nil
}
