package services

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"carelink-compliance-core/internal/app/config"
	redisInfra "carelink-compliance-core/internal/infrastructure/database/redis"
)

// SweepLeaseService guards sweep runs against overlap with a Redis lease.
// Only one sweep may hold the lease at a time; the TTL bounds a crashed holder
// so a dead process never blocks the schedule permanently.
type SweepLeaseService struct {
	redis *redisInfra.Client
	ttl   time.Duration
}

func NewSweepLeaseService(redis *redisInfra.Client, cfg *config.Config) *SweepLeaseService {
	return &SweepLeaseService{
		redis: redis,
		ttl:   cfg.Sweep.LeaseTTL,
	}
}

// Acquire takes the lease for runID. Returns false when another run holds it.
func (s *SweepLeaseService) Acquire(ctx context.Context, runID string) (bool, error) {
	key := s.redis.Keys().SweepLeaseKey()

	locked, err := s.redis.SetNX(ctx, key, runID, s.ttl)
	if err != nil {
		return false, fmt.Errorf("unable to acquire sweep lease: %w", err)
	}
	return locked, nil
}

// Release frees the lease, but only when this run still owns it. A lease that
// expired and was re-acquired by a newer run must not be deleted from under it.
func (s *SweepLeaseService) Release(ctx context.Context, runID string) error {
	key := s.redis.Keys().SweepLeaseKey()

	holder, err := s.redis.Get(ctx, key)
	if err == goredis.Nil {
		return nil // already expired
	}
	if err != nil {
		return fmt.Errorf("unable to read sweep lease: %w", err)
	}
	if holder != runID {
		fmt.Printf("[SWEEP] lease now held by run %s, not releasing\n", holder)
		return nil
	}

	if err := s.redis.Del(ctx, key); err != nil {
		return fmt.Errorf("unable to release sweep lease: %w", err)
	}
	return nil
}

// Holder returns the run id currently holding the lease, empty when free
func (s *SweepLeaseService) Holder(ctx context.Context) (string, error) {
	holder, err := s.redis.Get(ctx, s.redis.Keys().SweepLeaseKey())
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("unable to read sweep lease: %w", err)
	}
	return holder, nil
}
