package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	redisInfra "carelink-compliance-core/internal/infrastructure/database/redis"
)

// LeaseManager inspects the sweep lease left behind by a previous process
type LeaseManager struct {
	redisClient *redisInfra.Client
}

func NewLeaseManager(redisClient *redisInfra.Client) *LeaseManager {
	return &LeaseManager{redisClient: redisClient}
}

// ReclaimStaleLease removes a sweep lease that has no TTL. Acquisition always
// sets a TTL, so a persistent lease can only be debris from a failed write or
// manual intervention. A lease with a live TTL may belong to another instance
// and is left alone.
func (lm *LeaseManager) ReclaimStaleLease(ctx context.Context) error {
	key := lm.redisClient.Keys().SweepLeaseKey()

	holder, err := lm.redisClient.Get(ctx, key)
	if err == goredis.Nil {
		fmt.Printf("[LEASE] ✅ No sweep lease held\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect sweep lease: %w", err)
	}

	ttl, err := lm.redisClient.TTL(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read sweep lease TTL: %w", err)
	}

	if ttl < 0 {
		fmt.Printf("[LEASE] 🔧 Reclaiming stale sweep lease (holder: %s, no TTL)\n", holder)
		if err := lm.redisClient.Del(ctx, key); err != nil {
			return fmt.Errorf("failed to reclaim stale sweep lease: %w", err)
		}
		return nil
	}

	fmt.Printf("[LEASE] ✅ Sweep lease held by run %s, expires in %v\n", holder, ttl)
	return nil
}
