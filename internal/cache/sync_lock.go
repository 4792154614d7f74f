package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	syncLockKey = "sync:catalog:lock"

	// lock outlives any sane sync run; guards against a crashed holder
	syncLockTTL = 30 * time.Minute
)

// SyncLock keeps catalog sync runs mutually exclusive. With a redis client
// the lock is shared across instances via SET NX; without one it falls back
// to an in-process flag, which is enough for a single-instance deployment.
type SyncLock struct {
	client *redis.Client
	local  atomic.Bool
}

func NewSyncLock(client *redis.Client) *SyncLock {
	return &SyncLock{client: client}
}

// TryAcquire attempts to take the lock without blocking. It returns false
// when another sync run holds it.
func (l *SyncLock) TryAcquire(ctx context.Context) (bool, error) {
	if l.client == nil {
		return l.local.CompareAndSwap(false, true), nil
	}
	return l.client.SetNX(ctx, syncLockKey, "1", syncLockTTL).Result()
}

// Release frees the lock. Safe to call even if the redis key already
// expired.
func (l *SyncLock) Release(ctx context.Context) error {
	if l.client == nil {
		l.local.Store(false)
		return nil
	}
	return l.client.Del(ctx, syncLockKey).Err()
}
