// Package locker serializes mutations per registry, in process and, when
// Redis is configured, across processes.
package locker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"nft-swapper.backend/pkg/crypto"
	"nft-swapper.backend/pkg/logger"
	"nft-swapper.backend/pkg/redis"
)

var (
	acquireLease = redis.AcquireLease
	newToken     = func() (string, error) { return crypto.GenerateRandomToken(16) }
)

// KeyedLocker holds one mutex per key and optionally a Redis lease on top.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock

	distributed bool
	ttl         time.Duration
	retry       time.Duration
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a locker. With distributed set, every Lock also takes a
// SET NX lease valid for ttl.
func New(distributed bool, ttl time.Duration) *KeyedLocker {
	return &KeyedLocker{
		locks:       make(map[string]*keyLock),
		distributed: distributed,
		ttl:         ttl,
		retry:       25 * time.Millisecond,
	}
}

// Lock blocks until key is free or ctx is done.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	kl := l.acquireLocal(key)

	if !l.distributed {
		return func() { l.releaseLocal(key, kl) }, nil
	}

	lease, err := l.acquireLease(ctx, key)
	if err != nil {
		l.releaseLocal(key, kl)
		return nil, err
	}
	return func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "Failed to release registry lease", zap.String("key", key), zap.Error(err))
		}
		l.releaseLocal(key, kl)
	}, nil
}

func (l *KeyedLocker) acquireLease(ctx context.Context, key string) (*redis.Lease, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	for {
		lease, err := acquireLease(ctx, key, token, l.ttl)
		if err == nil {
			return lease, nil
		}
		if !errors.Is(err, redis.ErrLockHeld) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *KeyedLocker) acquireLocal(key string) *keyLock {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return kl
}

func (l *KeyedLocker) releaseLocal(key string, kl *keyLock) {
	kl.mu.Unlock()

	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
