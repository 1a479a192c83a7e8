package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marquee-kit/marquee/pkg/ports"
)

// lockEntry holds the mutex and the reference count for one surface key.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lockManager serializes event processing per surface identifier. It uses
// reference counting to garbage collect unused entries, and optionally wraps
// each critical section in a distributed lock for multi-replica deployments.
type lockManager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

func newLockManager(locker ports.DistributedLocker, ttl time.Duration, logger *slog.Logger) *lockManager {
	return &lockManager{
		locks:  make(map[string]*lockEntry),
		locker: locker,
		ttl:    ttl,
		logger: logger,
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu and call release(key) after unlocking.
func (m *lockManager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *lockManager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock runs fn while holding the surface's lock. When a distributed
// locker is configured it is acquired after the local mutex, so in-process
// contention never hammers the shared backend.
func (m *lockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.ttl)
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock", "key", key, "error", err)
			}
		}()
	}

	return fn(ctx)
}
