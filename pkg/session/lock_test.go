package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-kit/marquee/internal/logging"
	"github.com/marquee-kit/marquee/pkg/ports"
)

func TestLockManager_SerializesSameKey(t *testing.T) {
	m := newLockManager(nil, time.Second, logging.NewNop())
	ctx := context.Background()

	const workers = 16
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "C1:1.1", func(ctx context.Context) error {
				// Unsynchronized increment; only the lock keeps it safe.
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestLockManager_EntriesAreCollected(t *testing.T) {
	m := newLockManager(nil, time.Second, logging.NewNop())
	ctx := context.Background()

	require.NoError(t, m.WithLock(ctx, "C1:1.1", func(ctx context.Context) error { return nil }))
	require.NoError(t, m.WithLock(ctx, "C2:2.2", func(ctx context.Context) error { return nil }))

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks, "entries should be freed once unused")
}

// countingLocker fakes a distributed locker and records acquisitions.
type countingLocker struct {
	mu       sync.Mutex
	acquired []string
	released int
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired = append(l.acquired, key)
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func TestLockManager_UsesDistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	m := newLockManager(locker, time.Second, logging.NewNop())
	ctx := context.Background()

	require.NoError(t, m.WithLock(ctx, "C1:1.1", func(ctx context.Context) error { return nil }))

	assert.Equal(t, []string{"C1:1.1"}, locker.acquired)
	assert.Equal(t, 1, locker.released)
}
