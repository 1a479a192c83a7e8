package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates surface access across replicas. The engine
// serializes events per surface identifier in-process; a locker extends that
// guarantee to multi-instance deployments.
type DistributedLocker interface {
	// Lock acquires a distributed lock for the given key. It blocks until
	// the lock is acquired or the context is canceled, and returns an
	// UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
