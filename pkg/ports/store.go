package ports

import (
	"context"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// ContainerStore persists surface containers keyed by surface identifier.
// It is the only serialization point between events for the same surface;
// deployments that allow concurrent edits to one surface must pair it with a
// DistributedLocker.
type ContainerStore interface {
	// Save persists the container under the given surface identifier.
	Save(ctx context.Context, surfaceID string, c *domain.Container) error

	// Load retrieves the container for a surface identifier.
	// Returns domain.ErrContainerNotFound if the surface does not exist.
	Load(ctx context.Context, surfaceID string) (*domain.Container, error)

	// Delete removes the container for a surface identifier.
	Delete(ctx context.Context, surfaceID string) error
}
