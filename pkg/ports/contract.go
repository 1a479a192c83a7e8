package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// RunContainerStoreContract runs a suite of tests to verify that a
// ContainerStore implementation adheres to the defined interface contract.
func RunContainerStoreContract(t *testing.T, store ContainerStore) {
	ctx := context.Background()
	surfaceID := "contract-test-surface-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		cont := &domain.Container{
			SurfaceID: surfaceID,
			Kind:      domain.SurfaceMessage,
			Name:      "counter",
			ChannelID: "C100",
			TS:        "1000.0001",
			Props:     map[string]any{"title": "hello"},
			State:     map[string]any{"count": 3},
		}

		err := store.Save(ctx, surfaceID, cont)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, surfaceID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cont.Name, loaded.Name)
		assert.Equal(t, cont.Kind, loaded.Kind)
		assert.Equal(t, "hello", loaded.Props["title"])
		// JSON persistence may widen numbers, so only check presence.
		assert.NotNil(t, loaded.State["count"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+surfaceID)
		assert.ErrorIs(t, err, domain.ErrContainerNotFound)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		cont := &domain.Container{SurfaceID: surfaceID, Kind: domain.SurfaceMessage, Name: "counter", State: map[string]any{"count": 4}}
		require.NoError(t, store.Save(ctx, surfaceID, cont))

		loaded, err := store.Load(ctx, surfaceID)
		require.NoError(t, err)
		assert.EqualValues(t, 4, loaded.State["count"])
	})

	t.Run("Delete", func(t *testing.T) {
		cont := &domain.Container{SurfaceID: surfaceID, Kind: domain.SurfaceModal, Name: "form", State: map[string]any{}}
		require.NoError(t, store.Save(ctx, surfaceID, cont))

		err := store.Delete(ctx, surfaceID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, surfaceID)
		assert.ErrorIs(t, err, domain.ErrContainerNotFound, "Load after Delete should return ErrContainerNotFound")
	})
}
