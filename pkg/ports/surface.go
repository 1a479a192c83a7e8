package ports

import (
	"context"
	"encoding/json"
)

// MessageRef identifies a posted message.
type MessageRef struct {
	ChannelID string
	TS        string
}

// SurfaceAPI is the outbound chat platform boundary. Documents are passed as
// serialized JSON; the engine owns serialization so the adapter stays a thin
// transport. Errors surface to the caller of the top-level operation and the
// container is never persisted for a document that was not delivered.
type SurfaceAPI interface {
	// PostMessage posts a new message document to a channel.
	PostMessage(ctx context.Context, doc json.RawMessage, channelID string) (MessageRef, error)

	// UpdateMessage replaces the document of an existing message.
	UpdateMessage(ctx context.Context, doc json.RawMessage, channelID, ts string) error

	// OpenView opens a modal using the interaction's trigger token and
	// returns the platform-issued view identifier.
	OpenView(ctx context.Context, doc json.RawMessage, triggerID string) (string, error)

	// UpdateView replaces the document of an open modal.
	UpdateView(ctx context.Context, doc json.RawMessage, viewID string) error

	// PublishHome publishes a user's home panel and returns the view
	// identifier.
	PublishHome(ctx context.Context, doc json.RawMessage, userID string) (string, error)

	// UpdateHome republishes an existing home panel.
	UpdateHome(ctx context.Context, doc json.RawMessage, viewID string) error
}
