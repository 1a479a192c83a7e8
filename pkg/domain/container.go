package domain

// SurfaceKind identifies which kind of chat surface a container is bound to.
type SurfaceKind string

const (
	SurfaceMessage SurfaceKind = "message"
	SurfaceModal   SurfaceKind = "modal"
	SurfaceHome    SurfaceKind = "home"
)

// Container is the persisted unit of state for one live surface.
// It is stored as JSON under the surface identifier as key.
type Container struct {
	// SurfaceID is "channelID:ts" for a message, or the platform-issued
	// view identifier for a modal or home panel.
	SurfaceID string `json:"surface_id"`

	// Kind tells the engine which outbound update operation to use.
	Kind SurfaceKind `json:"kind"`

	// Name is the registry key of the component that renders this surface.
	Name string `json:"name"`

	// Props is the opaque props object passed at creation.
	Props map[string]any `json:"props,omitempty"`

	// State holds the persisted value of every named state slot the tree
	// declared. Keys are developer-chosen strings, flat per surface.
	State map[string]any `json:"state"`

	// LastRendered is the canonical serialization of the previous successful
	// render, used for change detection.
	LastRendered string `json:"last_rendered"`

	// ChannelID and TS locate a message surface for updates.
	ChannelID string `json:"channel_id,omitempty"`
	TS        string `json:"ts,omitempty"`

	// ViewID locates a modal or home surface for updates.
	ViewID string `json:"view_id,omitempty"`

	// ParentSurfaceID references the surface that opened this modal.
	// Only set when Kind == SurfaceModal.
	ParentSurfaceID string `json:"parent_surface_id,omitempty"`

	// ModalSlot is the identifier the parent used when it requested this
	// modal, disambiguating multiple modal-capable call sites on one parent.
	ModalSlot string `json:"modal_slot,omitempty"`
}

// MessageSurfaceID derives the container key for a message surface.
func MessageSurfaceID(channelID, ts string) string {
	return channelID + ":" + ts
}
