package domain

import "errors"

// ErrContainerNotFound is returned when a surface identifier cannot be resolved
// to a persisted container. This is fatal for the event: it indicates store
// corruption or a stale reference, never a condition to silently ignore.
var ErrContainerNotFound = errors.New("surface container not found")

// ErrUnknownComponent is returned when a container references a component name
// that is not registered.
var ErrUnknownComponent = errors.New("unknown component")

// ErrSlotConflict is returned when two children claim a single-value slot
// (for example two elements assigned to an input's element slot).
var ErrSlotConflict = errors.New("slot already filled")

// ErrCannotAppend is returned when a child node has no aggregation rule for
// its parent. Construction errors abort the whole render; no partial
// document is ever produced.
var ErrCannotAppend = errors.New("cannot append child to parent")

// ErrNoSearchHandler is returned when an option search event fires for a
// control that declared no search callback.
var ErrNoSearchHandler = errors.New("no search handler for control")

// ErrMissingTrigger is returned when a modal open is attempted outside an
// interaction that carries a trigger token.
var ErrMissingTrigger = errors.New("no trigger token for modal open")
