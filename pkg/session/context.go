package session

import (
	"context"

	"github.com/mitchellh/mapstructure"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// Context is the render context handed to a component function. It wires the
// tree's named state slots to the surface's persisted container and exposes
// the modal-open capability. A Context is valid for the duration of one
// event; component functions must not retain it.
type Context struct {
	engine    *Engine
	container *domain.Container
	user      domain.User
	triggerID string

	// creating marks the initial render of a surface: state reads record
	// their defaults into the container.
	creating bool

	modalSites map[string]ModalSite

	// submission is set while resolving a modal submit/cancel against this
	// surface; firedSlots guarantees the matched callback fires at most once
	// even when the tree is rendered more than once for the event.
	submission    *submission
	firedSlots    map[string]bool
	submitEffects []domain.Effect
}

type submission struct {
	slot string
	form map[string]any // nil means the modal was cancelled
	user domain.User
}

// User returns the user the current event is associated with.
func (c *Context) User() domain.User { return c.user }

// Props returns the opaque props object the surface was created with.
func (c *Context) Props() map[string]any { return c.container.Props }

// BindProps decodes the surface's props into a typed struct.
func (c *Context) BindProps(v any) error {
	return weakDecode(c.container.Props, v)
}

// State reads a named state slot, declaring it with the given default on the
// surface's first render. The returned setter writes the slot; writes are
// persisted with the container once the event completes.
func (c *Context) State(key string, initial any) (any, func(any)) {
	set := func(v any) { c.container.State[key] = v }
	if c.creating {
		c.container.State[key] = initial
		return initial, set
	}
	if v, ok := c.container.State[key]; ok {
		return v, set
	}
	return initial, set
}

// UseState is the typed form of Context.State. Values coming back from the
// store have been through JSON, so numbers arrive as float64; the decode
// step restores the declared type.
func UseState[T any](c *Context, key string, initial T) (T, func(T)) {
	v, set := c.State(key, initial)
	typed, ok := v.(T)
	if !ok {
		if err := weakDecode(v, &typed); err != nil {
			typed = initial
		}
	}
	return typed, func(v T) { set(v) }
}

// ModalSite declares one modal-capable call site on a surface: the slot
// identifier disambiguating it from other call sites, the registered name of
// the modal component, and the callbacks dispatched when the opened modal is
// submitted or cancelled.
type ModalSite struct {
	Slot     string
	Modal    string
	OnSubmit func(ctx context.Context, ev domain.SubmitEvent) error
	OnCancel func(ctx context.Context, ev domain.InteractionEvent) error
}

// OpenModal opens the modal declared by a ModalSite. It may only be invoked
// from inside a callback, while the event's trigger token is still valid.
type OpenModal func(ctx context.Context, props map[string]any) error

// Modal declares a modal call site and returns the capability that opens it.
// During submission handling the site whose slot matches the closing modal
// has exactly one of its OnSubmit/OnCancel callbacks dispatched.
func (c *Context) Modal(site ModalSite) OpenModal {
	c.modalSites[site.Slot] = site

	if c.submission != nil && site.Slot == c.submission.slot && !c.firedSlots[site.Slot] {
		c.firedSlots[site.Slot] = true
		switch {
		case c.submission.form != nil && site.OnSubmit != nil:
			ev := domain.SubmitEvent{User: c.submission.user, Form: c.submission.form}
			c.submitEffects = append(c.submitEffects, func(ctx context.Context) error {
				return site.OnSubmit(ctx, ev)
			})
		case c.submission.form == nil && site.OnCancel != nil:
			ev := domain.InteractionEvent{User: c.submission.user}
			c.submitEffects = append(c.submitEffects, func(ctx context.Context) error {
				return site.OnCancel(ctx, ev)
			})
		}
	}

	return func(ctx context.Context, props map[string]any) error {
		return c.engine.openModal(ctx, c, site, props)
	}
}

func weakDecode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
