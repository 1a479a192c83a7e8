package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marquee-kit/marquee/internal/logging"
	"github.com/marquee-kit/marquee/pkg/domain"
	"github.com/marquee-kit/marquee/pkg/kit"
	"github.com/marquee-kit/marquee/pkg/observability"
	"github.com/marquee-kit/marquee/pkg/ports"
	"github.com/marquee-kit/marquee/pkg/reconciler"
)

// Engine drives the surface lifecycle: create, action handling, modal
// open/submit/cancel, home panel refresh and typeahead option search.
type Engine struct {
	store    ports.ContainerStore
	api      ports.SurfaceAPI
	registry *Registry

	locks   *lockManager
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures the engine's logger. Defaults to a no-op.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithLocker enables distributed per-surface locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = locker }
}

// WithLockTTL sets the distributed lock expiration. Default 30s.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.lockTTL = ttl }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates a session engine over the given store, outbound API and
// component registry.
func New(store ports.ContainerStore, api ports.SurfaceAPI, registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		api:      api,
		registry: registry,
		lockTTL:  30 * time.Second,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.locks = newLockManager(e.locker, e.lockTTL, e.logger)
	return e
}

func (e *Engine) newContext(cont *domain.Container, creating bool) *Context {
	return &Context{
		engine:     e,
		container:  cont,
		creating:   creating,
		modalSites: make(map[string]ModalSite),
		firedSlots: make(map[string]bool),
	}
}

// renderPass builds a fresh tree and reconciles it once.
func (e *Engine) renderPass(c *Context, fn ComponentFunc, action *domain.Action) (*reconciler.Result, error) {
	return reconciler.Reconcile(fn(c), action)
}

// await completes every pending effect before the authoritative render. A
// failing effect fails the whole event; no update is pushed for it.
func (e *Engine) await(ctx context.Context, effects []domain.Effect) error {
	if len(effects) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, eff := range effects {
		eff := eff
		g.Go(func() error { return eff(ctx) })
	}
	return g.Wait()
}

// renderEvent runs the two-pass cycle: one pass to fire the matching
// callbacks, a wait for their effects, and a clean pass producing the
// document to persist and push.
func (e *Engine) renderEvent(ctx context.Context, c *Context, fn ComponentFunc, action *domain.Action) (*kit.Node, error) {
	defer e.metrics.ObserveRender(time.Now())
	if action != nil {
		res, err := e.renderPass(c, fn, action)
		if err != nil {
			return nil, err
		}
		if err := e.await(ctx, res.Effects); err != nil {
			return nil, err
		}
	}
	res, err := e.renderPass(c, fn, nil)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// PostMessage renders a registered message component and posts it to a
// channel. It returns the new surface identifier ("channelID:ts").
func (e *Engine) PostMessage(ctx context.Context, name, channelID string, props map[string]any) (surfaceID string, err error) {
	defer func() { e.metrics.ObserveEvent("post_message", err) }()

	reg, err := e.registry.lookupKind(name, domain.SurfaceMessage)
	if err != nil {
		return "", err
	}

	cont := &domain.Container{
		Kind:  domain.SurfaceMessage,
		Name:  name,
		Props: props,
		State: make(map[string]any),
	}
	c := e.newContext(cont, true)
	doc, err := e.renderEvent(ctx, c, reg.fn, nil)
	if err != nil {
		return "", err
	}
	canonical, err := kit.Canonical(doc)
	if err != nil {
		return "", err
	}

	ref, err := e.api.PostMessage(ctx, json.RawMessage(canonical), channelID)
	if err != nil {
		return "", fmt.Errorf("post message: %w", err)
	}

	surfaceID = domain.MessageSurfaceID(ref.ChannelID, ref.TS)
	cont.SurfaceID = surfaceID
	cont.ChannelID = ref.ChannelID
	cont.TS = ref.TS
	cont.LastRendered = canonical
	if err := e.store.Save(ctx, surfaceID, cont); err != nil {
		return "", fmt.Errorf("save container: %w", err)
	}
	e.logger.Debug("message surface created", "surface", surfaceID, "component", name)
	return surfaceID, nil
}

// HandleAction processes one block_actions payload: it resolves the
// container, replays each fired control against the tree, awaits the
// resulting effects and pushes an update when the document changed.
func (e *Engine) HandleAction(ctx context.Context, p domain.ActionPayload) (err error) {
	defer func() { e.metrics.ObserveEvent("action", err) }()

	key := p.Container.SurfaceID()
	actions := make([]domain.Action, 0, len(p.Actions))
	for _, ra := range p.Actions {
		// A routed action id carries its own surface identifier; unpack it
		// before container lookup.
		sid, aid := domain.SplitActionID(ra.ActionID)
		if sid != "" {
			key = sid
		}
		actions = append(actions, domain.Action{
			ID:    aid,
			Type:  domain.ActionInteraction,
			Event: domain.EventForAction(ra, p.User),
		})
	}

	return e.locks.WithLock(ctx, key, func(ctx context.Context) error {
		cont, reg, err := e.resolve(ctx, key)
		if err != nil {
			return err
		}
		c := e.newContext(cont, false)
		c.user = p.User
		c.triggerID = p.TriggerID

		start := time.Now()
		for i := range actions {
			res, err := e.renderPass(c, reg.fn, &actions[i])
			if err != nil {
				return err
			}
			if err := e.await(ctx, res.Effects); err != nil {
				return err
			}
		}
		res, err := e.renderPass(c, reg.fn, nil)
		if err != nil {
			return err
		}
		e.metrics.ObserveRender(start)

		return e.pushAndSave(ctx, cont, res.Document)
	})
}

// HandleSubmission processes a view_submission or view_closed payload for a
// modal surface: the parent tree is rendered to locate the matching modal
// call site, exactly one of its submit/cancel callbacks fires, and the
// parent surface is updated. The modal container is retired afterwards.
func (e *Engine) HandleSubmission(ctx context.Context, p domain.ViewPayload) (err error) {
	defer func() { e.metrics.ObserveEvent("submission", err) }()

	viewID := p.View.ID
	modalCont, err := e.store.Load(ctx, viewID)
	if err != nil {
		return fmt.Errorf("load modal container %q: %w", viewID, err)
	}

	parentKey := modalCont.ParentSurfaceID
	return e.locks.WithLock(ctx, parentKey, func(ctx context.Context) error {
		cont, reg, err := e.resolve(ctx, parentKey)
		if err != nil {
			return err
		}

		var form map[string]any
		if p.Submitted() {
			form = domain.BuildForm(p.View.State.Values)
		}

		c := e.newContext(cont, false)
		c.user = p.User
		c.submission = &submission{slot: modalCont.ModalSlot, form: form, user: p.User}

		// First render locates the matching call site and queues its
		// callback; firedSlots keeps the dispatch at-most-once across
		// renders.
		if _, err := e.renderPass(c, reg.fn, nil); err != nil {
			return err
		}
		if err := e.await(ctx, c.submitEffects); err != nil {
			return err
		}
		res, err := e.renderPass(c, reg.fn, nil)
		if err != nil {
			return err
		}
		if err := e.pushAndSave(ctx, cont, res.Document); err != nil {
			return err
		}

		if err := e.store.Delete(ctx, viewID); err != nil {
			return fmt.Errorf("retire modal container %q: %w", viewID, err)
		}
		return nil
	})
}

// HandleHome processes an app home opened event for the named home
// component. First open runs the component's onLoad callback before the
// initial publish; later opens fire onUpdate and republish only on change.
func (e *Engine) HandleHome(ctx context.Context, name string, p domain.HomePayload) (err error) {
	defer func() { e.metrics.ObserveEvent("home", err) }()

	reg, err := e.registry.lookupKind(name, domain.SurfaceHome)
	if err != nil {
		return err
	}

	if p.ViewID != "" {
		err := e.locks.WithLock(ctx, p.ViewID, func(ctx context.Context) error {
			cont, loadErr := e.store.Load(ctx, p.ViewID)
			if loadErr != nil {
				return loadErr
			}
			c := e.newContext(cont, false)
			c.user = p.User
			action := &domain.Action{
				ID:    string(domain.ActionOnUpdate),
				Type:  domain.ActionOnUpdate,
				Event: domain.InteractionEvent{User: p.User},
			}
			doc, err := e.renderEvent(ctx, c, reg.fn, action)
			if err != nil {
				return err
			}
			return e.pushAndSave(ctx, cont, doc)
		})
		if err == nil || !errors.Is(err, domain.ErrContainerNotFound) {
			return err
		}
		// No container for the view: fall through to the first-open path.
	}

	cont := &domain.Container{
		Kind:  domain.SurfaceHome,
		Name:  name,
		State: make(map[string]any),
	}
	c := e.newContext(cont, true)
	c.user = p.User
	action := &domain.Action{
		ID:    string(domain.ActionOnLoad),
		Type:  domain.ActionOnLoad,
		Event: domain.InteractionEvent{User: p.User},
	}
	doc, err := e.renderEvent(ctx, c, reg.fn, action)
	if err != nil {
		return err
	}
	canonical, err := kit.Canonical(doc)
	if err != nil {
		return err
	}
	viewID, err := e.api.PublishHome(ctx, json.RawMessage(canonical), p.User.ID)
	if err != nil {
		return fmt.Errorf("publish home: %w", err)
	}
	cont.SurfaceID = viewID
	cont.ViewID = viewID
	cont.LastRendered = canonical
	if err := e.store.Save(ctx, viewID, cont); err != nil {
		return fmt.Errorf("save container: %w", err)
	}
	e.logger.Debug("home surface created", "surface", viewID, "component", name)
	return nil
}

// OptionsResponse is the immediate reply to a typeahead query: a flat option
// list or its grouped form, never both.
type OptionsResponse struct {
	Options      []*kit.Node `json:"options,omitempty"`
	OptionGroups []*kit.Node `json:"option_groups,omitempty"`
}

// HandleSearch resolves a block_suggestion query: it locates the search
// callback declared for the firing control, invokes it with the query, and
// reconciles the returned options through the choice-holder rules. This path
// never writes persisted state and never pushes a surface update.
func (e *Engine) HandleSearch(ctx context.Context, p domain.SuggestionPayload) (resp *OptionsResponse, err error) {
	defer func() { e.metrics.ObserveEvent("search", err) }()

	key := p.Container.SurfaceID()
	sid, aid := domain.SplitActionID(p.ActionID)
	if sid != "" {
		key = sid
	}

	cont, reg, err := e.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	c := e.newContext(cont, false)
	c.user = p.User

	action := &domain.Action{
		ID:    aid,
		Type:  domain.ActionInteraction,
		Event: domain.InteractionEvent{User: p.User},
	}
	res, err := reconciler.CaptureSearch(reg.fn(c), action)
	if err != nil {
		return nil, err
	}
	if res.Search == nil {
		return nil, fmt.Errorf("%q: %w", aid, domain.ErrNoSearchHandler)
	}

	elems, err := res.Search(ctx, domain.SearchEvent{User: p.User, Query: p.Value})
	if err != nil {
		return nil, fmt.Errorf("search callback: %w", err)
	}

	menu, err := reconciler.Reconcile(&kit.SelectMenu{Options: elems}, nil)
	if err != nil {
		return nil, err
	}
	if groups := menu.Document.List("option_groups"); len(groups) > 0 {
		return &OptionsResponse{OptionGroups: groups}, nil
	}
	return &OptionsResponse{Options: menu.Document.List("options")}, nil
}

// openModal renders a modal component fresh, opens it with the current
// interaction's trigger token and records the child container linking back
// to the invoking surface.
func (e *Engine) openModal(ctx context.Context, parent *Context, site ModalSite, props map[string]any) error {
	if parent.triggerID == "" {
		return domain.ErrMissingTrigger
	}
	reg, err := e.registry.lookupKind(site.Modal, domain.SurfaceModal)
	if err != nil {
		return err
	}

	cont := &domain.Container{
		Kind:            domain.SurfaceModal,
		Name:            site.Modal,
		Props:           props,
		State:           make(map[string]any),
		ParentSurfaceID: parent.container.SurfaceID,
		ModalSlot:       site.Slot,
	}
	c := e.newContext(cont, true)
	c.user = parent.user

	doc, err := e.renderEvent(ctx, c, reg.fn, nil)
	if err != nil {
		return err
	}
	// Cancellation is only delivered when the platform is told to notify.
	doc.Set("notify_on_close", true)
	canonical, err := kit.Canonical(doc)
	if err != nil {
		return err
	}

	viewID, err := e.api.OpenView(ctx, json.RawMessage(canonical), parent.triggerID)
	if err != nil {
		return fmt.Errorf("open modal: %w", err)
	}
	cont.SurfaceID = viewID
	cont.ViewID = viewID
	cont.LastRendered = canonical
	if err := e.store.Save(ctx, viewID, cont); err != nil {
		return fmt.Errorf("save modal container: %w", err)
	}
	e.logger.Debug("modal surface opened",
		"surface", viewID, "component", site.Modal, "parent", cont.ParentSurfaceID, "slot", site.Slot)
	return nil
}

// pushAndSave compares the new document against the previous render, pushes
// the update appropriate for the surface kind when they differ, and persists
// the container. Outbound failure leaves the container untouched so the
// persisted state never drifts from what was actually delivered.
func (e *Engine) pushAndSave(ctx context.Context, cont *domain.Container, doc *kit.Node) error {
	if cont.Kind == domain.SurfaceModal {
		doc.Set("notify_on_close", true)
	}
	canonical, err := kit.Canonical(doc)
	if err != nil {
		return err
	}

	if canonical != cont.LastRendered {
		raw := json.RawMessage(canonical)
		switch cont.Kind {
		case domain.SurfaceMessage:
			err = e.api.UpdateMessage(ctx, raw, cont.ChannelID, cont.TS)
		case domain.SurfaceModal:
			err = e.api.UpdateView(ctx, raw, cont.ViewID)
		case domain.SurfaceHome:
			err = e.api.UpdateHome(ctx, raw, cont.ViewID)
		}
		if err != nil {
			return fmt.Errorf("push %s update: %w", cont.Kind, err)
		}
		e.metrics.ObservePush(true)
	} else {
		e.metrics.ObservePush(false)
	}

	cont.LastRendered = canonical
	if err := e.store.Save(ctx, cont.SurfaceID, cont); err != nil {
		return fmt.Errorf("save container: %w", err)
	}
	return nil
}

func (e *Engine) resolve(ctx context.Context, key string) (*domain.Container, registration, error) {
	cont, err := e.store.Load(ctx, key)
	if err != nil {
		return nil, registration{}, fmt.Errorf("load container %q: %w", key, err)
	}
	reg, err := e.registry.lookup(cont.Name)
	if err != nil {
		return nil, registration{}, err
	}
	return cont, reg, nil
}
