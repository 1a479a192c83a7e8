package marquee

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/marquee-kit/marquee/pkg/adapters/memory"
	"github.com/marquee-kit/marquee/pkg/adapters/slackhttp"
	"github.com/marquee-kit/marquee/pkg/adapters/slackweb"
	"github.com/marquee-kit/marquee/pkg/domain"
	"github.com/marquee-kit/marquee/pkg/observability"
	"github.com/marquee-kit/marquee/pkg/ports"
	"github.com/marquee-kit/marquee/pkg/session"
)

// Context is the per-render session handle passed to component functions.
type Context = session.Context

// ComponentFunc builds a surface's element tree for one render.
type ComponentFunc = session.ComponentFunc

// ModalSite declares a modal attachment point within a message component.
type ModalSite = session.ModalSite

// OpenModal opens a previously declared modal site.
type OpenModal = session.OpenModal

// User identifies the person who triggered an interaction.
type User = domain.User

// Event types delivered to component callbacks.
type (
	InteractionEvent = domain.InteractionEvent
	SelectEvent      = domain.SelectEvent
	MultiSelectEvent = domain.MultiSelectEvent
	DateEvent        = domain.DateEvent
	SubmitEvent      = domain.SubmitEvent
	SearchEvent      = domain.SearchEvent
)

// App is the high-level entry point: a registry, a session engine and the
// inbound HTTP handler wired together.
type App struct {
	registry *session.Registry
	engine   *session.Engine

	token         string
	signingSecret string
	homeComponent string
	store         ports.ContainerStore
	api           ports.SurfaceAPI
	locker        ports.DistributedLocker
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// Option configures the App.
type Option func(*App)

// WithLogger sets the structured logger used across the app.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithStore replaces the default in-memory container store.
func WithStore(store ports.ContainerStore) Option {
	return func(a *App) { a.store = store }
}

// WithSurfaceAPI replaces the default Slack Web API client. Useful for
// testing against a fake transport.
func WithSurfaceAPI(api ports.SurfaceAPI) Option {
	return func(a *App) { a.api = api }
}

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *App) { a.locker = locker }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New initializes an App. token authenticates outbound Web API calls;
// signingSecret verifies inbound request signatures.
func New(token, signingSecret string, opts ...Option) *App {
	a := &App{
		registry:      session.NewRegistry(),
		token:         token,
		signingSecret: signingSecret,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}
	if a.api == nil {
		a.api = slackweb.New(token)
	}

	engineOpts := []session.Option{}
	if a.logger != nil {
		engineOpts = append(engineOpts, session.WithLogger(a.logger))
	}
	if a.locker != nil {
		engineOpts = append(engineOpts, session.WithLocker(a.locker))
	}
	if a.metrics != nil {
		engineOpts = append(engineOpts, session.WithMetrics(a.metrics))
	}
	a.engine = session.New(a.store, a.api, a.registry, engineOpts...)
	return a
}

// RegisterMessage registers a message-surface component under the given name.
func (a *App) RegisterMessage(name string, fn ComponentFunc) {
	a.registry.RegisterMessage(name, fn)
}

// RegisterModal registers a modal-surface component under the given name.
func (a *App) RegisterModal(name string, fn ComponentFunc) {
	a.registry.RegisterModal(name, fn)
}

// RegisterHome registers a home-tab component and routes app_home_opened
// events to it.
func (a *App) RegisterHome(name string, fn ComponentFunc) {
	a.registry.RegisterHome(name, fn)
	a.homeComponent = name
}

// PostMessage renders the named message component and posts it to a channel.
// It returns the surface identifier of the new message.
func (a *App) PostMessage(ctx context.Context, name, channelID string, props map[string]any) (string, error) {
	return a.engine.PostMessage(ctx, name, channelID, props)
}

// Engine exposes the underlying session engine for direct dispatch.
func (a *App) Engine() *session.Engine { return a.engine }

// Handler returns the inbound HTTP handler serving /slack/interactions and
// /slack/events.
func (a *App) Handler() http.Handler {
	opts := []slackhttp.Option{}
	if a.logger != nil {
		opts = append(opts, slackhttp.WithLogger(a.logger))
	}
	if a.homeComponent != "" {
		opts = append(opts, slackhttp.WithHome(a.homeComponent))
	}
	return slackhttp.NewHandler(a.engine, a.signingSecret, opts...)
}

// UseState reads a typed state slot from the session, returning the current
// value and a setter. The slot is initialized on the surface's first render.
func UseState[T any](c *Context, key string, initial T) (T, func(T)) {
	return session.UseState(c, key, initial)
}
