package session

import (
	"fmt"
	"sync"

	"github.com/marquee-kit/marquee/pkg/domain"
	"github.com/marquee-kit/marquee/pkg/kit"
)

// ComponentFunc builds the component tree for one render pass. It is called
// once per pass and must not retain the Context beyond the call.
type ComponentFunc func(c *Context) kit.Element

type registration struct {
	kind domain.SurfaceKind
	fn   ComponentFunc
}

// Registry maps component names to the trees that render them. It replaces
// ambient global state: construct one, register every component, and pass it
// to the engine. Lifecycle is process lifetime.
type Registry struct {
	mu         sync.RWMutex
	components map[string]registration
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]registration)}
}

// RegisterMessage registers a message surface component under a name.
// Registering the same name twice overwrites the previous entry.
func (r *Registry) RegisterMessage(name string, fn ComponentFunc) {
	r.register(name, domain.SurfaceMessage, fn)
}

// RegisterModal registers a modal surface component under a name.
func (r *Registry) RegisterModal(name string, fn ComponentFunc) {
	r.register(name, domain.SurfaceModal, fn)
}

// RegisterHome registers a home panel component under a name.
func (r *Registry) RegisterHome(name string, fn ComponentFunc) {
	r.register(name, domain.SurfaceHome, fn)
}

func (r *Registry) register(name string, kind domain.SurfaceKind, fn ComponentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = registration{kind: kind, fn: fn}
}

func (r *Registry) lookup(name string) (registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.components[name]
	if !ok {
		return registration{}, fmt.Errorf("%q: %w", name, domain.ErrUnknownComponent)
	}
	return reg, nil
}

func (r *Registry) lookupKind(name string, kind domain.SurfaceKind) (registration, error) {
	reg, err := r.lookup(name)
	if err != nil {
		return registration{}, err
	}
	if reg.kind != kind {
		return registration{}, fmt.Errorf("component %q is registered as %s, not %s: %w",
			name, reg.kind, kind, domain.ErrUnknownComponent)
	}
	return reg, nil
}
