package kit

import (
	"context"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// Message is the root component of a message surface.
type Message struct {
	// Text is the notification fallback text.
	Text   string
	Blocks []Element
}

func (m *Message) Build(Scope) (*Node, error) {
	n := NewNode("")
	n.Set("blocks", []*Node{})
	if m.Text != "" {
		n.Set("text", m.Text)
	}
	return n, nil
}

func (m *Message) ChildElements() []Element { return m.Blocks }

// Modal is the root component of a modal surface. Title, Submit and Close
// are label-role values.
type Modal struct {
	Title  any
	Submit any
	Close  any
	Blocks []Element
}

func (m *Modal) Build(s Scope) (*Node, error) {
	n := NewNode("modal")
	n.Set("blocks", []*Node{})
	for key, v := range map[string]any{"title": m.Title, "submit": m.Submit, "close": m.Close} {
		if v == nil {
			continue
		}
		tn, err := asPlainText(s, v)
		if err != nil {
			return nil, err
		}
		n.Set(key, tn)
	}
	return n, nil
}

func (m *Modal) ChildElements() []Element { return m.Blocks }

// Home is the root component of a home panel surface. OnLoad fires once when
// the panel is first opened for a user; OnUpdate fires before every refresh
// of an existing panel.
type Home struct {
	Blocks   []Element
	OnLoad   func(ctx context.Context, ev domain.InteractionEvent) error
	OnUpdate func(ctx context.Context, ev domain.InteractionEvent) error
}

func (h *Home) Build(s Scope) (*Node, error) {
	n := NewNode("home")
	n.Set("blocks", []*Node{})
	if h.OnLoad != nil {
		s.OnAction(string(domain.ActionOnLoad), func(ctx context.Context, ev domain.Event) error {
			return h.OnLoad(ctx, interaction(ev))
		})
	}
	if h.OnUpdate != nil {
		s.OnAction(string(domain.ActionOnUpdate), func(ctx context.Context, ev domain.Event) error {
			return h.OnUpdate(ctx, interaction(ev))
		})
	}
	return n, nil
}

func (h *Home) ChildElements() []Element { return h.Blocks }
