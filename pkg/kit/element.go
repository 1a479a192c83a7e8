package kit

import (
	"context"
	"fmt"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// Callback is a normalized control callback invoked with the event mapped
// for the firing control's kind.
type Callback func(ctx context.Context, ev domain.Event) error

// SearchHandler produces the option elements for a typeahead query against
// an external select menu.
type SearchHandler func(ctx context.Context, ev domain.SearchEvent) ([]Element, error)

// Scope is the reconciler's face toward a component build. Reconcile walks
// an element-valued property inline (accessory, confirm, title); OnAction
// and OnSearch register the component's callbacks for action matching.
type Scope interface {
	Reconcile(Element) (*Node, error)
	OnAction(actionID string, cb Callback)
	OnSearch(actionID string, h SearchHandler)
}

// Element is one node in the declarative surface tree. Instances are created
// fresh for every render pass and discarded afterwards.
type Element interface {
	// Build constructs the output node for this element's own properties.
	Build(s Scope) (*Node, error)

	// ChildElements lists the children the reconciler appends to the built
	// node, in order.
	ChildElements() []Element
}

// textElement lifts a string-or-Element value into an Element. A plain
// string is treated as plain, unformatted text.
func textElement(v any) Element {
	switch t := v.(type) {
	case string:
		return Plain(t)
	case Element:
		return t
	default:
		return badElement{v: v}
	}
}

type badElement struct{ v any }

func (b badElement) Build(Scope) (*Node, error) {
	return nil, fmt.Errorf("value %T cannot be used as a text component", b.v)
}

func (b badElement) ChildElements() []Element { return nil }

// asText reconciles a text-role value, keeping the authored variant
// (plain_text or mrkdwn).
func asText(s Scope, v any) (*Node, error) {
	if v == nil {
		return nil, nil
	}
	return s.Reconcile(textElement(v))
}

// asPlainText reconciles a label-role value and coerces the result to the
// plain text variant; the target format forbids rich text in these slots.
func asPlainText(s Scope, v any) (*Node, error) {
	n, err := asText(s, v)
	if err != nil || n == nil {
		return n, err
	}
	coercePlain(n)
	return n, nil
}

func coercePlain(n *Node) {
	if t := n.Type(); t == "mrkdwn" || t == "text" {
		n.Set("type", "plain_text")
		delete(n.fields, "verbatim")
	}
}
