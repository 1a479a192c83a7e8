package kit

import (
	"context"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// Button is an interactive button element. Action is the developer-chosen
// identifier matched against incoming action tokens; it must be unique
// within a surface.
type Button struct {
	Action  string
	Label   string
	Value   string
	URL     string
	Style   string // "primary" or "danger"
	Emoji   bool
	Confirm Element
	OnClick func(ctx context.Context, ev domain.InteractionEvent) error
}

func (b *Button) Build(s Scope) (*Node, error) {
	n := NewNode("button")
	label := NewNode("plain_text")
	label.Set("text", b.Label)
	if b.Emoji {
		label.Set("emoji", true)
	}
	n.Set("text", label)
	if b.Action != "" {
		n.Set("action_id", b.Action)
	}
	if b.Value != "" {
		n.Set("value", b.Value)
	}
	if b.URL != "" {
		n.Set("url", b.URL)
	}
	if b.Style != "" {
		n.Set("style", b.Style)
	}
	if err := setConfirm(s, n, b.Confirm); err != nil {
		return nil, err
	}
	if b.OnClick != nil {
		s.OnAction(b.Action, func(ctx context.Context, ev domain.Event) error {
			return b.OnClick(ctx, interaction(ev))
		})
	}
	return n, nil
}

func (b *Button) ChildElements() []Element { return nil }

// Confirm is a confirmation dialog attached to an interactive element.
// Title, Confirm and Deny are label-role values; Text is the dialog body and
// may keep its authored formatting.
type Confirm struct {
	Title   any
	Confirm any
	Deny    any
	Text    any
}

func (c *Confirm) Build(s Scope) (*Node, error) {
	n := NewNode("")
	n.role = RoleConfirm
	for key, v := range map[string]any{"title": c.Title, "confirm": c.Confirm, "deny": c.Deny} {
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

func (c *Confirm) ChildElements() []Element {
	if c.Text == nil {
		return nil
	}
	return []Element{textElement(c.Text)}
}

// Option is a selectable entry in a choice holder. The link field is only
// valid inside an overflow menu; choice holders strip it on append.
type Option struct {
	Value       string
	Label       any
	Description any
	URL         string
	Selected    bool
}

func (o *Option) Build(s Scope) (*Node, error) {
	n := NewNode("")
	n.role = RoleOption
	n.selected = o.Selected
	n.Set("value", o.Value)
	if o.URL != "" {
		n.Set("url", o.URL)
	}
	if o.Description != nil {
		dn, err := asPlainText(s, o.Description)
		if err != nil {
			return nil, err
		}
		n.Set("description", dn)
	}
	return n, nil
}

func (o *Option) ChildElements() []Element {
	if o.Label == nil {
		return nil
	}
	return []Element{textElement(o.Label)}
}

// OptionGroup groups options under a label inside a static select. The first
// group appended to a select decides that the menu is grouped.
type OptionGroup struct {
	Label   any
	Options []Element
}

func (g *OptionGroup) Build(s Scope) (*Node, error) {
	n := NewNode("")
	n.role = RoleOptionGroup
	n.Set("options", []*Node{})
	if g.Label != nil {
		ln, err := asPlainText(s, g.Label)
		if err != nil {
			return nil, err
		}
		n.Set("label", ln)
	}
	return n, nil
}

func (g *OptionGroup) ChildElements() []Element { return g.Options }

// DatePicker is a date selection element.
type DatePicker struct {
	Action      string
	Placeholder any
	InitialDate string
	Confirm     Element
	OnSelect    func(ctx context.Context, ev domain.DateEvent) error
}

func (d *DatePicker) Build(s Scope) (*Node, error) {
	n := NewNode("datepicker")
	if d.Action != "" {
		n.Set("action_id", d.Action)
	}
	if err := setPlaceholder(s, n, d.Placeholder); err != nil {
		return nil, err
	}
	if d.InitialDate != "" {
		n.Set("initial_date", d.InitialDate)
	}
	if err := setConfirm(s, n, d.Confirm); err != nil {
		return nil, err
	}
	if d.OnSelect != nil {
		s.OnAction(d.Action, func(ctx context.Context, ev domain.Event) error {
			de, ok := ev.(domain.DateEvent)
			if !ok {
				de = domain.DateEvent{User: ev.EventUser()}
			}
			return d.OnSelect(ctx, de)
		})
	}
	return n, nil
}

func (d *DatePicker) ChildElements() []Element { return nil }

// Checkboxes is a multi-choice group of options.
type Checkboxes struct {
	Action   string
	Options  []Element
	Confirm  Element
	OnSelect func(ctx context.Context, ev domain.MultiSelectEvent) error
}

func (c *Checkboxes) Build(s Scope) (*Node, error) {
	n := NewNode("checkboxes")
	n.Set("options", []*Node{})
	if c.Action != "" {
		n.Set("action_id", c.Action)
	}
	if err := setConfirm(s, n, c.Confirm); err != nil {
		return nil, err
	}
	if c.OnSelect != nil {
		s.OnAction(c.Action, func(ctx context.Context, ev domain.Event) error {
			return c.OnSelect(ctx, multiSelect(ev))
		})
	}
	return n, nil
}

func (c *Checkboxes) ChildElements() []Element { return c.Options }

// RadioButtons is a single-choice group of options.
type RadioButtons struct {
	Action   string
	Options  []Element
	Confirm  Element
	OnSelect func(ctx context.Context, ev domain.SelectEvent) error
}

func (r *RadioButtons) Build(s Scope) (*Node, error) {
	n := NewNode("radio_buttons")
	n.Set("options", []*Node{})
	if r.Action != "" {
		n.Set("action_id", r.Action)
	}
	if err := setConfirm(s, n, r.Confirm); err != nil {
		return nil, err
	}
	if r.OnSelect != nil {
		s.OnAction(r.Action, func(ctx context.Context, ev domain.Event) error {
			return r.OnSelect(ctx, singleSelect(ev))
		})
	}
	return n, nil
}

func (r *RadioButtons) ChildElements() []Element { return r.Options }

// OverflowMenu is a compact menu of options; options here may carry links.
type OverflowMenu struct {
	Action   string
	Options  []Element
	Confirm  Element
	OnSelect func(ctx context.Context, ev domain.SelectEvent) error
}

func (o *OverflowMenu) Build(s Scope) (*Node, error) {
	n := NewNode("overflow")
	n.Set("options", []*Node{})
	if o.Action != "" {
		n.Set("action_id", o.Action)
	}
	if err := setConfirm(s, n, o.Confirm); err != nil {
		return nil, err
	}
	if o.OnSelect != nil {
		s.OnAction(o.Action, func(ctx context.Context, ev domain.Event) error {
			return o.OnSelect(ctx, singleSelect(ev))
		})
	}
	return n, nil
}

func (o *OverflowMenu) ChildElements() []Element { return o.Options }

// TextField is a free-text input element for modal forms.
type TextField struct {
	Action       string
	Placeholder  any
	InitialValue string
	Multiline    bool
	MinLength    int
	MaxLength    int
}

func (t *TextField) Build(s Scope) (*Node, error) {
	n := NewNode("plain_text_input")
	if t.Action != "" {
		n.Set("action_id", t.Action)
	}
	if err := setPlaceholder(s, n, t.Placeholder); err != nil {
		return nil, err
	}
	if t.InitialValue != "" {
		n.Set("initial_value", t.InitialValue)
	}
	if t.Multiline {
		n.Set("multiline", true)
	}
	if t.MinLength > 0 {
		n.Set("min_length", t.MinLength)
	}
	if t.MaxLength > 0 {
		n.Set("max_length", t.MaxLength)
	}
	return n, nil
}

func (t *TextField) ChildElements() []Element { return nil }

// Input is a labeled input block wrapping a single form element.
type Input struct {
	Label    any
	Hint     any
	Optional bool
	Element  Element
}

func (i *Input) Build(s Scope) (*Node, error) {
	n := NewNode("input")
	ln, err := asPlainText(s, i.Label)
	if err != nil {
		return nil, err
	}
	n.Set("label", ln)
	if i.Hint != nil {
		hn, err := asPlainText(s, i.Hint)
		if err != nil {
			return nil, err
		}
		n.Set("hint", hn)
	}
	if i.Optional {
		n.Set("optional", true)
	}
	return n, nil
}

func (i *Input) ChildElements() []Element {
	if i.Element == nil {
		return nil
	}
	return []Element{i.Element}
}

func setConfirm(s Scope, n *Node, confirm Element) error {
	if confirm == nil {
		return nil
	}
	cn, err := s.Reconcile(confirm)
	if err != nil {
		return err
	}
	n.Set("confirm", cn)
	return nil
}

func setPlaceholder(s Scope, n *Node, placeholder any) error {
	if placeholder == nil {
		return nil
	}
	pn, err := asPlainText(s, placeholder)
	if err != nil {
		return err
	}
	n.Set("placeholder", pn)
	return nil
}

func interaction(ev domain.Event) domain.InteractionEvent {
	if ie, ok := ev.(domain.InteractionEvent); ok {
		return ie
	}
	return domain.InteractionEvent{User: ev.EventUser()}
}

func singleSelect(ev domain.Event) domain.SelectEvent {
	if se, ok := ev.(domain.SelectEvent); ok {
		return se
	}
	return domain.SelectEvent{User: ev.EventUser()}
}

func multiSelect(ev domain.Event) domain.MultiSelectEvent {
	if me, ok := ev.(domain.MultiSelectEvent); ok {
		return me
	}
	return domain.MultiSelectEvent{User: ev.EventUser()}
}
