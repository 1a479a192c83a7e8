package kit

import (
	"context"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// DataSource selects where a select menu's options come from.
type DataSource string

const (
	SourceStatic        DataSource = "static"
	SourceUsers         DataSource = "users"
	SourceChannels      DataSource = "channels"
	SourceConversations DataSource = "conversations"
	SourceExternal      DataSource = "external"
)

func selectType(source DataSource, multi bool) string {
	s := source
	if s == "" {
		s = SourceStatic
	}
	typ := string(s) + "_select"
	if multi {
		typ = "multi_" + typ
	}
	return typ
}

// SelectMenu is a single-choice select. With SourceStatic the Options
// children supply the choices (Option or OptionGroup elements); with
// SourceExternal the OnSearch handler is queried as the user types; the
// remaining sources are populated by the platform.
type SelectMenu struct {
	Action      string
	Placeholder any
	Source      DataSource
	Options     []Element

	InitialUser         string
	InitialChannel      string
	InitialConversation string
	MinQueryLength      int

	Confirm  Element
	OnSelect func(ctx context.Context, ev domain.SelectEvent) error
	OnSearch SearchHandler
}

func (m *SelectMenu) Build(s Scope) (*Node, error) {
	n := NewNode(selectType(m.Source, false))
	if m.Action != "" {
		n.Set("action_id", m.Action)
	}
	if err := setPlaceholder(s, n, m.Placeholder); err != nil {
		return nil, err
	}
	switch m.Source {
	case SourceUsers:
		if m.InitialUser != "" {
			n.Set("initial_user", m.InitialUser)
		}
	case SourceChannels:
		if m.InitialChannel != "" {
			n.Set("initial_channel", m.InitialChannel)
		}
	case SourceConversations:
		if m.InitialConversation != "" {
			n.Set("initial_conversation", m.InitialConversation)
		}
	case SourceExternal:
		if m.MinQueryLength > 0 {
			n.Set("min_query_length", m.MinQueryLength)
		}
	}
	if err := setConfirm(s, n, m.Confirm); err != nil {
		return nil, err
	}
	if m.OnSearch != nil {
		s.OnSearch(m.Action, m.OnSearch)
	}
	if m.OnSelect != nil {
		s.OnAction(m.Action, func(ctx context.Context, ev domain.Event) error {
			return m.OnSelect(ctx, singleSelect(ev))
		})
	}
	return n, nil
}

func (m *SelectMenu) ChildElements() []Element { return m.Options }

// MultiSelectMenu is the multi-choice counterpart of SelectMenu.
type MultiSelectMenu struct {
	Action      string
	Placeholder any
	Source      DataSource
	Options     []Element

	InitialUsers         []string
	InitialChannels      []string
	InitialConversations []string
	MinQueryLength       int
	MaxSelected          int

	Confirm  Element
	OnSelect func(ctx context.Context, ev domain.MultiSelectEvent) error
	OnSearch SearchHandler
}

func (m *MultiSelectMenu) Build(s Scope) (*Node, error) {
	n := NewNode(selectType(m.Source, true))
	if m.Action != "" {
		n.Set("action_id", m.Action)
	}
	if err := setPlaceholder(s, n, m.Placeholder); err != nil {
		return nil, err
	}
	switch m.Source {
	case SourceUsers:
		if len(m.InitialUsers) > 0 {
			n.Set("initial_users", m.InitialUsers)
		}
	case SourceChannels:
		if len(m.InitialChannels) > 0 {
			n.Set("initial_channels", m.InitialChannels)
		}
	case SourceConversations:
		if len(m.InitialConversations) > 0 {
			n.Set("initial_conversations", m.InitialConversations)
		}
	case SourceExternal:
		if m.MinQueryLength > 0 {
			n.Set("min_query_length", m.MinQueryLength)
		}
	}
	if m.MaxSelected > 0 {
		n.Set("max_selected_items", m.MaxSelected)
	}
	if err := setConfirm(s, n, m.Confirm); err != nil {
		return nil, err
	}
	if m.OnSearch != nil {
		s.OnSearch(m.Action, m.OnSearch)
	}
	if m.OnSelect != nil {
		s.OnAction(m.Action, func(ctx context.Context, ev domain.Event) error {
			return m.OnSelect(ctx, multiSelect(ev))
		})
	}
	return n, nil
}

func (m *MultiSelectMenu) ChildElements() []Element { return m.Options }
