package domain

import "strings"

// RoutingDelimiter separates an out-of-band surface identifier from the
// control identifier inside a prefixed action id ("surfaceID###actionID").
const RoutingDelimiter = "###"

// SplitActionID unpacks a routing-prefixed action identifier. The returned
// surface identifier is empty when the id carries no prefix.
func SplitActionID(raw string) (surfaceID, actionID string) {
	if i := strings.Index(raw, RoutingDelimiter); i >= 0 {
		return raw[:i], raw[i+len(RoutingDelimiter):]
	}
	return "", raw
}

// SurfaceRef locates the surface an inbound payload belongs to.
type SurfaceRef struct {
	Type      string `json:"type"` // "view" or "message"
	ChannelID string `json:"channel_id"`
	MessageTS string `json:"message_ts"`
	ViewID    string `json:"view_id"`
}

// SurfaceID derives the container key for the referenced surface.
func (r SurfaceRef) SurfaceID() string {
	if r.Type == "view" {
		return r.ViewID
	}
	return MessageSurfaceID(r.ChannelID, r.MessageTS)
}

// RawOption is the wire form of a selected option.
type RawOption struct {
	Value string `json:"value"`
}

// RawAction is the wire form of one fired control inside a block_actions
// payload. Only the fields relevant to event mapping are decoded.
type RawAction struct {
	Type                  string      `json:"type"`
	ActionID              string      `json:"action_id"`
	Value                 string      `json:"value,omitempty"`
	SelectedDate          string      `json:"selected_date,omitempty"`
	SelectedOption        *RawOption  `json:"selected_option,omitempty"`
	SelectedOptions       []RawOption `json:"selected_options,omitempty"`
	SelectedUser          string      `json:"selected_user,omitempty"`
	SelectedUsers         []string    `json:"selected_users,omitempty"`
	SelectedChannel       string      `json:"selected_channel,omitempty"`
	SelectedChannels      []string    `json:"selected_channels,omitempty"`
	SelectedConversation  string      `json:"selected_conversation,omitempty"`
	SelectedConversations []string    `json:"selected_conversations,omitempty"`
}

// EventForAction maps a raw fired control to the typed event its callback
// expects, based on the control kind.
func EventForAction(a RawAction, user User) Event {
	switch a.Type {
	case "datepicker":
		return DateEvent{User: user, Date: a.SelectedDate}
	case "checkboxes", "multi_static_select", "multi_external_select":
		return MultiSelectEvent{User: user, Selected: optionValues(a.SelectedOptions)}
	case "multi_users_select":
		return MultiSelectEvent{User: user, Selected: a.SelectedUsers}
	case "multi_channels_select":
		return MultiSelectEvent{User: user, Selected: a.SelectedChannels}
	case "multi_conversations_select":
		return MultiSelectEvent{User: user, Selected: a.SelectedConversations}
	case "users_select":
		return SelectEvent{User: user, Selected: a.SelectedUser}
	case "channels_select":
		return SelectEvent{User: user, Selected: a.SelectedChannel}
	case "conversations_select":
		return SelectEvent{User: user, Selected: a.SelectedConversation}
	case "overflow", "radio_buttons", "static_select", "external_select":
		if a.SelectedOption != nil {
			return SelectEvent{User: user, Selected: a.SelectedOption.Value}
		}
		return SelectEvent{User: user}
	default:
		return InteractionEvent{User: user}
	}
}

func optionValues(opts []RawOption) []string {
	values := make([]string, 0, len(opts))
	for _, o := range opts {
		values = append(values, o.Value)
	}
	return values
}

// ActionPayload is the parsed form of a block_actions interaction.
type ActionPayload struct {
	TriggerID string      `json:"trigger_id"`
	User      User        `json:"user"`
	Container SurfaceRef  `json:"container"`
	Actions   []RawAction `json:"actions"`
}

// RawFieldState is the wire form of one input's state inside a view
// submission payload.
type RawFieldState struct {
	Type                  string      `json:"type"`
	Value                 string      `json:"value,omitempty"`
	SelectedDate          string      `json:"selected_date,omitempty"`
	SelectedOption        *RawOption  `json:"selected_option,omitempty"`
	SelectedOptions       []RawOption `json:"selected_options,omitempty"`
	SelectedUser          string      `json:"selected_user,omitempty"`
	SelectedUsers         []string    `json:"selected_users,omitempty"`
	SelectedChannel       string      `json:"selected_channel,omitempty"`
	SelectedChannels      []string    `json:"selected_channels,omitempty"`
	SelectedConversation  string      `json:"selected_conversation,omitempty"`
	SelectedConversations []string    `json:"selected_conversations,omitempty"`
}

// BuildForm flattens a view's state values into the form object passed to a
// submit callback. Each field maps to a scalar or a list depending on its
// declared input kind; keys are the inputs' action identifiers.
func BuildForm(values map[string]map[string]RawFieldState) map[string]any {
	form := make(map[string]any, len(values))
	for _, fields := range values {
		for actionID, field := range fields {
			form[actionID] = fieldValue(field)
		}
	}
	return form
}

func fieldValue(f RawFieldState) any {
	switch f.Type {
	case "datepicker":
		return f.SelectedDate
	case "checkboxes", "multi_static_select", "multi_external_select":
		return optionValues(f.SelectedOptions)
	case "multi_users_select":
		return f.SelectedUsers
	case "multi_channels_select":
		return f.SelectedChannels
	case "multi_conversations_select":
		return f.SelectedConversations
	case "radio_buttons", "static_select", "external_select":
		if f.SelectedOption != nil {
			return f.SelectedOption.Value
		}
		return ""
	case "users_select":
		return f.SelectedUser
	case "channels_select":
		return f.SelectedChannel
	case "conversations_select":
		return f.SelectedConversation
	default:
		return f.Value
	}
}

// ViewPayload is the parsed form of a view_submission or view_closed event.
type ViewPayload struct {
	Type string `json:"type"` // "view_submission" or "view_closed"
	User User   `json:"user"`
	View struct {
		ID    string `json:"id"`
		State struct {
			Values map[string]map[string]RawFieldState `json:"values"`
		} `json:"state"`
	} `json:"view"`
}

// Submitted reports whether the payload represents a form submission rather
// than a cancellation.
func (p ViewPayload) Submitted() bool { return p.Type == "view_submission" }

// SuggestionPayload is the parsed form of a block_suggestion (typeahead)
// request.
type SuggestionPayload struct {
	ActionID  string     `json:"action_id"`
	Value     string     `json:"value"`
	User      User       `json:"user"`
	Container SurfaceRef `json:"container"`
}

// HomePayload describes an app home opened event.
type HomePayload struct {
	User   User
	ViewID string
}
