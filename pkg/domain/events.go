package domain

import "context"

// User identifies the chat user an event is associated with.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	TeamID   string `json:"team_id"`
}

// Event is implemented by every interaction event delivered to a callback.
type Event interface {
	// EventUser returns the user that triggered the event.
	EventUser() User
}

// InteractionEvent carries a plain interaction with no extra data, such as a
// button click or a modal cancellation.
type InteractionEvent struct {
	User User
}

func (e InteractionEvent) EventUser() User { return e.User }

// SelectEvent carries a single selected option value.
type SelectEvent struct {
	User     User
	Selected string
}

func (e SelectEvent) EventUser() User { return e.User }

// MultiSelectEvent carries the values of every selected option.
type MultiSelectEvent struct {
	User     User
	Selected []string
}

func (e MultiSelectEvent) EventUser() User { return e.User }

// DateEvent carries a selected date formatted as YYYY-MM-DD.
type DateEvent struct {
	User User
	Date string
}

func (e DateEvent) EventUser() User { return e.User }

// SubmitEvent carries the structured form object extracted from a modal
// submission, keyed by the action identifier of each input.
type SubmitEvent struct {
	User User
	Form map[string]any
}

func (e SubmitEvent) EventUser() User { return e.User }

// SearchEvent carries a typeahead query for an external select menu.
type SearchEvent struct {
	User  User
	Query string
}

func (e SearchEvent) EventUser() User { return e.User }

// ActionType distinguishes real control interactions from the synthetic
// tokens the engine injects for surface lifecycle callbacks.
type ActionType string

const (
	ActionInteraction ActionType = "interaction"
	ActionOnLoad      ActionType = "onload"
	ActionOnUpdate    ActionType = "onupdate"
)

// Action is the token describing one inbound interaction: which control
// fired, matched by its developer-chosen identifier, and the event payload.
type Action struct {
	ID    string
	Type  ActionType
	Event Event
}

// Effect is an in-flight asynchronous operation started by a fired callback.
// All effects collected during a reconcile pass are awaited before the
// authoritative render.
type Effect func(ctx context.Context) error
