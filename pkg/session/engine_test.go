package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-kit/marquee/pkg/adapters/memory"
	"github.com/marquee-kit/marquee/pkg/domain"
	"github.com/marquee-kit/marquee/pkg/kit"
	"github.com/marquee-kit/marquee/pkg/ports"
	"github.com/marquee-kit/marquee/pkg/session"
)

// fakeAPI records outbound surface calls and hands out deterministic
// identifiers.
type fakeAPI struct {
	mu sync.Mutex

	posted         []string
	messageUpdates []string
	viewsOpened    []string
	viewUpdates    []string
	homePublishes  []string
	homeUpdates    []string

	failUpdate error
	viewSeq    int
}

func (f *fakeAPI) PostMessage(ctx context.Context, doc json.RawMessage, channelID string) (ports.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, string(doc))
	return ports.MessageRef{ChannelID: channelID, TS: fmt.Sprintf("100%d.000", len(f.posted))}, nil
}

func (f *fakeAPI) UpdateMessage(ctx context.Context, doc json.RawMessage, channelID, ts string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.messageUpdates = append(f.messageUpdates, string(doc))
	return nil
}

func (f *fakeAPI) OpenView(ctx context.Context, doc json.RawMessage, triggerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewsOpened = append(f.viewsOpened, string(doc))
	f.viewSeq++
	return fmt.Sprintf("V%d", f.viewSeq), nil
}

func (f *fakeAPI) UpdateView(ctx context.Context, doc json.RawMessage, viewID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewUpdates = append(f.viewUpdates, string(doc))
	return nil
}

func (f *fakeAPI) PublishHome(ctx context.Context, doc json.RawMessage, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.homePublishes = append(f.homePublishes, string(doc))
	return "VH1", nil
}

func (f *fakeAPI) UpdateHome(ctx context.Context, doc json.RawMessage, viewID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.homeUpdates = append(f.homeUpdates, string(doc))
	return nil
}

func counterComponent(c *session.Context) kit.Element {
	n, setN := session.UseState(c, "count", 0)
	return &kit.Message{
		Text: "Counter",
		Blocks: []kit.Element{
			&kit.Section{Text: kit.Mrkdwn(fmt.Sprintf("Clicked %d times", n))},
			&kit.Actions{Elements: []kit.Element{
				&kit.Button{Action: "increment", Label: "Click me", OnClick: func(ctx context.Context, ev domain.InteractionEvent) error {
					setN(n + 1)
					return nil
				}},
				&kit.Button{Action: "noop", Label: "Nothing", OnClick: func(ctx context.Context, ev domain.InteractionEvent) error {
					return nil
				}},
			}},
		},
	}
}

func newEngine(t *testing.T) (*session.Engine, *memory.Store, *fakeAPI, *session.Registry) {
	t.Helper()
	store := memory.NewStore()
	api := &fakeAPI{}
	registry := session.NewRegistry()
	eng := session.New(store, api, registry)
	return eng, store, api, registry
}

func messageAction(channelID, ts, actionID string) domain.ActionPayload {
	return domain.ActionPayload{
		TriggerID: "trigger-1",
		User:      domain.User{ID: "U1"},
		Container: domain.SurfaceRef{Type: "message", ChannelID: channelID, MessageTS: ts},
		Actions:   []domain.RawAction{{Type: "button", ActionID: actionID}},
	}
}

func TestPostMessage_CreatesSurface(t *testing.T) {
	eng, store, api, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)
	ctx := context.Background()

	surfaceID, err := eng.PostMessage(ctx, "counter", "C1", nil)
	require.NoError(t, err)
	assert.Equal(t, "C1:1001.000", surfaceID)

	require.Len(t, api.posted, 1)
	assert.Contains(t, api.posted[0], "Clicked 0 times")

	cont, err := store.Load(ctx, surfaceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SurfaceMessage, cont.Kind)
	assert.Equal(t, "counter", cont.Name)
	assert.EqualValues(t, 0, cont.State["count"])
	assert.NotEmpty(t, cont.LastRendered)
}

func TestPostMessage_UnknownComponent(t *testing.T) {
	eng, _, _, _ := newEngine(t)
	_, err := eng.PostMessage(context.Background(), "missing", "C1", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownComponent)
}

func TestPostMessage_KindMismatch(t *testing.T) {
	eng, _, _, registry := newEngine(t)
	registry.RegisterModal("form", func(c *session.Context) kit.Element {
		return &kit.Modal{Title: "T", Submit: "S", Close: "C"}
	})
	_, err := eng.PostMessage(context.Background(), "form", "C1", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownComponent)
}

func TestHandleAction_UpdatesChangedSurface(t *testing.T) {
	eng, store, api, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)
	ctx := context.Background()

	surfaceID, err := eng.PostMessage(ctx, "counter", "C1", nil)
	require.NoError(t, err)

	require.NoError(t, eng.HandleAction(ctx, messageAction("C1", "1001.000", "increment")))

	require.Len(t, api.messageUpdates, 1)
	assert.Contains(t, api.messageUpdates[0], "Clicked 1 times")

	cont, err := store.Load(ctx, surfaceID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cont.State["count"])
}

func TestHandleAction_SkipsUnchangedPush(t *testing.T) {
	eng, _, api, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)
	ctx := context.Background()

	_, err := eng.PostMessage(ctx, "counter", "C1", nil)
	require.NoError(t, err)

	// The noop callback fires but leaves the document identical, so no
	// update goes out.
	require.NoError(t, eng.HandleAction(ctx, messageAction("C1", "1001.000", "noop")))
	assert.Empty(t, api.messageUpdates)
}

func TestHandleAction_RoutedActionID(t *testing.T) {
	eng, store, _, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)
	ctx := context.Background()

	surfaceID, err := eng.PostMessage(ctx, "counter", "C1", nil)
	require.NoError(t, err)

	// The payload's own container points elsewhere; the routed id wins.
	p := messageAction("C9", "9.9", surfaceID+domain.RoutingDelimiter+"increment")
	require.NoError(t, eng.HandleAction(ctx, p))

	cont, err := store.Load(ctx, surfaceID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cont.State["count"])
}

func TestHandleAction_UnknownSurface(t *testing.T) {
	eng, _, _, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)

	err := eng.HandleAction(context.Background(), messageAction("C1", "404.0", "increment"))
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
}

func TestHandleAction_CallbackFailureSkipsPushAndSave(t *testing.T) {
	eng, store, api, registry := newEngine(t)
	boom := errors.New("boom")
	registry.RegisterMessage("fragile", func(c *session.Context) kit.Element {
		n, setN := session.UseState(c, "count", 0)
		return &kit.Message{Text: "x", Blocks: []kit.Element{
			&kit.Section{Text: kit.Mrkdwn(fmt.Sprintf("%d", n))},
			&kit.Actions{Elements: []kit.Element{
				&kit.Button{Action: "bump", Label: "go", OnClick: func(ctx context.Context, ev domain.InteractionEvent) error {
					setN(n + 1)
					return boom
				}},
			}},
		}}
	})
	ctx := context.Background()

	surfaceID, err := eng.PostMessage(ctx, "fragile", "C1", nil)
	require.NoError(t, err)

	err = eng.HandleAction(ctx, messageAction("C1", "1001.000", "bump"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, api.messageUpdates)

	// The failed event leaves no trace in persisted state.
	cont, err := store.Load(ctx, surfaceID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cont.State["count"])
}

func TestHandleAction_OutboundFailureLeavesStateUntouched(t *testing.T) {
	eng, store, api, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)
	ctx := context.Background()

	surfaceID, err := eng.PostMessage(ctx, "counter", "C1", nil)
	require.NoError(t, err)

	api.failUpdate = errors.New("rate limited")
	err = eng.HandleAction(ctx, messageAction("C1", "1001.000", "increment"))
	require.Error(t, err)

	cont, err := store.Load(ctx, surfaceID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cont.State["count"])
}

// modalParent is a message component with one modal call site.
func modalParent(submitCount, cancelCount *int) session.ComponentFunc {
	return func(c *session.Context) kit.Element {
		answer, setAnswer := session.UseState(c, "answer", "")

		open := c.Modal(session.ModalSite{
			Slot:  "survey",
			Modal: "survey-form",
			OnSubmit: func(ctx context.Context, ev domain.SubmitEvent) error {
				*submitCount++
				date, _ := ev.Form["date"].(string)
				choices, _ := ev.Form["choices"].([]string)
				setAnswer(date + "|" + strings.Join(choices, ","))
				return nil
			},
			OnCancel: func(ctx context.Context, ev domain.InteractionEvent) error {
				*cancelCount++
				setAnswer("cancelled")
				return nil
			},
		})

		return &kit.Message{Text: "survey", Blocks: []kit.Element{
			&kit.Section{Text: kit.Mrkdwn("answer: " + answer)},
			&kit.Actions{Elements: []kit.Element{
				&kit.Button{Action: "open", Label: "Open", OnClick: func(ctx context.Context, ev domain.InteractionEvent) error {
					return open(ctx, map[string]any{"title": "Survey"})
				}},
			}},
		}}
	}
}

func modalForm(c *session.Context) kit.Element {
	return &kit.Modal{
		Title:  "Survey",
		Submit: "Send",
		Close:  "Cancel",
		Blocks: []kit.Element{
			&kit.Input{Label: "Date", Element: &kit.DatePicker{Action: "date"}},
			&kit.Input{Label: "Choices", Element: &kit.Checkboxes{Action: "choices", Options: []kit.Element{
				&kit.Option{Value: "a", Label: "A"},
				&kit.Option{Value: "b", Label: "B"},
			}}},
		},
	}
}

func submissionPayload(viewID, typ string) domain.ViewPayload {
	p := domain.ViewPayload{Type: typ, User: domain.User{ID: "U1"}}
	p.View.ID = viewID
	if typ == "view_submission" {
		p.View.State.Values = map[string]map[string]domain.RawFieldState{
			"b1": {"date": {Type: "datepicker", SelectedDate: "2020-11-11"}},
			"b2": {"choices": {Type: "checkboxes", SelectedOptions: []domain.RawOption{{Value: "a"}, {Value: "b"}}}},
		}
	}
	return p
}

func setupModal(t *testing.T, submitCount, cancelCount *int) (*session.Engine, *memory.Store, *fakeAPI, string, string) {
	t.Helper()
	eng, store, api, registry := newEngine(t)
	registry.RegisterMessage("survey", modalParent(submitCount, cancelCount))
	registry.RegisterModal("survey-form", modalForm)
	ctx := context.Background()

	surfaceID, err := eng.PostMessage(ctx, "survey", "C1", nil)
	require.NoError(t, err)

	require.NoError(t, eng.HandleAction(ctx, messageAction("C1", "1001.000", "open")))
	require.Len(t, api.viewsOpened, 1)
	return eng, store, api, surfaceID, "V1"
}

func TestOpenModal_LinksChildToParent(t *testing.T) {
	var submits, cancels int
	_, store, api, surfaceID, viewID := setupModal(t, &submits, &cancels)

	assert.Contains(t, api.viewsOpened[0], `"notify_on_close":true`)

	cont, err := store.Load(context.Background(), viewID)
	require.NoError(t, err)
	assert.Equal(t, domain.SurfaceModal, cont.Kind)
	assert.Equal(t, "survey-form", cont.Name)
	assert.Equal(t, surfaceID, cont.ParentSurfaceID)
	assert.Equal(t, "survey", cont.ModalSlot)
	assert.Equal(t, "Survey", cont.Props["title"])
}

func TestOpenModal_RequiresTrigger(t *testing.T) {
	eng, _, _, registry := newEngine(t)
	var submits, cancels int
	registry.RegisterMessage("survey", modalParent(&submits, &cancels))
	registry.RegisterModal("survey-form", modalForm)
	ctx := context.Background()

	_, err := eng.PostMessage(ctx, "survey", "C1", nil)
	require.NoError(t, err)

	p := messageAction("C1", "1001.000", "open")
	p.TriggerID = ""
	err = eng.HandleAction(ctx, p)
	assert.ErrorIs(t, err, domain.ErrMissingTrigger)
}

func TestHandleSubmission_DispatchesOnSubmitOnce(t *testing.T) {
	var submits, cancels int
	eng, store, api, surfaceID, viewID := setupModal(t, &submits, &cancels)
	ctx := context.Background()

	require.NoError(t, eng.HandleSubmission(ctx, submissionPayload(viewID, "view_submission")))

	// Exactly one dispatch despite the two render passes.
	assert.Equal(t, 1, submits)
	assert.Equal(t, 0, cancels)

	cont, err := store.Load(ctx, surfaceID)
	require.NoError(t, err)
	assert.Equal(t, "2020-11-11|a,b", cont.State["answer"])

	require.Len(t, api.messageUpdates, 1)
	assert.Contains(t, api.messageUpdates[0], "2020-11-11")

	// The modal container is retired after handling.
	_, err = store.Load(ctx, viewID)
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
}

func TestHandleSubmission_DispatchesOnCancel(t *testing.T) {
	var submits, cancels int
	eng, store, _, surfaceID, viewID := setupModal(t, &submits, &cancels)
	ctx := context.Background()

	require.NoError(t, eng.HandleSubmission(ctx, submissionPayload(viewID, "view_closed")))

	assert.Equal(t, 0, submits)
	assert.Equal(t, 1, cancels)

	cont, err := store.Load(ctx, surfaceID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cont.State["answer"])
}

func TestHandleSubmission_UnknownView(t *testing.T) {
	eng, _, _, _ := newEngine(t)
	err := eng.HandleSubmission(context.Background(), submissionPayload("V404", "view_submission"))
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
}

func homeComponent(c *session.Context) kit.Element {
	visits, setVisits := session.UseState(c, "visits", 0)
	return &kit.Home{
		Blocks: []kit.Element{
			&kit.Section{Text: kit.Mrkdwn(fmt.Sprintf("Visits: %d", visits))},
		},
		OnLoad: func(ctx context.Context, ev domain.InteractionEvent) error {
			setVisits(1)
			return nil
		},
		OnUpdate: func(ctx context.Context, ev domain.InteractionEvent) error {
			setVisits(visits + 1)
			return nil
		},
	}
}

func TestHandleHome_FirstOpenPublishes(t *testing.T) {
	eng, store, api, registry := newEngine(t)
	registry.RegisterHome("home", homeComponent)
	ctx := context.Background()

	require.NoError(t, eng.HandleHome(ctx, "home", domain.HomePayload{User: domain.User{ID: "U1"}}))

	require.Len(t, api.homePublishes, 1)
	assert.Contains(t, api.homePublishes[0], "Visits: 1")

	cont, err := store.Load(ctx, "VH1")
	require.NoError(t, err)
	assert.Equal(t, domain.SurfaceHome, cont.Kind)
	assert.EqualValues(t, 1, cont.State["visits"])
}

func TestHandleHome_RepeatOpenUpdates(t *testing.T) {
	eng, store, api, registry := newEngine(t)
	registry.RegisterHome("home", homeComponent)
	ctx := context.Background()

	require.NoError(t, eng.HandleHome(ctx, "home", domain.HomePayload{User: domain.User{ID: "U1"}}))
	require.NoError(t, eng.HandleHome(ctx, "home", domain.HomePayload{User: domain.User{ID: "U1"}, ViewID: "VH1"}))

	require.Len(t, api.homeUpdates, 1)
	assert.Contains(t, api.homeUpdates[0], "Visits: 2")

	cont, err := store.Load(ctx, "VH1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, cont.State["visits"])
}

func TestHandleHome_StaleViewFallsBackToCreate(t *testing.T) {
	eng, _, api, registry := newEngine(t)
	registry.RegisterHome("home", homeComponent)
	ctx := context.Background()

	// A view id with no container behaves like a first open.
	require.NoError(t, eng.HandleHome(ctx, "home", domain.HomePayload{User: domain.User{ID: "U1"}, ViewID: "V-gone"}))
	require.Len(t, api.homePublishes, 1)
}

func searchComponent(c *session.Context) kit.Element {
	return &kit.Message{Text: "pick", Blocks: []kit.Element{
		&kit.Section{Accessory: &kit.SelectMenu{
			Action: "fruit",
			Source: kit.SourceExternal,
			OnSearch: func(ctx context.Context, ev domain.SearchEvent) ([]kit.Element, error) {
				return []kit.Element{
					&kit.Option{Value: ev.Query + "-1", Label: ev.Query + " one"},
					&kit.Option{Value: ev.Query + "-2", Label: ev.Query + " two"},
				}, nil
			},
			OnSelect: func(ctx context.Context, ev domain.SelectEvent) error { return nil },
		}},
	}}
}

func TestHandleSearch_ReturnsOptions(t *testing.T) {
	eng, _, _, registry := newEngine(t)
	registry.RegisterMessage("picker", searchComponent)
	ctx := context.Background()

	_, err := eng.PostMessage(ctx, "picker", "C1", nil)
	require.NoError(t, err)

	resp, err := eng.HandleSearch(ctx, domain.SuggestionPayload{
		ActionID:  "fruit",
		Value:     "ap",
		User:      domain.User{ID: "U1"},
		Container: domain.SurfaceRef{Type: "message", ChannelID: "C1", MessageTS: "1001.000"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Options, 2)
	assert.Empty(t, resp.OptionGroups)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ap-1"`)
}

func TestHandleSearch_GroupedOptions(t *testing.T) {
	eng, _, _, registry := newEngine(t)
	registry.RegisterMessage("picker", func(c *session.Context) kit.Element {
		return &kit.Message{Text: "pick", Blocks: []kit.Element{
			&kit.Section{Accessory: &kit.SelectMenu{
				Action: "fruit",
				Source: kit.SourceExternal,
				OnSearch: func(ctx context.Context, ev domain.SearchEvent) ([]kit.Element, error) {
					return []kit.Element{
						&kit.OptionGroup{Label: "G", Options: []kit.Element{
							&kit.Option{Value: "a", Label: "A"},
						}},
					}, nil
				},
			}},
		}}
	})
	ctx := context.Background()

	_, err := eng.PostMessage(ctx, "picker", "C1", nil)
	require.NoError(t, err)

	resp, err := eng.HandleSearch(ctx, domain.SuggestionPayload{
		ActionID:  "fruit",
		Value:     "x",
		Container: domain.SurfaceRef{Type: "message", ChannelID: "C1", MessageTS: "1001.000"},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Options)
	require.Len(t, resp.OptionGroups, 1)
}

func TestHandleSearch_NoHandler(t *testing.T) {
	eng, _, _, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)
	ctx := context.Background()

	_, err := eng.PostMessage(ctx, "counter", "C1", nil)
	require.NoError(t, err)

	_, err = eng.HandleSearch(ctx, domain.SuggestionPayload{
		ActionID:  "increment",
		Container: domain.SurfaceRef{Type: "message", ChannelID: "C1", MessageTS: "1001.000"},
	})
	assert.ErrorIs(t, err, domain.ErrNoSearchHandler)
}

func TestUseState_RestoresTypeAfterPersistence(t *testing.T) {
	eng, _, api, registry := newEngine(t)
	registry.RegisterMessage("counter", counterComponent)
	ctx := context.Background()

	_, err := eng.PostMessage(ctx, "counter", "C1", nil)
	require.NoError(t, err)

	// Numbers round-trip through JSON as float64; the typed accessor must
	// keep the counter arithmetic working across events.
	require.NoError(t, eng.HandleAction(ctx, messageAction("C1", "1001.000", "increment")))
	require.NoError(t, eng.HandleAction(ctx, messageAction("C1", "1001.000", "increment")))

	require.Len(t, api.messageUpdates, 2)
	assert.Contains(t, api.messageUpdates[1], "Clicked 2 times")
}

func TestBindProps(t *testing.T) {
	eng, _, api, registry := newEngine(t)
	type props struct {
		Title string
		Count int
	}
	registry.RegisterMessage("titled", func(c *session.Context) kit.Element {
		var p props
		if err := c.BindProps(&p); err != nil {
			return &kit.Message{Text: "error"}
		}
		return &kit.Message{Text: p.Title, Blocks: []kit.Element{
			&kit.Section{Text: kit.Plain(fmt.Sprintf("%s/%d", p.Title, p.Count))},
		}}
	})

	_, err := eng.PostMessage(context.Background(), "titled", "C1", map[string]any{"title": "hello", "count": 7})
	require.NoError(t, err)
	require.Len(t, api.posted, 1)
	assert.Contains(t, api.posted[0], "hello/7")
}
