/*
Package marquee is a reactive framework for building interactive Slack
surfaces: messages, modals and App Home tabs that re-render themselves in
place when users click, pick and submit.

A surface is a plain Go function that builds a tree of Block Kit elements
from per-surface state. The engine renders the tree, pushes it to Slack,
and persists the component name, props and state in a container keyed by the
surface's identity. When an interaction arrives, the engine reloads the
container, fires the matching callbacks, re-renders, and pushes an update
only when the rendered document actually changed.

# Concept

Interaction handling is deliberately two-phase. The first render pass
collects the callbacks matching the inbound action and runs them, letting
them mutate state through the setters returned by UseState. A second, clean
pass then renders the settled state, so the pushed document never reflects a
half-applied event. Submit and cancel callbacks on modals fire at most once
per submission, no matter how many passes observe it.

# Usage

Register components, post a message, and serve the inbound listener:

	package main

	import (
		"context"
		"fmt"
		"log"
		"net/http"
		"os"

		"github.com/marquee-kit/marquee"
		"github.com/marquee-kit/marquee/pkg/kit"
	)

	func Counter(c *marquee.Context) kit.Element {
		n, setN := marquee.UseState(c, "count", 0)
		return &kit.Message{
			Text: "Counter",
			Blocks: []kit.Element{
				&kit.Section{Text: kit.Mrkdwn(fmt.Sprintf("Clicked *%d* times", n))},
				&kit.Actions{Elements: []kit.Element{
					&kit.Button{
						Action: "increment",
						Label:  "Click me",
						OnClick: func(ctx context.Context, ev marquee.InteractionEvent) error {
							setN(n + 1)
							return nil
						},
					},
				}},
			},
		}
	}

	func main() {
		app := marquee.New(os.Getenv("SLACK_TOKEN"), os.Getenv("SLACK_SIGNING_SECRET"))
		app.RegisterMessage("counter", Counter)

		if _, err := app.PostMessage(context.Background(), "counter", "C0000000000", nil); err != nil {
			log.Fatal(err)
		}
		log.Fatal(http.ListenAndServe(":3000", app.Handler()))
	}

The default App uses an in-memory container store and the real Slack Web
API. Production deployments swap in the Redis store and locker from
pkg/adapters/redis via WithStore and WithLocker.
*/
package marquee
