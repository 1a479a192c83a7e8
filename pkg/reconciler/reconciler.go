/*
Package reconciler turns a component tree into its Block Kit output document.

The walk is depth-first and post-order: each element's own node is built
first, then every child is reconciled and appended through the catalog's
aggregation rules. When an action token is supplied, callbacks registered by
the matching element are collected as pending effects rather than run in
place; the session engine awaits them all before the authoritative render.
*/
package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/marquee-kit/marquee/pkg/domain"
	"github.com/marquee-kit/marquee/pkg/kit"
)

// Result is the outcome of one reconcile pass.
type Result struct {
	// Document is the assembled output node for the whole tree.
	Document *kit.Node

	// Effects holds one pending effect per callback the action token
	// matched, in tree order.
	Effects []domain.Effect

	// Search is the search handler captured for the matching control, only
	// populated by CaptureSearch.
	Search kit.SearchHandler
}

// Reconcile walks the tree, producing the output document and collecting the
// callbacks matched by the action token. A nil action makes the pass pure:
// re-running it on an unchanged tree yields an identical document.
func Reconcile(root kit.Element, action *domain.Action) (*Result, error) {
	return run(root, action, false)
}

// CaptureSearch walks the tree to locate the search handler declared by the
// control the action token names. The handler of the matching control wins
// over its other callbacks, which are not collected.
func CaptureSearch(root kit.Element, action *domain.Action) (*Result, error) {
	return run(root, action, true)
}

func run(root kit.Element, action *domain.Action, capture bool) (*Result, error) {
	w := &walker{action: action, capture: capture}
	doc, err := w.Reconcile(root)
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Effects: w.effects, Search: w.search}, nil
}

// walker implements kit.Scope for one pass. It owns the matched effects and
// the captured search handler; element instances never outlive the pass.
type walker struct {
	action  *domain.Action
	capture bool
	effects []domain.Effect
	search  kit.SearchHandler
}

var errNilElement = errors.New("nil element in tree")

func (w *walker) Reconcile(e kit.Element) (*kit.Node, error) {
	if e == nil {
		return nil, errNilElement
	}
	node, err := e.Build(w)
	if err != nil {
		return nil, fmt.Errorf("build %T: %w", e, err)
	}
	for _, child := range e.ChildElements() {
		cn, err := w.Reconcile(child)
		if err != nil {
			return nil, err
		}
		if err := kit.Append(node, cn); err != nil {
			return nil, fmt.Errorf("append into %T: %w", e, err)
		}
	}
	return node, nil
}

func (w *walker) OnAction(actionID string, cb kit.Callback) {
	if w.action == nil || actionID == "" || w.action.ID != actionID {
		return
	}
	if w.capture && w.search != nil {
		// The matching control's search handler supersedes its callbacks.
		return
	}
	ev := w.action.Event
	if ev == nil {
		ev = domain.InteractionEvent{}
	}
	w.effects = append(w.effects, func(ctx context.Context) error {
		return cb(ctx, ev)
	})
}

func (w *walker) OnSearch(actionID string, h kit.SearchHandler) {
	if !w.capture || w.action == nil || actionID == "" || w.action.ID != actionID {
		return
	}
	w.search = h
}
