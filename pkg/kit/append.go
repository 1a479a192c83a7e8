package kit

import (
	"fmt"

	"github.com/marquee-kit/marquee/pkg/domain"
)

// Append applies the parent kind's aggregation rule to one reconciled child.
// The rules mirror the target document's slot contracts: violating one (two
// children claiming a single slot, a child with no rule for its parent) is a
// construction error that aborts the whole render.
func Append(parent, child *Node) error {
	if child == nil {
		return nil
	}

	// Any node carrying a blocks list (message, modal, home roots) takes
	// children as blocks.
	if l, ok := parent.fields["blocks"].([]*Node); ok {
		parent.fields["blocks"] = append(l, child)
		return nil
	}

	switch parent.Type() {
	case "overflow":
		parent.appendList("options", child)
		return nil

	case "static_select", "multi_static_select":
		if child.role == RoleOptionGroup {
			parent.appendList("option_groups", child)
			for _, sel := range child.selectedOpts {
				markSelected(parent, sel)
			}
			return nil
		}
		return appendOption(parent, child)

	case "checkboxes", "radio_buttons":
		return appendOption(parent, child)

	case "input":
		if _, filled := parent.fields["element"]; filled {
			return fmt.Errorf("input element: %w", domain.ErrSlotConflict)
		}
		parent.fields["element"] = child
		return nil

	case "actions", "context":
		parent.appendList("elements", child)
		return nil

	case "section":
		parent.appendList("fields", child)
		return nil

	case "button":
		if label, ok := parent.fields["text"].(*Node); ok {
			return concatText(label, child)
		}
		parent.fields["text"] = child
		return nil

	case "plain_text", "mrkdwn":
		return concatText(parent, child)
	}

	switch parent.role {
	case RoleOptionGroup:
		return appendOption(parent, child)
	case RoleConfirm, RoleOption:
		if _, filled := parent.fields["text"]; filled {
			return fmt.Errorf("%s text: %w", roleName(parent.role), domain.ErrSlotConflict)
		}
		coercePlain(child)
		parent.fields["text"] = child
		return nil
	}

	return fmt.Errorf("%w: %q into %q", domain.ErrCannotAppend, child.Type(), parent.Type())
}

// appendOption adds an option child with its link field stripped (invalid in
// choice contexts) and records it as initially selected when flagged.
func appendOption(parent, child *Node) error {
	if child.role != RoleOption {
		return fmt.Errorf("%w: %q is not an option", domain.ErrCannotAppend, child.Type())
	}
	stripped := child.CloneWithout("url")
	parent.appendList("options", stripped)
	if child.selected {
		if parent.role == RoleOptionGroup {
			parent.selectedOpts = append(parent.selectedOpts, stripped)
		} else {
			markSelected(parent, stripped)
		}
	}
	return nil
}

// markSelected lifts a selected option into the holder's initial field:
// a list for multi-choice kinds, a single value for single-choice kinds.
func markSelected(parent, opt *Node) {
	switch parent.Type() {
	case "checkboxes", "multi_static_select":
		parent.appendList("initial_options", opt)
	case "radio_buttons", "static_select":
		parent.fields["initial_option"] = opt
	}
}

func concatText(parent, child *Node) error {
	cs, ok := child.fields["text"].(string)
	if !ok {
		return fmt.Errorf("%w: %q into text", domain.ErrCannotAppend, child.Type())
	}
	ps, _ := parent.fields["text"].(string)
	parent.fields["text"] = ps + cs
	return nil
}

func roleName(r Role) string {
	switch r {
	case RoleOption:
		return "option"
	case RoleOptionGroup:
		return "option group"
	case RoleConfirm:
		return "confirm"
	default:
		return "node"
	}
}
