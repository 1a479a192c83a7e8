package kit

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// Role tells a parent how to treat an appended child when the child's type
// discriminator alone is not enough (options and confirm objects have no
// type field of their own).
type Role int

const (
	RoleNone Role = iota
	RoleOption
	RoleOptionGroup
	RoleConfirm
)

// Node is the Block Kit value assembled for one element. Only the fields map
// is serialized; the role and selection flags exist for the reconcile walk
// and never reach the wire.
type Node struct {
	fields   map[string]any
	role     Role
	selected bool

	// selectedOpts collects the options flagged selected inside an option
	// group, so the enclosing select can lift them into its initial_* field.
	selectedOpts []*Node
}

// NewNode creates a node with the given type discriminator. An empty typ
// produces a node with no type field (options, confirm objects, message
// roots).
func NewNode(typ string) *Node {
	n := &Node{fields: make(map[string]any)}
	if typ != "" {
		n.fields["type"] = typ
	}
	return n
}

// Type returns the node's type discriminator, or "" when it has none.
func (n *Node) Type() string {
	t, _ := n.fields["type"].(string)
	return t
}

// Set assigns a field value.
func (n *Node) Set(key string, v any) { n.fields[key] = v }

// Get reads a field value.
func (n *Node) Get(key string) (any, bool) {
	v, ok := n.fields[key]
	return v, ok
}

// List returns the named list field, or nil when absent.
func (n *Node) List(key string) []*Node {
	l, _ := n.fields[key].([]*Node)
	return l
}

func (n *Node) appendList(key string, child *Node) {
	l, _ := n.fields[key].([]*Node)
	n.fields[key] = append(l, child)
}

// CloneWithout returns a shallow copy of the node with the given fields
// removed. Used to strip link fields from options in contexts that forbid
// them.
func (n *Node) CloneWithout(keys ...string) *Node {
	c := &Node{
		fields:   make(map[string]any, len(n.fields)),
		role:     n.role,
		selected: n.selected,
	}
	for k, v := range n.fields {
		c.fields[k] = v
	}
	for _, k := range keys {
		delete(c.fields, k)
	}
	return c
}

// MarshalJSON serializes the node's fields only.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.fields)
}

// Canonical serializes the node to RFC 8785 canonical JSON. The engine
// compares canonical forms to decide whether a surface update must be
// pushed, so field ordering can never cause a spurious push.
func Canonical(n *Node) (string, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	c, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	return string(c), nil
}
