package schema

import (
	"sort"
	"strconv"
)

// Kind identifies the shape of a Node
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Node is one value of a decoded schema document.
// Objects carry named children, sequences carry ordered children and scalars
// carry the decoded JSON value (string, json.Number, bool or nil).
type Node struct {
	kind   Kind
	fields map[string]*Node
	keys   []string
	items  []*Node
	value  any
	raw    any
}

// NewNode converts a decoded JSON value into a Node tree
func NewNode(v any) *Node {
	switch val := v.(type) {
	case map[string]any:
		n := &Node{
			kind:   KindObject,
			fields: make(map[string]*Node, len(val)),
			keys:   make([]string, 0, len(val)),
			raw:    v,
		}
		for k, child := range val {
			n.fields[k] = NewNode(child)
			n.keys = append(n.keys, k)
		}
		sort.Strings(n.keys)
		return n
	case []any:
		n := &Node{
			kind:  KindSequence,
			items: make([]*Node, 0, len(val)),
			raw:   v,
		}
		for _, child := range val {
			n.items = append(n.items, NewNode(child))
		}
		return n
	default:
		return &Node{kind: KindScalar, value: v, raw: v}
	}
}

// Kind returns the node's shape
func (n *Node) Kind() Kind { return n.kind }

// IsObject reports whether the node is a mapping
func (n *Node) IsObject() bool { return n != nil && n.kind == KindObject }

// IsSequence reports whether the node is an ordered list
func (n *Node) IsSequence() bool { return n != nil && n.kind == KindSequence }

// Keys returns an object's property names in sorted order
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Get returns the named property of an object
func (n *Node) Get(key string) (*Node, bool) {
	if !n.IsObject() {
		return nil, false
	}
	child, ok := n.fields[key]
	return child, ok
}

// Items returns the elements of a sequence
func (n *Node) Items() []*Node {
	if !n.IsSequence() {
		return nil
	}
	out := make([]*Node, len(n.items))
	copy(out, n.items)
	return out
}

// Len returns the number of properties or elements
func (n *Node) Len() int {
	switch n.kind {
	case KindObject:
		return len(n.keys)
	case KindSequence:
		return len(n.items)
	default:
		return 0
	}
}

// AsString returns the scalar string value
func (n *Node) AsString() (string, bool) {
	if n == nil || n.kind != KindScalar {
		return "", false
	}
	s, ok := n.value.(string)
	return s, ok
}

// Value returns the scalar value
func (n *Node) Value() any {
	return n.value
}

// Raw returns the decoded JSON value the node was built from
func (n *Node) Raw() any {
	return n.raw
}

// Walk visits n and every descendant depth-first. Object children are visited
// in key order. Returning false from fn skips the children of that node.
func (n *Node) Walk(fn func(path []string, node *Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func([]string, *Node) bool) {
	if !fn(path, n) {
		return
	}
	switch n.kind {
	case KindObject:
		for _, k := range n.keys {
			n.fields[k].walk(appendPath(path, k), fn)
		}
	case KindSequence:
		for i, item := range n.items {
			item.walk(appendPath(path, strconv.Itoa(i)), fn)
		}
	}
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}
