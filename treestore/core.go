package treestore

import (
	"fmt"
	"strconv"
	"strings"
)

// func NewStore {{{

// NewStore returns an empty root Store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*Node),
	}
} // }}}

// func Node.IsBranch {{{

// IsBranch reports whether the node's value is a child Store.
func (n *Node) IsBranch() bool {
	_, ok := n.Value.(*Store)
	return ok
} // }}}

// func Node.IsLeaf {{{

// IsLeaf reports whether the node holds a plain value.
func (n *Node) IsLeaf() bool {
	return !n.IsBranch()
} // }}}

// func Node.Parent {{{

// Parent returns the Store this node sits in, nil for a detached node.
func (n *Node) Parent() *Store {
	return n.parent
} // }}}

// func Node.Root {{{

// Root returns the top Store of the hierarchy this node sits in, nil
// for a detached node.
func (n *Node) Root() *Store {
	if n.parent == nil {
		return nil
	}

	return n.parent.Root()
} // }}}

// func Store.AddNode {{{

// AddNode adds a leaf node under the label and returns it.
//
// An existing label is replaced in place, its position in the order
// does not move.
func (s *Store) AddNode(label string, attr map[string]any, value any) *Node {
	n := &Node{
		Label:  label,
		Attr:   attr,
		Value:  value,
		parent: s,
	}

	s.put(label, n)

	return n
} // }}}

// func Store.AddBranch {{{

// AddBranch adds a branch node under the label, with a fresh child
// Store as its value, and returns the node.
//
// The child Store's parent is the node, the node's parent is this
// store, which is what lets Root and Depth climb back out.
func (s *Store) AddBranch(label string, attr map[string]any) *Node {
	child := NewStore()

	n := &Node{
		Label:  label,
		Attr:   attr,
		Value:  child,
		parent: s,
	}

	child.parent = n

	s.put(label, n)

	return n
} // }}}

// func Store.put {{{

func (s *Store) put(label string, n *Node) {
	if _, ok := s.nodes[label]; !ok {
		s.order = append(s.order, label)
	}

	s.nodes[label] = n
} // }}}

// func Store.Get {{{

// Get returns the node under the label, nil when there is none.
func (s *Store) Get(label string) *Node {
	return s.nodes[label]
} // }}}

// func Store.Has {{{

func (s *Store) Has(label string) bool {
	_, ok := s.nodes[label]
	return ok
} // }}}

// func Store.Keys {{{

// Keys returns the labels in insertion order. The slice is the
// caller's to keep.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
} // }}}

// func Store.Len {{{

func (s *Store) Len() int {
	return len(s.nodes)
} // }}}

// func Store.Parent {{{

// Parent returns the branch node holding this store, nil at the root.
func (s *Store) Parent() *Node {
	return s.parent
} // }}}

// func Store.Root {{{

// Root returns the top Store of the hierarchy.
func (s *Store) Root() *Store {
	if s.parent == nil {
		return s
	}

	return s.parent.Root()
} // }}}

// func Store.Depth {{{

// Depth returns how many branches down this store sits, the root is 0.
func (s *Store) Depth() int {
	if s.parent == nil {
		return 0
	}

	if s.parent.parent == nil {
		return 1
	}

	return s.parent.parent.Depth() + 1
} // }}}

// func Store.AsMap {{{

// AsMap flattens the tree into plain nested maps.
//
// A branch becomes a map of its children with the branch node's attrs
// merged in underneath them, children win on a label collision. A leaf
// contributes its value directly, leaf attrs do not survive the trip.
func (s *Store) AsMap() map[string]any {
	out := make(map[string]any, len(s.order))

	for _, label := range s.order {
		n := s.nodes[label]

		cs, ok := n.Value.(*Store)
		if !ok {
			out[label] = n.Value
			continue
		}

		child := cs.AsMap()

		if len(n.Attr) > 0 {
			merged := make(map[string]any, len(n.Attr)+len(child))

			for k, v := range n.Attr {
				merged[k] = v
			}

			for k, v := range child {
				merged[k] = v
			}

			child = merged
		}

		out[label] = child
	}

	return out
} // }}}

// func Store.Walk {{{

// Walk visits every node pre-order, handing fn the dotted path from
// the root and the node itself. Returning false from fn stops the
// whole walk.
func (s *Store) Walk(fn func(path string, n *Node) bool) {
	s.walk("", fn)
} // }}}

// func Store.walk {{{

func (s *Store) walk(prefix string, fn func(string, *Node) bool) bool {
	for _, label := range s.order {
		n := s.nodes[label]

		path := label
		if prefix != "" {
			path = prefix + "." + label
		}

		if !fn(path, n) {
			return false
		}

		if cs, ok := n.Value.(*Store); ok {
			if !cs.walk(path, fn) {
				return false
			}
		}
	}

	return true
} // }}}

// func ParseCardinality {{{

// ParseCardinality parses an occurrence range -
//
//	"3"     exactly three
//	"1:3"   one to three
//	"0:"    any number
//	"1:"    at least one
//	":5"    up to five
//
// A bare number is an exact count. An empty min is 0, an empty max is
// unbounded. Counts are never negative and max can not sit below min.
func ParseCardinality(spec string) (Cardinality, error) {
	spec = strings.TrimSpace(spec)

	if spec == "" {
		return Cardinality{}, fmt.Errorf("Empty cardinality")
	}

	if !strings.Contains(spec, ":") {
		n, err := strconv.Atoi(spec)
		if err != nil || n < 0 {
			return Cardinality{}, fmt.Errorf("Invalid cardinality %q", spec)
		}

		return Cardinality{Min: n, Max: n}, nil
	}

	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return Cardinality{}, fmt.Errorf("Invalid cardinality %q", spec)
	}

	c := Cardinality{Max: -1}

	if parts[0] != "" {
		n, err := strconv.Atoi(parts[0])
		if err != nil || n < 0 {
			return Cardinality{}, fmt.Errorf("Invalid cardinality %q", spec)
		}

		c.Min = n
	}

	if parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 || n < c.Min {
			return Cardinality{}, fmt.Errorf("Invalid cardinality %q", spec)
		}

		c.Max = n
	}

	return c, nil
} // }}}
