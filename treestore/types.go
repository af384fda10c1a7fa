// An ordered tree of labeled, attributed nodes, with a validating
// builder for growing one fluently.
package treestore

import (
	"fmt"
	"strings"
)

// type Node struct {{{

// Node is one entry in a Store.
//
// A node is either a leaf, Value holds any scalar, or a branch, Value
// holds a *Store of children. Attr rides along either way.
//
// The node knows the Store it sits in, and a branch's child Store knows
// its node, so the tree walks in both directions.
type Node struct {
	// The key this node is stored under.
	Label string

	Attr  map[string]any
	Value any

	parent *Store
} // }}}

// type Store struct {{{

// Store is an ordered label to *Node map.
//
// Insertion order is kept, and re-adding a label replaces the node
// without moving it. The zero Store is not usable, make one with
// NewStore or AddBranch.
type Store struct {
	nodes map[string]*Node
	order []string

	parent *Node
} // }}}

// type Cardinality struct {{{

// Cardinality is an occurrence range for a child label.
//
// Max below zero means unbounded.
type Cardinality struct {
	Min int
	Max int
} // }}}

// func Cardinality.String {{{

func (c Cardinality) String() string {
	switch {
	case c.Max < 0:
		return fmt.Sprintf("%d:", c.Min)
	case c.Min == c.Max:
		return fmt.Sprintf("%d", c.Min)
	}

	return fmt.Sprintf("%d:%d", c.Min, c.Max)
} // }}}

// type InvalidChildError struct {{{

// InvalidChildError says a label was added somewhere it is not allowed,
// either by the enclosing branch's rule or by the builder's whitelist.
type InvalidChildError struct {
	// The label that was rejected.
	Label string

	// The branch it was added under, "" at the root.
	Parent string

	// What would have been accepted there.
	Allowed []string
} // }}}

// func InvalidChildError.Error {{{

func (e *InvalidChildError) Error() string {
	where := "the root"
	if e.Parent != "" {
		where = fmt.Sprintf("%q", e.Parent)
	}

	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%q is not a valid child of %s", e.Label, where)
	}

	return fmt.Sprintf("%q is not a valid child of %s (allowed: %s)",
		e.Label, where, strings.Join(e.Allowed, ", "))
} // }}}

// type MissingChildError struct {{{

// MissingChildError says a branch closed without enough of a mandatory
// child.
type MissingChildError struct {
	Label  string
	Parent string
	Want   int
	Have   int
} // }}}

// func MissingChildError.Error {{{

func (e *MissingChildError) Error() string {
	return fmt.Sprintf("Mandatory child %q of %q: want %d, have %d",
		e.Label, e.Parent, e.Want, e.Have)
} // }}}

// type TooManyChildrenError struct {{{

// TooManyChildrenError says a child label went past its Max.
type TooManyChildrenError struct {
	Label  string
	Parent string
	Max    int
	Have   int
} // }}}

// func TooManyChildrenError.Error {{{

func (e *TooManyChildrenError) Error() string {
	return fmt.Sprintf("Already have %d %q under %q, max %d",
		e.Have, e.Label, e.Parent, e.Max)
} // }}}
