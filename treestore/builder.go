package treestore

import (
	"fmt"
	"sort"
	"strings"
)

// type Builder struct {{{

// Builder grows a Store fluently -
//
//	st, err := treestore.NewBuilder().
//		Branch("users", nil).
//		Branch("user", map[string]any{"id": 1}).
//		Leaf("name", "Alice", nil).
//		Up().
//		Up().
//		Build()
//
// Keys are auto-generated as label_0, label_1 and so on, counting
// nodes of the same label under the parent, unless Named set one
// explicitly.
//
// Rule and Allow add validation. The builder is deferred-error: the
// first violation sticks, every later call is a no-op, and Build
// reports it. That keeps the chain free of error returns without
// letting a violation slip through.
type Builder struct {
	store *Store
	cur   *Store

	// Child cardinalities per branch label. The "" label rules the
	// root level.
	rules map[string]map[string]Cardinality

	// Labels allowed anywhere, nil means all.
	allow map[string]struct{}

	// One frame per open branch, the root frame included. counts is
	// how many children of each label this branch has taken, which is
	// what the cardinality checks run against.
	frames []frame

	// Pending explicit key from Named, consumed by the next node.
	name string

	err error
}

type frame struct {
	label  string
	counts map[string]int
} // }}}

// func NewBuilder {{{

// NewBuilder returns a Builder positioned at the root of a fresh
// Store.
func NewBuilder() *Builder {
	b := &Builder{
		store: NewStore(),
		rules: make(map[string]map[string]Cardinality),
		frames: []frame{
			{counts: make(map[string]int)},
		},
	}

	b.cur = b.store

	return b
} // }}}

// func Builder.Rule {{{

// Rule constrains the children of branches with the given label.
//
// The map goes child label to cardinality spec, in ParseCardinality
// form - Rule("user", map[string]string{"name": "1", "email": "0:"})
// demands exactly one name and allows any number of emails. Once a
// branch has a rule, only the labels it names may go inside it.
//
// The empty label rules the root level itself.
func (b *Builder) Rule(label string, children map[string]string) *Builder {
	if b.err != nil {
		return b
	}

	rule := make(map[string]Cardinality, len(children))

	for child, spec := range children {
		c, err := ParseCardinality(spec)
		if err != nil {
			b.err = fmt.Errorf("Rule %q, child %q: %w", label, child, err)
			return b
		}

		rule[child] = c
	}

	b.rules[label] = rule

	return b
} // }}}

// func Builder.Allow {{{

// Allow whitelists labels for the whole tree. Calling it with none
// changes nothing, the default is to allow everything.
func (b *Builder) Allow(labels ...string) *Builder {
	if b.err != nil || len(labels) == 0 {
		return b
	}

	if b.allow == nil {
		b.allow = make(map[string]struct{}, len(labels))
	}

	for _, l := range labels {
		b.allow[l] = struct{}{}
	}

	return b
} // }}}

// func Builder.Branch {{{

// Branch opens a branch node and descends into it.
func (b *Builder) Branch(label string, attr map[string]any) *Builder {
	if b.err != nil {
		return b
	}

	if err := b.admit(label); err != nil {
		b.err = err
		return b
	}

	node := b.cur.AddBranch(b.takeName(label), attr)

	b.cur = node.Value.(*Store)
	b.frames = append(b.frames, frame{
		label:  label,
		counts: make(map[string]int),
	})

	return b
} // }}}

// func Builder.Leaf {{{

// Leaf adds a leaf node at the current level.
func (b *Builder) Leaf(label string, value any, attr map[string]any) *Builder {
	if b.err != nil {
		return b
	}

	if err := b.admit(label); err != nil {
		b.err = err
		return b
	}

	b.cur.AddNode(b.takeName(label), attr, value)

	return b
} // }}}

// func Builder.Named {{{

// Named sets the store key for the next Branch or Leaf, instead of
// the auto-generated label_N.
func (b *Builder) Named(name string) *Builder {
	if b.err != nil {
		return b
	}

	b.name = name

	return b
} // }}}

// func Builder.Up {{{

// Up closes the current branch and climbs back to its parent,
// checking the branch got every mandatory child.
func (b *Builder) Up() *Builder {
	if b.err != nil {
		return b
	}

	if len(b.frames) == 1 {
		b.err = fmt.Errorf("Already at root level")
		return b
	}

	if err := b.checkMandatory(); err != nil {
		b.err = err
		return b
	}

	b.frames = b.frames[:len(b.frames)-1]
	b.cur = b.cur.parent.parent

	return b
} // }}}

// func Builder.Build {{{

// Build closes every open branch, checking each on the way out, and
// returns the finished Store.
func (b *Builder) Build() (*Store, error) {
	for b.err == nil && len(b.frames) > 1 {
		b.Up()
	}

	if b.err == nil {
		// The root level can carry a rule too.
		if err := b.checkMandatory(); err != nil {
			b.err = err
		}
	}

	if b.err != nil {
		return nil, b.err
	}

	return b.store, nil
} // }}}

// func Builder.admit {{{

// Whitelist, rule membership and max-count checks for adding a label
// at the current level. Bumps the count on success.
func (b *Builder) admit(label string) error {
	top := &b.frames[len(b.frames)-1]

	if b.allow != nil {
		if _, ok := b.allow[label]; !ok {
			return &InvalidChildError{
				Label:   label,
				Parent:  top.label,
				Allowed: sortedSet(b.allow),
			}
		}
	}

	rule, ok := b.rules[top.label]
	if ok {
		c, ok := rule[label]
		if !ok {
			return &InvalidChildError{
				Label:   label,
				Parent:  top.label,
				Allowed: sortedRule(rule),
			}
		}

		if c.Max >= 0 && top.counts[label] >= c.Max {
			return &TooManyChildrenError{
				Label:  label,
				Parent: top.label,
				Max:    c.Max,
				Have:   top.counts[label],
			}
		}
	}

	top.counts[label]++

	return nil
} // }}}

// func Builder.checkMandatory {{{

// Every Min in the current branch's rule has to be satisfied before
// the branch closes.
func (b *Builder) checkMandatory() error {
	top := &b.frames[len(b.frames)-1]

	rule, ok := b.rules[top.label]
	if !ok {
		return nil
	}

	// Sorted so the same violation always reports the same child.
	for _, label := range sortedRule(rule) {
		c := rule[label]

		if c.Min > 0 && top.counts[label] < c.Min {
			return &MissingChildError{
				Label:  label,
				Parent: top.label,
				Want:   c.Min,
				Have:   top.counts[label],
			}
		}
	}

	return nil
} // }}}

// func Builder.takeName {{{

// The store key for the next node: the pending Named key, or
// label_N, N counting the same-labeled keys already under the parent.
func (b *Builder) takeName(label string) string {
	if b.name != "" {
		n := b.name
		b.name = ""

		return n
	}

	count := 0

	for _, k := range b.cur.order {
		if k == label || strings.HasPrefix(k, label+"_") {
			count++
		}
	}

	return fmt.Sprintf("%s_%d", label, count)
} // }}}

// func sortedSet {{{

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))

	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
} // }}}

// func sortedRule {{{

func sortedRule(rule map[string]Cardinality) []string {
	out := make([]string, 0, len(rule))

	for k := range rule {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
} // }}}
