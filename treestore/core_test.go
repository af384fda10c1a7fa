package treestore

import (
	"reflect"
	"testing"
)

// func TestStoreBasics {{{

func TestStoreBasics(t *testing.T) {
	st := NewStore()

	if st.Len() != 0 {
		t.Fatalf("fresh store Len %d?", st.Len())
	}

	st.AddNode("b", nil, 2)
	st.AddNode("a", nil, 1)
	st.AddNode("c", nil, 3)

	if st.Len() != 3 {
		t.Fatalf("Len %d?", st.Len())
	}

	// Insertion order, not sorted.
	if got := st.Keys(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("Keys: %v", got)
	}

	if !st.Has("a") || st.Has("z") {
		t.Fatal("Has")
	}

	if n := st.Get("a"); n == nil || n.Value != 1 {
		t.Fatalf("Get(a): %v", n)
	}

	if st.Get("z") != nil {
		t.Fatal("Get(z) not nil?")
	}

	// Re-adding replaces without moving.
	st.AddNode("a", nil, 10)

	if st.Len() != 3 {
		t.Fatalf("Len after replace %d?", st.Len())
	}

	if got := st.Keys(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("Keys after replace: %v", got)
	}

	if st.Get("a").Value != 10 {
		t.Fatalf("replaced value: %v", st.Get("a").Value)
	}
} // }}}

// func TestStoreLinks {{{

// AddBranch wires both directions at once.
func TestStoreLinks(t *testing.T) {
	root := NewStore()

	users := root.AddBranch("users", nil)

	if !users.IsBranch() || users.IsLeaf() {
		t.Fatal("branch flags")
	}

	sub := users.Value.(*Store)

	if users.Parent() != root {
		t.Fatal("node parent")
	}

	if sub.Parent() != users {
		t.Fatal("store parent")
	}

	name := sub.AddNode("name", nil, "Alice")

	if !name.IsLeaf() || name.IsBranch() {
		t.Fatal("leaf flags")
	}

	// Root and Depth climb out through both links.
	if sub.Root() != root || name.Root() != root {
		t.Fatal("root")
	}

	if root.Root() != root {
		t.Fatal("root of root")
	}

	deeper := sub.AddBranch("prefs", nil).Value.(*Store)

	if d := root.Depth(); d != 0 {
		t.Fatalf("root depth %d", d)
	}

	if d := sub.Depth(); d != 1 {
		t.Fatalf("sub depth %d", d)
	}

	if d := deeper.Depth(); d != 2 {
		t.Fatalf("deeper depth %d", d)
	}

	if root.Parent() != nil {
		t.Fatal("root has a parent?")
	}

	// A node never added anywhere has no root.
	loose := &Node{Label: "x"}

	if loose.Root() != nil {
		t.Fatal("detached node has a root?")
	}

	if loose.Parent() != nil {
		t.Fatal("detached node has a parent?")
	}
} // }}}

// func TestStoreAsMap {{{

func TestStoreAsMap(t *testing.T) {
	root := NewStore()
	root.AddNode("name", map[string]any{"ignored": true}, "demo")

	db := root.AddBranch("db", map[string]any{"driver": "pg", "host": "attr-host"})
	sub := db.Value.(*Store)
	sub.AddNode("host", nil, "localhost")
	sub.AddNode("port", nil, 5432)

	got := root.AsMap()

	want := map[string]any{
		// Leaf attrs do not survive, only the value does.
		"name": "demo",
		"db": map[string]any{
			// Branch attrs merge in, children win on collision.
			"driver": "pg",
			"host":   "localhost",
			"port":   5432,
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got:  %#v\nwant: %#v", got, want)
	}

	// Attrless branch is just the child map.
	root2 := NewStore()
	root2.AddBranch("empty", nil)

	if got := root2.AsMap(); !reflect.DeepEqual(got, map[string]any{"empty": map[string]any{}}) {
		t.Fatalf("attrless: %#v", got)
	}
} // }}}

// func TestStoreWalk {{{

func TestStoreWalk(t *testing.T) {
	root := NewStore()
	root.AddNode("first", nil, 1)

	users := root.AddBranch("users", nil).Value.(*Store)
	users.AddNode("alice", nil, "a")
	users.AddNode("bob", nil, "b")

	root.AddNode("last", nil, 9)

	var paths []string

	root.Walk(func(path string, n *Node) bool {
		paths = append(paths, path)
		return true
	})

	want := []string{"first", "users", "users.alice", "users.bob", "last"}

	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths: %v", paths)
	}

	// Returning false stops everything, not just the subtree.
	paths = nil

	root.Walk(func(path string, n *Node) bool {
		paths = append(paths, path)
		return path != "users.alice"
	})

	if !reflect.DeepEqual(paths, []string{"first", "users", "users.alice"}) {
		t.Fatalf("stopped paths: %v", paths)
	}
} // }}}

// func TestParseCardinality {{{

func TestParseCardinality(t *testing.T) {
	good := []struct {
		spec string
		want Cardinality
	}{
		{"3", Cardinality{3, 3}},
		{"0", Cardinality{0, 0}},
		{"0:", Cardinality{0, -1}},
		{"1:", Cardinality{1, -1}},
		{"1:3", Cardinality{1, 3}},
		{":5", Cardinality{0, 5}},
		{":", Cardinality{0, -1}},
		{" 2:4 ", Cardinality{2, 4}},
	}

	for _, g := range good {
		c, err := ParseCardinality(g.spec)
		if err != nil {
			t.Fatalf("ParseCardinality(%q): %s", g.spec, err)
		}

		if c != g.want {
			t.Fatalf("ParseCardinality(%q) = %v, want %v", g.spec, c, g.want)
		}
	}

	bad := []string{"", "x", "-1", "1:x", "3:1", "1:-2", "1:2:3"}

	for _, spec := range bad {
		if _, err := ParseCardinality(spec); err == nil {
			t.Fatalf("ParseCardinality(%q) passed?", spec)
		}
	}
} // }}}

// func TestCardinalityString {{{

func TestCardinalityString(t *testing.T) {
	if s := (Cardinality{1, 3}).String(); s != "1:3" {
		t.Fatalf("1:3 prints %q", s)
	}

	if s := (Cardinality{2, 2}).String(); s != "2" {
		t.Fatalf("2 prints %q", s)
	}

	if s := (Cardinality{0, -1}).String(); s != "0:" {
		t.Fatalf("0: prints %q", s)
	}
} // }}}
