package typeutil

import (
	"bytes"
	"strings"
	"testing"
)

type plain struct {
	A int
}

type wrapper struct {
	plain
	B string
}

type ptrWrapper struct {
	*plain
}

type deep struct {
	wrapper
}

// A struct that embeds a pointer to itself. Is has to survive this.
type loop struct {
	*loop
}

type notEmbedded struct {
	P plain
}

// func TestTypeName {{{

func TestTypeName(t *testing.T) {
	if n := TypeName(42); n != "int" {
		t.Fatalf("int: %s", n)
	}

	if n := TypeName("hi"); n != "string" {
		t.Fatalf("string: %s", n)
	}

	if n := TypeName(plain{}); n != "toolbox/typeutil.plain" {
		t.Fatalf("plain: %s", n)
	}

	// Stdlib types carry their path too.
	if n := TypeName(bytes.Buffer{}); n != "bytes.Buffer" {
		t.Fatalf("bytes.Buffer: %s", n)
	}

	// Pointers answer as the thing they point at.
	if TypeName(&plain{}) != TypeName(plain{}) {
		t.Fatal("*plain != plain")
	}

	pp := &plain{}
	if TypeName(&pp) != TypeName(plain{}) {
		t.Fatal("**plain != plain")
	}

	if n := TypeName(nil); n != "nil" {
		t.Fatalf("nil: %s", n)
	}

	// Typed nil pointers still have a type.
	var np *plain
	if n := TypeName(np); n != "toolbox/typeutil.plain" {
		t.Fatalf("nil *plain: %s", n)
	}

	// Unnamed types come back spelled out.
	if n := TypeName(map[string]int{}); n != "map[string]int" {
		t.Fatalf("map: %s", n)
	}

	if n := TypeName([]string{}); n != "[]string" {
		t.Fatalf("slice: %s", n)
	}
} // }}}

// func TestIsForms {{{

func TestIsForms(t *testing.T) {
	v := plain{}

	// All three name forms hit the same type.
	if !Is(v, "toolbox/typeutil.plain") {
		t.Fatal("full form")
	}

	if !Is(v, "typeutil.plain") {
		t.Fatal("short form")
	}

	if !Is(v, "plain") {
		t.Fatal("bare form")
	}

	if Is(v, "wrapper") {
		t.Fatal("plain is wrapper?")
	}

	if Is(v, "other/typeutil.plain") {
		t.Fatal("wrong path matched?")
	}

	if Is(v, "") {
		t.Fatal("empty name matched?")
	}

	if Is(nil, "plain") {
		t.Fatal("nil matched?")
	}

	// Builtins by bare name.
	if !Is(42, "int") {
		t.Fatal("int")
	}

	if Is(42, "int64") {
		t.Fatal("int is int64?")
	}
} // }}}

// func TestIsPointers {{{

func TestIsPointers(t *testing.T) {
	if !Is(&plain{}, "plain") {
		t.Fatal("*plain")
	}

	p := &plain{}
	if !Is(&p, "plain") {
		t.Fatal("**plain")
	}

	var np *plain
	if !Is(np, "plain") {
		t.Fatal("nil *plain")
	}
} // }}}

// func TestIsEmbedded {{{

func TestIsEmbedded(t *testing.T) {
	// Direct embedding.
	if !Is(wrapper{}, "plain") {
		t.Fatal("wrapper embeds plain")
	}

	// Through a pointer.
	if !Is(ptrWrapper{}, "plain") {
		t.Fatal("ptrWrapper embeds *plain")
	}

	// Two levels down.
	if !Is(deep{}, "plain") {
		t.Fatal("deep embeds wrapper embeds plain")
	}

	if !Is(deep{}, "wrapper") {
		t.Fatal("deep embeds wrapper")
	}

	// The outer name still works.
	if !Is(deep{}, "deep") {
		t.Fatal("deep is deep")
	}

	// A named field is not embedding.
	if Is(notEmbedded{}, "plain") {
		t.Fatal("named field counted as embedded?")
	}

	// Embedding does not flow upward.
	if Is(plain{}, "wrapper") {
		t.Fatal("plain is wrapper?")
	}
} // }}}

// func TestIsLoop {{{

// The only thing that matters here is that it returns at all.
func TestIsLoop(t *testing.T) {
	if Is(loop{}, "plain") {
		t.Fatal("loop is plain?")
	}

	if !Is(loop{}, "loop") {
		t.Fatal("loop is loop")
	}
} // }}}

// func TestIsStringBuilder {{{

// A realistic check against a stdlib type nobody wants to import just
// to type-assert.
func TestIsStringBuilder(t *testing.T) {
	var sb strings.Builder

	if !Is(&sb, "strings.Builder") {
		t.Fatal("strings.Builder short form")
	}

	if !Is(&sb, "Builder") {
		t.Fatal("Builder bare form")
	}

	if Is(&sb, "bytes.Buffer") {
		t.Fatal("Builder is Buffer?")
	}
} // }}}
