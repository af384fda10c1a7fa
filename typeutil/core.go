// Type membership checks by name, no import of the type needed.
package typeutil

import (
	"reflect"
	"strings"
)

// func TypeName {{{

// TypeName returns the fully qualified name of the value's type, the
// import path plus the type name -
//
//	TypeName(tags.Tags{})   "toolbox/tags.Tags"
//	TypeName(&bytes.Buffer{})  "bytes.Buffer"
//	TypeName(42)  "int"
//
// Pointers are dereferenced first, a *T and a T answer the same.
// Builtins carry no package path so they come back bare. Unnamed types
// come back in their spelled out form, "map[string]int" and the like.
//
// A nil value has no type at all, that comes back as "nil".
func TypeName(v any) string {
	t := baseType(v)
	if t == nil {
		return "nil"
	}

	if t.Name() == "" {
		return t.String()
	}

	if t.PkgPath() == "" {
		return t.Name()
	}

	return t.PkgPath() + "." + t.Name()
} // }}}

// func Is {{{

// Is reports whether the value is of the named type, or embeds it.
//
// The name can come in three forms -
//
//	"toolbox/tags.Tags"  full import path plus type
//	"tags.Tags"          package short name plus type
//	"Tags"               bare type name
//
// A bare name (no dot, no slash) compares only the type name itself.
//
// Pointers are dereferenced on both the value and any embedded fields,
// and embedded structs are walked all the way down, so a type that picks
// up another through embedding still answers true for it.
//
// Is never panics and never needs the named type imported anywhere.
// A nil value is no type, so it answers false for every name.
func Is(v any, name string) bool {
	if name == "" {
		return false
	}

	t := baseType(v)
	if t == nil {
		return false
	}

	return matches(t, name, make(map[reflect.Type]bool))
} // }}}

// func baseType {{{

// The value's type with any pointer layers peeled off.
func baseType(v any) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
} // }}}

// func matches {{{

// Checks the type itself, then every embedded field, depth first.
//
// The seen map stops pointer embedding loops, a struct that embeds a
// pointer to itself would otherwise never finish.
func matches(t reflect.Type, name string, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}

	seen[t] = true

	if nameMatches(t, name) {
		return true
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		if !f.Anonymous {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		if matches(ft, name, seen) {
			return true
		}
	}

	return false
} // }}}

// func nameMatches {{{

func nameMatches(t reflect.Type, name string) bool {
	switch {
	case strings.ContainsRune(name, '/'):
		// Full form, import path and all.
		return t.PkgPath()+"."+t.Name() == name
	case strings.ContainsRune(name, '.'):
		// Short form, "pkg.Type" - which is how reflect spells a
		// named type.
		return t.String() == name
	}

	return t.Name() == name
} // }}}
