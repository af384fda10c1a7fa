// Option maps with defaults, filters and nested wrapping.
//
// The usual flow: something hands you a map of settings (a config file,
// the environment, CLI flags, plain code), you lay it over your
// defaults with MakeOpts, and read the result through Options.
package opts

import (
	"reflect"
)

// type Options struct {{{

// Options is a read-mostly view over a merged settings map.
//
// Values wrap on the way in -
//
//   - a nested map[string]any becomes a nested *Options
//   - a non-empty []string becomes a feature-flag Options, every
//     element true
//   - a non-empty list of maps becomes an Options indexed by a common
//     scalar key of the elements ("name" and "id" are preferred)
//   - anything else stays as it is
//
// Wrapping is one way: AsMap unwraps nested Options back to plain
// maps, so a wrapped list comes back in its map form.
//
// Options is not safe for concurrent mutation, treat it as built-once.
type Options struct {
	data map[string]any
} // }}}

// type MergeConfig struct {{{

// MergeConfig controls which incoming values MakeOpts lets through.
//
// Filters only ever apply to the incoming side. A value they drop
// falls back to the default for that key, the defaults themselves are
// never filtered.
type MergeConfig struct {
	// Drop incoming nils.
	IgnoreNone bool

	// Drop incoming zero-length strings, slices and maps. 0, false
	// and nil do not count as empty.
	IgnoreEmpty bool

	// Keep-predicate over incoming pairs, nil keeps everything.
	Filter func(k string, v any) bool
} // }}}

// func MergeConfig.keep {{{

func (c MergeConfig) keep(k string, v any) bool {
	if c.IgnoreNone && v == nil {
		return false
	}

	if c.IgnoreEmpty && isEmptyValue(v) {
		return false
	}

	if c.Filter != nil && !c.Filter(k, v) {
		return false
	}

	return true
} // }}}

// func isEmptyValue {{{

func isEmptyValue(v any) bool {
	if v == nil {
		return false
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}

	return false
} // }}}
