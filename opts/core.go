package opts

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// func New {{{

// New wraps the map as Options, applying the nested wrapping rules.
// The map itself is not kept, a nil map gives empty Options.
func New(src map[string]any) *Options {
	o := &Options{
		data: make(map[string]any, len(src)),
	}

	for k, v := range src {
		o.data[k] = wrapValue(v)
	}

	return o
} // }}}

// func MakeOpts {{{

// MakeOpts lays the incoming values over the defaults and wraps the
// result.
//
// The MergeConfig filters run against incoming pairs only. An
// incoming value that gets dropped leaves the default for its key in
// place.
func MakeOpts(incoming, defaults map[string]any, c MergeConfig) *Options {
	merged := make(map[string]any, len(defaults)+len(incoming))

	for k, v := range defaults {
		merged[k] = v
	}

	for k, v := range incoming {
		if c.keep(k, v) {
			merged[k] = v
		}
	}

	return New(merged)
} // }}}

// func FilteredMap {{{

// FilteredMap copies src keeping the pairs keep says yes to. A nil
// keep copies everything.
func FilteredMap(src map[string]any, keep func(k string, v any) bool) map[string]any {
	out := make(map[string]any, len(src))

	for k, v := range src {
		if keep == nil || keep(k, v) {
			out[k] = v
		}
	}

	return out
} // }}}

// func Options.Get {{{

// Get returns the value under the key, nil when missing. Wrapped
// values come back wrapped, a nested map is a *Options here.
func (o *Options) Get(key string) any {
	return o.data[key]
} // }}}

// func Options.Has {{{

func (o *Options) Has(key string) bool {
	_, ok := o.data[key]
	return ok
} // }}}

// func Options.GetString {{{

// GetString returns the value as a string, "" when missing or nil,
// %v for anything not already a string.
func (o *Options) GetString(key string) string {
	switch v := o.data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
} // }}}

// func Options.GetInt {{{

// GetInt returns the value as an int. Whole numbers of any width
// convert, so do numeric strings, everything else is 0.
func (o *Options) GetInt(key string) int {
	switch v := o.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return 0
} // }}}

// func Options.GetBool {{{

// GetBool returns the value as a bool, parsing strings the strconv
// way. Anything else is false.
func (o *Options) GetBool(key string) bool {
	switch v := o.data[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return false
} // }}}

// func Options.GetFloat {{{

func (o *Options) GetFloat(key string) float64 {
	switch v := o.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}

	return 0
} // }}}

// func Options.Sub {{{

// Sub returns the nested Options under the key, nil when the key is
// missing or not nested.
func (o *Options) Sub(key string) *Options {
	sub, _ := o.data[key].(*Options)
	return sub
} // }}}

// func Options.Set {{{

// Set stores the value under the key, wrapping it like New would.
func (o *Options) Set(key string, v any) {
	o.data[key] = wrapValue(v)
} // }}}

// func Options.Delete {{{

func (o *Options) Delete(key string) {
	delete(o.data, key)
} // }}}

// func Options.Len {{{

func (o *Options) Len() int {
	return len(o.data)
} // }}}

// func Options.Keys {{{

// Keys returns the keys, sorted.
func (o *Options) Keys() []string {
	out := make([]string, 0, len(o.data))

	for k := range o.data {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
} // }}}

// func Options.AsMap {{{

// AsMap returns the options as plain nested maps, fully unwrapped and
// copied, nothing shared with the Options.
func (o *Options) AsMap() map[string]any {
	out := make(map[string]any, len(o.data))

	for k, v := range o.data {
		out[k] = unwrapValue(v)
	}

	return out
} // }}}

// func Options.Merge {{{

// Merge returns new Options with the other's values laid over this
// one's, key by key, the right side winning. Neither input changes.
func (o *Options) Merge(other *Options) *Options {
	merged := &Options{
		data: make(map[string]any, len(o.data)),
	}

	for k, v := range o.data {
		merged.data[k] = v
	}

	if other != nil {
		for k, v := range other.data {
			merged.data[k] = v
		}
	}

	return merged
} // }}}

// func Options.Decode {{{

// Decode fills dst, normally a struct pointer, from the options.
// Matching is the mapstructure kind: case-insensitive field names, or
// explicit `mapstructure:"..."` tags, weakly typed, so "8080" fills an
// int field and durations parse from strings.
func (o *Options) Decode(dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}

	return dec.Decode(o.AsMap())
} // }}}

// func Options.String {{{

func (o *Options) String() string {
	// fmt sorts map keys, so this is stable.
	return fmt.Sprintf("Options(%v)", o.AsMap())
} // }}}

// func wrapValue {{{

func wrapValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return New(t)
	case *Options:
		return t
	case []string:
		if len(t) == 0 {
			return v
		}

		flags := make(map[string]any, len(t))
		for _, s := range t {
			flags[s] = true
		}

		return New(flags)
	case []map[string]any:
		if len(t) == 0 {
			return v
		}

		return indexMapList(t)
	case []any:
		if len(t) == 0 {
			return v
		}

		if ss, ok := allStrings(t); ok {
			flags := make(map[string]any, len(ss))
			for _, s := range ss {
				flags[s] = true
			}

			return New(flags)
		}

		if ms, ok := allMaps(t); ok {
			return indexMapList(ms)
		}
	}

	return v
} // }}}

// func unwrapValue {{{

func unwrapValue(v any) any {
	switch t := v.(type) {
	case *Options:
		return t.AsMap()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = unwrapValue(e)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = unwrapValue(e)
		}

		return out
	}

	return v
} // }}}

// func indexMapList {{{

// A list of maps becomes Options keyed by a shared scalar field.
//
// The index key has to be present in every element with a non-nil
// scalar value, a nil makes for a useless map key. "name" wins, then
// "id", then the alphabetically first qualifying key. A list with no
// such key stays a plain list.
func indexMapList(items []map[string]any) any {
	candidates := map[string]bool{}

	for k, v := range items[0] {
		if isScalar(v) {
			candidates[k] = true
		}
	}

	for _, item := range items[1:] {
		for k := range candidates {
			if v, ok := item[k]; !ok || !isScalar(v) {
				delete(candidates, k)
			}
		}
	}

	key := ""

	switch {
	case candidates["name"]:
		key = "name"
	case candidates["id"]:
		key = "id"
	default:
		for k := range candidates {
			if key == "" || k < key {
				key = k
			}
		}
	}

	if key == "" {
		return items
	}

	indexed := make(map[string]any, len(items))

	for _, item := range items {
		indexed[fmt.Sprint(item[key])] = item
	}

	return New(indexed)
} // }}}

// func isScalar {{{

func isScalar(v any) bool {
	if v == nil {
		return false
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return false
	}

	return true
} // }}}

// func allStrings {{{

func allStrings(items []any) ([]string, bool) {
	out := make([]string, len(items))

	for i, v := range items {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}

		out[i] = s
	}

	return out, true
} // }}}

// func allMaps {{{

func allMaps(items []any) ([]map[string]any, bool) {
	out := make([]map[string]any, len(items))

	for i, v := range items {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}

		out[i] = m
	}

	return out, true
} // }}}
