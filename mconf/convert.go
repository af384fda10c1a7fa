package mconf

import (
	"strconv"
	"strings"
)

// func Resolver.convert {{{

// All string-only sources funnel their values through here.
func (r *Resolver) convert(s string) any {
	if r.c.NoConvert {
		return s
	}

	return autoConvert(s)
} // }}}

// func autoConvert {{{

// Guesses the type a configuration string means.
//
// Word forms first, compared case-insensitively: "true", "yes", "on"
// and "1" are true, "false", "no", "off" and "0" are false, "none",
// "null" and the empty string are nil. Then whole numbers, then
// single-dot decimals, and what is left stays a string, trimmed.
//
// Note "1" and "0" land as booleans, not numbers. Numeric settings
// nearly never carry a meaningful bare 1 or 0, toggle settings nearly
// always do.
func autoConvert(s string) any {
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	case "none", "null", "":
		return nil
	}

	if isInt(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}

		// Too many digits for an int, keep the string.
		return s
	}

	if isFloat(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}

		return s
	}

	return s
} // }}}

// func isInt {{{

// An optional leading minus, then digits, nothing else.
func isInt(s string) bool {
	s = strings.TrimPrefix(s, "-")

	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
} // }}}

// func isFloat {{{

// A single dot plus digits, optional leading minus. One side of the
// dot may sit empty, ".5" and "5." both count, but a bare "." does
// not, and version-ish strings like "1.2.3" stay strings.
func isFloat(s string) bool {
	s = strings.TrimPrefix(s, "-")

	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s) < 2 {
		return false
	}

	for i := 0; i < len(s); i++ {
		if i == dot {
			continue
		}

		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
} // }}}

// func flattenMap {{{

// Flattens a nested map into underscore-joined keys, depth first -
//
//	{"server": {"http": {"port": 80}}}  →  {"server_http_port": 80}
//
// Only string-keyed maps nest, anything else is a leaf and lands as
// is. An empty nested map contributes nothing, so it vanishes from the
// flat result.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any, len(nested))

	for k, v := range nested {
		path := k
		if prefix != "" {
			path = prefix + "_" + k
		}

		if sub, ok := v.(map[string]any); ok {
			for sk, sv := range flattenMap(sub, path) {
				flat[sk] = sv
			}

			continue
		}

		flat[path] = v
	}

	return flat
} // }}}

// func copyMap {{{

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))

	for k, v := range m {
		out[k] = v
	}

	return out
} // }}}
