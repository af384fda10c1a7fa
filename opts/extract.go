package opts

import (
	"strings"
)

// func Extract {{{

// Extract pulls the entries whose keys start with the prefix out into
// their own map.
//
// The prefix gets an underscore appended when it does not already end
// with one, so Extract(m, "server", ...) and Extract(m, "server_", ...)
// mean the same thing. With slicePrefix the result keys lose the
// prefix, with pop the matched keys leave src.
//
//	m := map[string]any{"server_host": "x", "server_port": 1, "debug": true}
//	Extract(m, "server", false, true)  →  {"host": "x", "port": 1}
func Extract(src map[string]any, prefix string, pop, slicePrefix bool) map[string]any {
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	out := map[string]any{}

	for k, v := range src {
		if !strings.HasPrefix(k, prefix) {
			continue
		}

		name := k
		if slicePrefix {
			name = k[len(prefix):]
		}

		out[name] = v

		if pop {
			delete(src, k)
		}
	}

	return out
} // }}}

// func Partition {{{

// Partition splits src into one group per prefix, keys stripped, plus
// the remainder that matched none of them.
//
// Earlier prefixes take keys first, so overlapping prefixes never
// yield the same key twice. The input map is left alone, the split
// works on a copy.
func Partition(src map[string]any, prefixes ...string) (map[string]map[string]any, map[string]any) {
	rest := make(map[string]any, len(src))

	for k, v := range src {
		rest[k] = v
	}

	groups := make(map[string]map[string]any, len(prefixes))

	for _, p := range prefixes {
		groups[p] = Extract(rest, p, true, true)
	}

	return groups, rest
} // }}}
