package mconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// type mapSource struct {{{

type mapSource struct {
	data map[string]any
} // }}}

// type fileSource struct {{{

type fileSource struct {
	path string
} // }}}

// type envSource struct {{{

type envSource struct {
	prefix string
} // }}}

// func Map {{{

// Map makes a Source out of a plain nested map.
//
// The usual spot for built-in defaults, sitting first in the chain so
// everything after can override it. The map is read at resolve time,
// not copied up front.
func Map(m map[string]any) Source {
	return &mapSource{data: m}
} // }}}

// func File {{{

// File makes a Source out of a configuration file, the format picked
// by extension: .ini, .json, .toml, .yaml or .yml.
//
// A file that does not exist loads as ErrMissing, an unknown extension
// or unreadable content is always a hard error.
func File(path string) Source {
	return &fileSource{path: path}
} // }}}

// func Env {{{

// Env makes a Source out of the environment variables starting with
// the uppercased prefix plus "_". The prefix is stripped and the
// remainder lowercased -
//
//	MYAPP_SERVER_HOST=x  →  {"server_host": "x"}  for Env("myapp")
//
// The snapshot is taken at resolve time. No matching variables is an
// empty source, not a missing one.
func Env(prefix string) Source {
	return &envSource{prefix: prefix}
} // }}}

// func Parse {{{

// Parse turns a spec string into a Source -
//
//	"ENV:MYAPP"                         environment snapshot
//	"PG:postgres://host/db#settings"    Postgres key/value table
//	anything else                       a file path
//
// The "#table" part of a PG spec is optional and defaults to "config".
func Parse(spec string) Source {
	if strings.HasPrefix(spec, "ENV:") {
		return Env(strings.TrimPrefix(spec, "ENV:"))
	}

	if strings.HasPrefix(spec, "PG:") {
		uri := strings.TrimPrefix(spec, "PG:")
		table := "config"

		if idx := strings.LastIndexByte(uri, '#'); idx >= 0 {
			if t := uri[idx+1:]; t != "" {
				table = t
			}

			uri = uri[:idx]
		}

		return PG(uri, table)
	}

	return File(spec)
} // }}}

// func mapSource.describe {{{

func (s *mapSource) describe() string {
	return "map"
} // }}}

// func mapSource.load {{{

func (s *mapSource) load(*Resolver) (map[string]any, error) {
	return s.data, nil
} // }}}

// func fileSource.describe {{{

func (s *fileSource) describe() string {
	return s.path
} // }}}

// func fileSource.load {{{

func (s *fileSource) load(r *Resolver) (map[string]any, error) {
	data, err := os.ReadFile(s.path)

	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, s.path)
	}

	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml", ".json":
		// YAML is a superset of JSON, one decoder reads both, and it
		// keeps whole numbers as ints.
		out := map[string]any{}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}

		return out, nil
	case ".toml":
		out := map[string]any{}
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}

		return out, nil
	case ".ini":
		return s.loadINI(r, data)
	}

	return nil, fmt.Errorf("Unsupported config format: %s", s.path)
} // }}}

// func fileSource.loadINI {{{

// Sections come back as one nested level, {section: {key: value}},
// with anything before the first section header sitting at the top.
// Keys are lowercased, section names stay as written, values being
// plain ini text run through the value conversion.
func (s *fileSource) loadINI(r *Resolver, data []byte) (map[string]any, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	out := map[string]any{}

	for _, sec := range f.Sections() {
		target := out

		if sec.Name() != ini.DefaultSection {
			target = map[string]any{}
			out[sec.Name()] = target
		}

		for _, key := range sec.Keys() {
			target[strings.ToLower(key.Name())] = r.convert(key.Value())
		}
	}

	return out, nil
} // }}}

// func envSource.describe {{{

func (s *envSource) describe() string {
	return "ENV:" + s.prefix
} // }}}

// func envSource.load {{{

func (s *envSource) load(r *Resolver) (map[string]any, error) {
	p := strings.ToUpper(s.prefix) + "_"

	out := map[string]any{}

	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 || !strings.HasPrefix(kv[:eq], p) {
			continue
		}

		out[strings.ToLower(kv[len(p):eq])] = r.convert(kv[eq+1:])
	}

	return out, nil
} // }}}
