package opts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// func FromFile {{{

// FromFile loads a settings file into Options, the format picked by
// extension: .yaml, .yml, .json, .toml or .ini.
//
// An ini file flattens to "section_key" keys, keys from before the
// first section header stay unprefixed, ini values stay raw strings.
// Keys inside sections are lowercased, section names are not.
//
// A missing file is empty Options, not an error, so an optional local
// override file costs nothing to mention. Anything else that goes
// wrong, an unreadable file, an unknown extension, bad syntax, is an
// error.
func FromFile(path string) (*Options, error) {
	m, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	return New(m), nil
} // }}}

// func FromEnv {{{

// FromEnv snapshots the environment variables starting with the
// uppercased prefix plus "_". The prefix is stripped, the remainder
// lowercased, values stay raw strings.
//
//	MYAPP_SERVER_HOST=x  →  {"server_host": "x"}  for FromEnv("myapp")
func FromEnv(prefix string) *Options {
	p := strings.ToUpper(prefix) + "_"

	out := map[string]any{}

	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 || !strings.HasPrefix(kv[:eq], p) {
			continue
		}

		out[strings.ToLower(kv[len(p):eq])] = kv[eq+1:]
	}

	return New(out)
} // }}}

// func FromArgs {{{

// FromArgs reads CLI-shaped arguments into Options -
//
//	--key=value        value as given
//	--key value        same
//	--flag             true, when no value follows
//
// Dashes inside key names become underscores, so --log-level lands
// under "log_level". Values stay raw strings. Arguments that are not
// flags are skipped, as is a bare "--" separator.
func FromArgs(args []string) *Options {
	out := map[string]any{}

	i := 0
	for i < len(args) {
		arg := args[i]

		if !strings.HasPrefix(arg, "--") {
			i++
			continue
		}

		body := strings.TrimPrefix(arg, "--")
		if body == "" {
			i++
			continue
		}

		var key string
		var val any

		if eq := strings.IndexByte(body, '='); eq >= 0 {
			key, val = body[:eq], body[eq+1:]
			i++
		} else if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
			key, val = body, true
			i++
		} else {
			key, val = body, args[i+1]
			i += 2
		}

		if key == "" {
			continue
		}

		out[strings.ReplaceAll(key, "-", "_")] = val
	}

	return New(out)
} // }}}

// func Parse {{{

// Parse turns a source spec into Options: "ENV:PREFIX" snapshots the
// environment, anything else is a file path for FromFile.
func Parse(spec string) (*Options, error) {
	if strings.HasPrefix(spec, "ENV:") {
		return FromEnv(strings.TrimPrefix(spec, "ENV:")), nil
	}

	return FromFile(spec)
} // }}}

// func loadFile {{{

func loadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)

	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}

	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		// YAML is a superset of JSON, one decoder reads both, and it
		// keeps whole numbers as ints.
		out := map[string]any{}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return out, nil
	case ".toml":
		out := map[string]any{}
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return out, nil
	case ".ini":
		return loadINI(path, data)
	}

	return nil, fmt.Errorf("Unsupported config format: %s", path)
} // }}}

// func loadINI {{{

func loadINI(path string, data []byte) (map[string]any, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := map[string]any{}

	for _, sec := range f.Sections() {
		for _, key := range sec.Keys() {
			name := strings.ToLower(key.Name())

			if sec.Name() != ini.DefaultSection {
				name = sec.Name() + "_" + name
			}

			out[name] = key.Value()
		}
	}

	return out, nil
} // }}}
