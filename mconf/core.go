package mconf

import (
	"errors"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	"toolbox/opts"
)

// func New {{{

// New builds a Resolver over the given chain of sources.
//
// Order matters: sources load first to last and later ones override
// earlier ones. Nothing loads yet, the chain runs on the first Resolve
// or Get.
func New(c Config, sources ...Source) *Resolver {
	l := zerolog.Nop()
	if c.Logger != nil {
		l = c.Logger.With().Str("mod", "mconf").Logger()
	}

	return &Resolver{
		l:       l,
		c:       c,
		sources: sources,
	}
} // }}}

// func Resolver.Resolve {{{

// Resolve returns the flat, merged configuration.
//
// The chain only actually loads the first time, after that the cached
// result answers until Reload. The returned map is the caller's own
// copy, write on it freely.
func (r *Resolver) Resolve() (map[string]any, error) {
	m, err := r.resolved()
	if err != nil {
		return nil, err
	}

	return copyMap(m), nil
} // }}}

// func Resolver.resolved {{{

// The shared cache behind Resolve, Get and friends. Callers must not
// write to the returned map.
func (r *Resolver) resolved() (map[string]any, error) {
	r.mu.RLock()
	if r.loaded {
		m := r.cache
		r.mu.RUnlock()
		return m, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Someone may have loaded while we waited on the lock.
	if r.loaded {
		return r.cache, nil
	}

	m, err := r.load()
	if err != nil {
		return nil, err
	}

	r.cache = m
	r.loaded = true

	return m, nil
} // }}}

// func Resolver.load {{{

// Runs the chain: each source loads into a nested map, flattens with
// "_", and lands over the accumulated result, later sources winning
// key by key.
func (r *Resolver) load() (map[string]any, error) {
	fl := r.l.With().Str("func", "load").Logger()

	out := map[string]any{}

	for _, src := range r.sources {
		m, err := src.load(r)
		if err != nil {
			if r.c.SkipMissing && errors.Is(err, ErrMissing) {
				fl.Debug().Str("source", src.describe()).Msg("skipping missing source")
				continue
			}

			fl.Err(err).Str("source", src.describe()).Msg("load")
			return nil, err
		}

		for k, v := range flattenMap(m, "") {
			out[k] = v
		}
	}

	fl.Debug().Int("sources", len(r.sources)).Int("keys", len(out)).Send()

	return out, nil
} // }}}

// func Resolver.Get {{{

// Get returns the value under the flat key, nil when missing.
//
// An unresolved Resolver resolves lazily here. A chain that fails to
// resolve answers nil for everything with a logged warning, Resolve is
// the place to see the error itself.
func (r *Resolver) Get(key string) any {
	m, err := r.resolved()
	if err != nil {
		fl := r.l.With().Str("func", "Get").Logger()
		fl.Warn().Err(err).Str("key", key).Msg("resolve")
		return nil
	}

	return m[key]
} // }}}

// func Resolver.GetDefault {{{

// GetDefault is Get with a fallback for missing keys.
//
// A key that resolved to nil on purpose ("null" in a file) takes the
// fallback too, flat nil carries no "deliberate" marker.
func (r *Resolver) GetDefault(key string, def any) any {
	if v := r.Get(key); v != nil {
		return v
	}

	return def
} // }}}

// func Resolver.Decode {{{

// Decode fills dst, normally a struct pointer, from the resolved map.
// Matching is the mapstructure kind: case-insensitive field names, or
// explicit `mapstructure:"..."` tags, weakly typed, so "8080" fills an
// int field and durations parse from strings.
func (r *Resolver) Decode(dst any) error {
	m, err := r.resolved()
	if err != nil {
		return err
	}

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

	return dec.Decode(m)
} // }}}

// func Resolver.Options {{{

// Options returns the resolved configuration as opts.Options, for
// callers living on that side of the library.
func (r *Resolver) Options() (*opts.Options, error) {
	m, err := r.resolved()
	if err != nil {
		return nil, err
	}

	return opts.New(m), nil
} // }}}

// func Resolver.Reload {{{

// Reload drops the cache and runs the whole chain again.
//
// On error the Resolver is left unresolved: the old cache is gone, the
// next Resolve tries the chain fresh. The Watcher wants different
// semantics (keep the old on error) and keeps its own snapshot for
// that.
func (r *Resolver) Reload() (map[string]any, error) {
	r.mu.Lock()
	r.cache = nil
	r.loaded = false
	r.mu.Unlock()

	return r.Resolve()
} // }}}

// func Resolver.Close {{{

// Close releases anything the sources hold open, the Postgres pool
// mainly. The cache stays, so reads keep answering, but a Reload that
// needs a closed source will fail.
func (r *Resolver) Close() {
	for _, src := range r.sources {
		if c, ok := src.(interface{ close() }); ok {
			c.close()
		}
	}
} // }}}

// func Resolver.filePaths {{{

// The file paths in the chain, in chain order. This is what a Watcher
// watches.
func (r *Resolver) filePaths() []string {
	var out []string

	for _, src := range r.sources {
		if fs, ok := src.(*fileSource); ok {
			out = append(out, fs.path)
		}
	}

	return out
} // }}}
