// Multi-source configuration resolving.
//
// A Resolver takes an ordered chain of sources - plain maps, files,
// environment snapshots, a Postgres key/value table - and folds them
// into one flat map. Every source flattens to underscore-joined keys
// first, then lands over what came before, so later sources override
// earlier ones key by key.
//
// String-ish sources (ini files, the environment, Postgres) carry only
// text, so their values run through a small auto-conversion: "8080"
// becomes an int, "on" becomes true, "null" becomes nil. NoConvert
// turns that off when raw strings are wanted.
package mconf

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// How often a Watcher checks its files when WatchConf does not say.
const DefaultInterval = 10 * time.Second

// ErrMissing marks a source that is not there at all: a file that does
// not exist, a database table that was never created. With
// Config.SkipMissing set the Resolver steps over these, anything else
// wrapped around it still surfaces.
var ErrMissing = errors.New("Missing source")

// Source is one entry in a Resolver's chain.
//
// The set is closed: Map, File, Env and PG make them, Parse picks one
// from a spec string. Each knows how to load itself into a nested map,
// the Resolver handles the flattening and merging.
type Source interface {
	// The human form for logs and errors, close to the Parse spec.
	describe() string

	load(r *Resolver) (map[string]any, error)
}

// type Config struct {{{

// Config adjusts how a Resolver treats its chain.
//
// The zero value is fine: missing sources are errors, string values
// auto-convert, nothing is logged.
type Config struct {
	// Step over sources wrapped in ErrMissing instead of failing the
	// whole resolve.
	SkipMissing bool

	// Keep ini, environment and Postgres values as the raw strings
	// they arrived as.
	NoConvert bool

	// Optional. All resolver and watcher logging hangs off this, nil
	// means silence.
	Logger *zerolog.Logger
} // }}}

// type Resolver struct {{{

// Resolver folds a source chain into one flat configuration map.
//
// The chain loads once, on the first Resolve or Get, and the result is
// cached until Reload. A Resolver is safe for concurrent readers.
type Resolver struct {
	l zerolog.Logger
	c Config

	sources []Source

	mu     sync.RWMutex
	cache  map[string]any
	loaded bool
} // }}}

// type WatchConf struct {{{

// WatchConf adjusts a Watcher.
//
// Everything is optional, a zero WatchConf polls every DefaultInterval
// and swaps snapshots silently.
type WatchConf struct {
	// How often to check the files for newer mtimes.
	Interval time.Duration

	// When set, gets the old and the freshly resolved snapshot and
	// decides if the new one really is a change worth taking. Return
	// false to keep the old one, a file touch that resolved to the
	// same values usually is not worth waking anyone for.
	Changed func(old, new map[string]any) bool

	// Called with its own copy of the snapshot after each accepted
	// swap, from its own goroutine.
	Notify func(map[string]any)
} // }}}

// type Watcher struct {{{

// Watcher re-resolves a Resolver's chain when its files change.
//
// Plain mtime polling, one goroutine, no filesystem event plumbing. A
// change in any watched file reloads the whole chain, so the merged
// result stays consistent with every source, not just the file that
// moved.
type Watcher struct {
	l  zerolog.Logger
	r  *Resolver
	wc WatchConf

	// The file paths being watched, snapshotted at Watch time.
	paths []string

	ctx context.Context
	bye chan struct{}

	// Do not access directly, use atomics.
	closed uint32

	// Mtime high-water mark over paths. Only loopy touches this.
	newest time.Time

	curMut sync.RWMutex
	cur    map[string]any
} // }}}
