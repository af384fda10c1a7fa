package mconf

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"
)

// func Resolver.Watch {{{

// Watch resolves the chain once and starts re-resolving it whenever a
// file source's mtime moves.
//
// The chain needs at least one file source, there is nothing to poll
// otherwise, and the initial resolve has to succeed so the Watcher
// always holds a good snapshot. The Watcher stops when ctx ends or
// Stop is called.
//
// A reload that fails keeps the old snapshot, a broken edit should not
// take the running configuration down. The Changed hook can keep the
// old snapshot too, see WatchConf.
func (r *Resolver) Watch(ctx context.Context, wc WatchConf) (*Watcher, error) {
	fl := r.l.With().Str("func", "Watch").Logger()

	if wc.Interval <= 0 {
		wc.Interval = DefaultInterval
	}

	paths := r.filePaths()
	if len(paths) == 0 {
		err := errors.New("No file sources to watch")
		fl.Err(err).Send()
		return nil, err
	}

	// Mark first, load second. An edit landing in between has an
	// mtime past the mark, so the first tick picks it up rather than
	// it falling through the gap.
	newest := newestMtime(paths)

	// A full Reload, not Resolve: the Resolver may have resolved a
	// while ago, and the snapshot has to be current with the files the
	// mark was just taken over.
	cur, err := r.Reload()
	if err != nil {
		fl.Err(err).Msg("reload")
		return nil, err
	}

	w := &Watcher{
		l:      r.l,
		r:      r,
		wc:     wc,
		paths:  paths,
		ctx:    ctx,
		bye:    make(chan struct{}),
		cur:    cur,
		newest: newest,
	}

	go w.loopy()

	fl.Debug().Int("files", len(paths)).Dur("interval", wc.Interval).Msg("Watching")

	return w, nil
} // }}}

// func Watcher.Stop {{{

// Stop shuts the polling goroutine down. Safe to call more than once,
// and alongside a context cancel.
func (w *Watcher) Stop() {
	if !atomic.CompareAndSwapUint32(&w.closed, 0, 1) {
		return
	}

	close(w.bye)

	fl := w.l.With().Str("func", "Stop").Logger()
	fl.Debug().Msg("Stopped")
} // }}}

// func Watcher.Current {{{

// Current returns the latest accepted snapshot, as the caller's own
// copy.
func (w *Watcher) Current() map[string]any {
	w.curMut.RLock()
	defer w.curMut.RUnlock()

	return copyMap(w.cur)
} // }}}

// func Watcher.loopy {{{

// Handles the periodic checking for changed configuration files.
func (w *Watcher) loopy() {
	fl := w.l.With().Str("func", "loopy").Logger()

	tick := time.NewTicker(w.wc.Interval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			w.check()
		case <-w.ctx.Done():
			fl.Debug().Msg("context done")
			return
		case _, ok := <-w.bye:
			if !ok {
				fl.Debug().Msg("Shutting down")
				return
			}
		}
	}
} // }}}

// func Watcher.check {{{

// One poll: any file newer than the high-water mark re-resolves the
// whole chain, so the merged result stays consistent with every
// source, not just the file that moved.
func (w *Watcher) check() {
	fl := w.l.With().Str("func", "check").Logger()

	newest, changed := w.hasChanged()
	if !changed {
		return
	}

	fl.Debug().Msg("Files changed, reloading")

	nm, err := w.r.Reload()
	if err != nil {
		// Keep the old snapshot. The mark stays put too, so the next
		// tick tries again until the files work or move on.
		fl.Err(err).Msg("reload")
		return
	}

	// Only loopy writes these, reading them bare here is fine.
	w.newest = newest

	if w.wc.Changed != nil && !w.wc.Changed(w.cur, nm) {
		// Touched but not worth taking, the mark moving up means we
		// do not chew on the same mtimes every tick.
		fl.Debug().Msg("Snapshot rejected, keeping old")
		return
	}

	w.curMut.Lock()
	w.cur = nm
	w.curMut.Unlock()

	fl.Info().Int("keys", len(nm)).Msg("Configuration reloaded")

	if w.wc.Notify != nil {
		go w.wc.Notify(copyMap(nm))
	}
} // }}}

// func Watcher.hasChanged {{{

// Returns the newest mtime over the watched files and whether any of
// them moved past the last seen mark.
//
// A file that is not there right now is skipped: if it comes back it
// comes back with a fresh mtime and gets caught then.
func (w *Watcher) hasChanged() (time.Time, bool) {
	newest := w.newest
	changed := false

	for _, p := range w.paths {
		s, err := os.Stat(p)
		if err != nil {
			continue
		}

		if mt := s.ModTime(); mt.After(newest) {
			newest = mt
			changed = true
		}
	}

	return newest, changed
} // }}}

// func newestMtime {{{

func newestMtime(paths []string) time.Time {
	var newest time.Time

	for _, p := range paths {
		if s, err := os.Stat(p); err == nil && s.ModTime().After(newest) {
			newest = s.ModTime()
		}
	}

	return newest
} // }}}
