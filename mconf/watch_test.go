package mconf

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interval for test watchers. Short, the tests wait on real ticks.
const testTick = 20 * time.Millisecond

// func touchLater {{{

// Rewrites the file with an mtime safely past the watcher's mark.
//
// Mtime granularity on some filesystems is a full second, bumping the
// mtime by hand keeps these tests from sleeping that long.
//
// The write goes through a temp file plus rename so a watcher tick
// never reads a truncated half-written file.
func touchLater(t *testing.T, path, content string) {
	t.Helper()

	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))

	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(tmp, later, later))
	require.NoError(t, os.Rename(tmp, path))
} // }}}

// func waitNotify {{{

func waitNotify(t *testing.T, ch <-chan map[string]any) map[string]any {
	t.Helper()

	select {
	case m := <-ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("No notify within 5s")
	}

	return nil
} // }}}

// TestWatchReload covers the basic change-notify-swap cycle
func TestWatchReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.yaml", "version: 1\n")

	r := New(Config{}, File(path))

	got := make(chan map[string]any, 4)

	w, err := r.Watch(context.Background(), WatchConf{
		Interval: testTick,
		Notify:   func(m map[string]any) { got <- m },
	})
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, 1, w.Current()["version"])

	touchLater(t, path, "version: 2\n")

	m := waitNotify(t, got)
	assert.Equal(t, 2, m["version"])
	assert.Equal(t, 2, w.Current()["version"])

	// The Resolver saw the reload too.
	assert.Equal(t, 2, r.Get("version"))
}

// TestWatchVeto covers the Changed hook rejecting a snapshot
func TestWatchVeto(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.yaml", "version: 1\n")

	r := New(Config{}, File(path))

	notified := make(chan map[string]any, 4)

	w, err := r.Watch(context.Background(), WatchConf{
		Interval: testTick,
		Changed:  func(old, new map[string]any) bool { return false },
		Notify:   func(m map[string]any) { notified <- m },
	})
	require.NoError(t, err)
	defer w.Stop()

	touchLater(t, path, "version: 2\n")

	// Give it a handful of ticks to (not) act.
	time.Sleep(10 * testTick)

	select {
	case <-notified:
		t.Fatal("Notify fired for a vetoed snapshot")
	default:
	}

	assert.Equal(t, 1, w.Current()["version"])
}

// TestWatchBadReload covers keeping the old snapshot over a broken edit
func TestWatchBadReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.yaml", "version: 1\n")

	r := New(Config{}, File(path))

	got := make(chan map[string]any, 4)

	w, err := r.Watch(context.Background(), WatchConf{
		Interval: testTick,
		Notify:   func(m map[string]any) { got <- m },
	})
	require.NoError(t, err)
	defer w.Stop()

	// Break the file. The reload fails, the old snapshot stays.
	touchLater(t, path, "version: [1, 2\n")

	time.Sleep(10 * testTick)
	assert.Equal(t, 1, w.Current()["version"])

	// Fix it with new content, the watcher picks itself back up.
	touchLater(t, path, "version: 3\n")

	m := waitNotify(t, got)
	assert.Equal(t, 3, m["version"])
	assert.Equal(t, 3, w.Current()["version"])
}

// TestWatchNothingToWatch covers a chain with no file sources
func TestWatchNothingToWatch(t *testing.T) {
	r := New(Config{}, Map(map[string]any{"a": 1}))

	_, err := r.Watch(context.Background(), WatchConf{Interval: testTick})
	assert.ErrorContains(t, err, "No file sources")
}

// TestWatchStaleCache covers Watch refreshing an already-resolved chain
func TestWatchStaleCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.yaml", "version: 1\n")

	r := New(Config{}, File(path))

	_, err := r.Resolve()
	require.NoError(t, err)

	// The file moves on after that first resolve.
	touchLater(t, path, "version: 2\n")

	w, err := r.Watch(context.Background(), WatchConf{Interval: testTick})
	require.NoError(t, err)
	defer w.Stop()

	// Watch loaded fresh rather than trusting the stale cache.
	assert.Equal(t, 2, w.Current()["version"])
}

// TestWatchStop covers shutdown paths
func TestWatchStop(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.yaml", "version: 1\n")

	t.Run("DoubleStop", func(t *testing.T) {
		r := New(Config{}, File(path))

		w, err := r.Watch(context.Background(), WatchConf{Interval: testTick})
		require.NoError(t, err)

		w.Stop()
		w.Stop()
	})

	t.Run("ContextCancel", func(t *testing.T) {
		r := New(Config{}, File(path))

		ctx, cancel := context.WithCancel(context.Background())

		w, err := r.Watch(ctx, WatchConf{Interval: testTick})
		require.NoError(t, err)

		cancel()

		// Stop after a context cancel is still fine.
		w.Stop()
	})

	t.Run("CurrentAfterStop", func(t *testing.T) {
		r := New(Config{}, File(path))

		w, err := r.Watch(context.Background(), WatchConf{Interval: testTick})
		require.NoError(t, err)

		w.Stop()
		assert.Equal(t, 1, w.Current()["version"])
	})
}
