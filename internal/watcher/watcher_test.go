package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/chapter-timeline/internal/logger"
)

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()

	w, err := New(logger.Discard(), Options{SettleDelay: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Watch(path))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestWatcher_EmitsModifiedAfterSettling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "description.txt")
	require.NoError(t, os.WriteFile(path, []byte("0:00 Intro\n"), 0o600))

	w := startWatcher(t, path)
	// Give the goroutine a moment to start draining fsnotify.
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("0:00 Intro\n1:00 Main\n"), 0o600))

	ev := waitEvent(t, w)
	assert.Equal(t, EventModified, ev.Type)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, int64(len("0:00 Intro\n1:00 Main\n")), ev.Size)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "description.txt")
	sibling := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	w := startWatcher(t, path)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, os.WriteFile(sibling, []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("c"), 0o600))

	ev := waitEvent(t, w)
	assert.Equal(t, path, ev.Path)
}

func TestWatcher_Removed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "description.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	w := startWatcher(t, path)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, os.Remove(path))

	ev := waitEvent(t, w)
	assert.Equal(t, EventRemoved, ev.Type)
}

func TestWatcher_RejectsDirectories(t *testing.T) {
	w, err := New(logger.Discard(), Options{})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.Error(t, w.Watch(t.TempDir()))
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing.txt")))
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "modified", EventModified.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
