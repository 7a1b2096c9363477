package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/collegedash/internal/sections"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreated, "created"},
		{OpModified, "modified"},
		{OpRemoved, "removed"},
		{OpRenamed, "renamed"},
		{Op(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOpFor(t *testing.T) {
	assert.Equal(t, OpCreated, opFor(fsnotify.Create|fsnotify.Write))
	assert.Equal(t, OpModified, opFor(fsnotify.Write))
	assert.Equal(t, OpModified, opFor(fsnotify.Chmod))
	assert.Equal(t, OpRemoved, opFor(fsnotify.Remove))
	assert.Equal(t, OpRenamed, opFor(fsnotify.Rename))
}

func TestDirWatcherStopTwice(t *testing.T) {
	w, err := New(10*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestCleanDir(t *testing.T) {
	dir := t.TempDir()

	abs, err := cleanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), abs)

	_, err = cleanDir("")
	assert.Error(t, err)

	_, err = cleanDir("../../etc")
	assert.Error(t, err)

	rel, err := cleanDir("./config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))
}

func TestDirWatcherDeliversFilteredBatches(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "aliases.yml")

	w, err := New(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Stop()

	var mu sync.Mutex
	var batches [][]Change
	w.Filter(BaseName(target))
	w.Handle(func(changes []Change) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, changes)
		return nil
	})
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("aliases: {}\n"), 0o600))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, batch := range batches {
		require.Len(t, batch, 1)
		assert.Equal(t, "aliases.yml", filepath.Base(batch[0].Path))
	}
}

func TestDebounceCoalescesByPath(t *testing.T) {
	w, err := New(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Stop()

	batches := make(chan []Change, 1)
	w.Handle(func(changes []Change) error {
		batches <- changes
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.debounce(ctx)

	w.raw <- Change{Path: "b.yml", Op: OpCreated}
	w.raw <- Change{Path: "a.yml", Op: OpModified}
	w.raw <- Change{Path: "b.yml", Op: OpModified}

	select {
	case batch := <-batches:
		require.Len(t, batch, 2)
		assert.Equal(t, "a.yml", batch[0].Path)
		assert.Equal(t, "b.yml", batch[1].Path)
		assert.Equal(t, OpModified, batch[1].Op, "last change per path wins")
	case <-time.After(time.Second):
		t.Fatal("debounce never flushed")
	}
}

func TestHandlerErrorsDoNotStopDispatch(t *testing.T) {
	w, err := New(time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Stop()

	var calls int
	w.Handle(func([]Change) error {
		calls++
		return assert.AnError
	})
	w.Handle(func([]Change) error {
		calls++
		return nil
	})

	w.dispatch(context.Background(), []Change{{Path: "aliases.yml"}})
	assert.Equal(t, 2, calls)
}

func TestFilters(t *testing.T) {
	filter := BaseName("/etc/collegedash/aliases.yml")
	assert.True(t, filter("/other/dir/aliases.yml"))
	assert.False(t, filter("/etc/collegedash/aliases.yml.swp"))
	assert.False(t, filter("/etc/collegedash/settings.yml"))

	assert.True(t, IgnoreEditorFiles("aliases.yml"))
	assert.False(t, IgnoreEditorFiles("aliases.yml~"))
	assert.False(t, IgnoreEditorFiles(".#aliases.yml"))
	assert.False(t, IgnoreEditorFiles("/tmp/.aliases.yml.swp"))
	assert.False(t, IgnoreEditorFiles("aliases.yml.bak"))
}

func TestAliasReloader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yml")
	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  hods: tutors\n"), 0o600))

	table := sections.NewAliasTable()
	reloader, err := NewAliasReloader(path, table, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer reloader.Stop()

	reloads := make(chan int, 10)
	reloader.OnReload(func(entries int) { reloads <- entries })

	require.NoError(t, reloader.Reload(context.Background()))
	<-reloads
	s, ok := table.Lookup("hods")
	require.True(t, ok)
	assert.Equal(t, sections.Tutors, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, reloader.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  hods: cohorts\n"), 0o600))
	assert.Eventually(t, func() bool {
		s, _ := table.Lookup("hods")
		return s == sections.Cohorts
	}, 2*time.Second, 10*time.Millisecond)

	// A broken file keeps the last good table.
	require.NoError(t, os.WriteFile(path, []byte("aliases: [\n"), 0o600))
	time.Sleep(150 * time.Millisecond)
	s, _ = table.Lookup("hods")
	assert.Equal(t, sections.Cohorts, s)
}

func TestAliasReloaderReloadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yml")

	table := sections.NewAliasTable()
	reloader, err := NewAliasReloader(path, table, 20*time.Millisecond, nil)
	require.NoError(t, err, "the file itself may not exist yet")
	defer reloader.Stop()

	assert.Error(t, reloader.Reload(context.Background()))
	assert.Equal(t, sections.NewAliasTable().Len(), table.Len())
}

func TestAliasReloaderMissingDirectory(t *testing.T) {
	_, err := NewAliasReloader(filepath.Join(t.TempDir(), "nope", "aliases.yml"), sections.NewAliasTable(), time.Millisecond, nil)
	assert.Error(t, err)
}
