// Package watcher watches directories with fsnotify and hands debounced
// batches of changes to handlers. collegedash uses it to hot-reload the
// aliases file.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/collegedash/internal/logging"
)

// Op is what happened to a path.
type Op int

const (
	OpCreated Op = iota
	OpModified
	OpRemoved
	OpRenamed
)

func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpRemoved:
		return "removed"
	case OpRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

func opFor(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreated
	case op.Has(fsnotify.Remove):
		return OpRemoved
	case op.Has(fsnotify.Rename):
		return OpRenamed
	default:
		return OpModified
	}
}

// Change is one path's latest change within a batch.
type Change struct {
	Op      Op
	Path    string
	ModTime time.Time
	Size    int64
}

// Filter reports whether a path is of interest.
type Filter func(path string) bool

// Handler receives a debounced batch, one Change per path, sorted by path.
type Handler func(changes []Change) error

// DirWatcher watches directories and delivers debounced change batches.
type DirWatcher struct {
	fsw    *fsnotify.Watcher
	delay  time.Duration
	logger logging.Logger
	raw    chan Change
	done   chan struct{}

	mu       sync.RWMutex
	filters  []Filter
	handlers []Handler
	stopOnce sync.Once
}

// New creates a watcher that waits for delay of quiet before delivering a
// batch.
func New(delay time.Duration, logger logging.Logger) (*DirWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DirWatcher{
		fsw:    fsw,
		delay:  delay,
		logger: logger.WithComponent("watcher"),
		raw:    make(chan Change, 64),
		done:   make(chan struct{}),
	}, nil
}

// Filter adds a filter. A path must pass every filter.
func (w *DirWatcher) Filter(f Filter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filters = append(w.filters, f)
}

// Handle adds a handler.
func (w *DirWatcher) Handle(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Watch adds a directory.
func (w *DirWatcher) Watch(dir string) error {
	clean, err := cleanDir(dir)
	if err != nil {
		return err
	}
	return w.fsw.Add(clean)
}

// cleanDir makes dir absolute. Relative paths may not climb out of the
// working directory.
func cleanDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("empty path")
	}
	clean := filepath.Clean(dir)
	if !filepath.IsAbs(clean) && strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("path contains directory traversal: %s", dir)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}
	return abs, nil
}

// Start delivers batches until ctx is done or Stop is called. It does not
// block.
func (w *DirWatcher) Start(ctx context.Context) error {
	go w.pump(ctx)
	go w.debounce(ctx)
	return nil
}

// Stop releases the fsnotify watcher. It is safe to call more than once.
func (w *DirWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// pump turns fsnotify events into Changes for the debouncer.
func (w *DirWatcher) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.accept(event.Name) {
				continue
			}
			change := Change{Op: opFor(event.Op), Path: event.Name}
			if info, err := os.Stat(event.Name); err == nil {
				change.ModTime = info.ModTime()
				change.Size = info.Size()
			}
			select {
			case w.raw <- change:
			default:
				w.logger.Debug(ctx, "Change dropped, debouncer busy", "path", event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (w *DirWatcher) accept(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, f := range w.filters {
		if !f(path) {
			return false
		}
	}
	return true
}

// debounce collects changes until delay passes without a new one, then
// dispatches them as a batch.
func (w *DirWatcher) debounce(ctx context.Context) {
	pending := make(map[string]Change)
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case change := <-w.raw:
			pending[change.Path] = change
			timer.Reset(w.delay)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := coalesce(pending)
			pending = make(map[string]Change)
			w.dispatch(ctx, batch)
		}
	}
}

func coalesce(pending map[string]Change) []Change {
	batch := make([]Change, 0, len(pending))
	for _, change := range pending {
		batch = append(batch, change)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	return batch
}

func (w *DirWatcher) dispatch(ctx context.Context, batch []Change) {
	w.mu.RLock()
	handlers := w.handlers
	w.mu.RUnlock()

	for _, h := range handlers {
		if err := h(batch); err != nil {
			w.logger.Error(ctx, err, "File watcher handler failed", "changes", len(batch))
		}
	}
}

// BaseName accepts only paths whose base name matches name's. Editors often
// replace a file by renaming over it, so watching the directory and matching
// the name survives saves that a watch on the file itself would not.
func BaseName(name string) Filter {
	base := filepath.Base(name)
	return func(path string) bool {
		return filepath.Base(path) == base
	}
}

// IgnoreEditorFiles rejects editor swap and backup files.
func IgnoreEditorFiles(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") {
		return false
	}
	switch filepath.Ext(base) {
	case ".swp", ".swx", ".tmp", ".bak":
		return false
	}
	return true
}
