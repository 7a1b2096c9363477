package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/sections"
)

// AliasReloader reloads an alias table whenever its YAML file changes.
type AliasReloader struct {
	path     string
	table    *sections.AliasTable
	watcher  *DirWatcher
	logger   logging.Logger
	onReload func(entries int)
}

// NewAliasReloader watches path's directory and reloads table on changes to
// path. Call Start to begin watching.
func NewAliasReloader(path string, table *sections.AliasTable, debounce time.Duration, logger logging.Logger) (*AliasReloader, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	dw, err := New(debounce, logger)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := dw.Watch(dir); err != nil {
		_ = dw.Stop()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	r := &AliasReloader{
		path:    path,
		table:   table,
		watcher: dw,
		logger:  logger.WithComponent("alias_reloader"),
	}
	dw.Filter(BaseName(path))
	dw.Filter(IgnoreEditorFiles)
	dw.Handle(r.handle)
	return r, nil
}

// OnReload registers a callback run after every successful reload with the
// new table size.
func (r *AliasReloader) OnReload(fn func(entries int)) {
	r.onReload = fn
}

// Start begins watching until ctx is done or Stop is called.
func (r *AliasReloader) Start(ctx context.Context) error {
	return r.watcher.Start(ctx)
}

// Stop stops watching.
func (r *AliasReloader) Stop() error {
	return r.watcher.Stop()
}

// Reload re-reads the file now. On failure the table keeps its previous
// contents.
func (r *AliasReloader) Reload(ctx context.Context) error {
	op := logging.StartOperation(r.logger, "reload_aliases")

	collector, err := r.table.LoadFile(r.path)
	if err != nil {
		op.EndWithError(ctx, err, "path", r.path)
		return err
	}

	problems := collector.AliasErrors()
	for i := range problems {
		r.logger.Warn(ctx, &problems[i], "Alias entry skipped or overridden", "path", r.path)
	}
	op.End(ctx, "path", r.path, "entries", r.table.Len())
	r.logger.Info(ctx, "Aliases reloaded", "path", r.path, "entries", r.table.Len())

	if r.onReload != nil {
		r.onReload(r.table.Len())
	}
	return nil
}

func (r *AliasReloader) handle(changes []Change) error {
	for _, change := range changes {
		if change.Op == OpRemoved || change.Op == OpRenamed {
			// The file may be mid-replace; the following create event
			// triggers the reload.
			r.logger.Debug(context.Background(), "Aliases file moved or removed, keeping current table",
				"path", change.Path, "op", change.Op.String())
			continue
		}
		return r.Reload(context.Background())
	}
	return nil
}
