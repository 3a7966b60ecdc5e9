// Package watch re-runs reconciliation whenever trace files change on
// disk, for a live view of coverage while tests are executing.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"tracecov/internal/cover"
	"tracecov/internal/reconcile"
)

// Handler receives each reconciliation pass. A pass error (stale trace,
// malformed record) is reported here rather than stopping the watch.
type Handler func(results []cover.FileCoverage, err error)

// Watcher debounces filesystem events on trace files and triggers tree
// reconciliation.
type Watcher struct {
	rec      *reconcile.Reconciler
	debounce time.Duration
	log      *zap.Logger
}

// New returns a Watcher. A zero debounce defaults to 500ms.
func New(rec *reconcile.Reconciler, debounce time.Duration, log *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{rec: rec, debounce: debounce, log: log}
}

// Run watches folder and its subfolders until ctx is cancelled, invoking
// handler after each debounced burst of trace-file changes. One initial
// pass runs before any event arrives.
func (w *Watcher) Run(ctx context.Context, folder string, handler Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", folder, err)
	}

	handler(w.rec.ReconcileTree(ctx, folder))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New subdirectories need their own watch.
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := fw.Add(event.Name); addErr != nil {
						w.log.Debug("watch new directory failed",
							zap.String("path", event.Name), zap.Error(addErr))
					}
					continue
				}
			}
			if !strings.HasSuffix(event.Name, ".cov") {
				continue
			}
			w.log.Debug("trace file changed",
				zap.String("path", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(watchErr))

		case <-timer.C:
			handler(w.rec.ReconcileTree(ctx, folder))
		}
	}
}
