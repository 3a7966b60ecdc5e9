package reconcile

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tracecov/internal/classify"
	"tracecov/internal/cover"
)

// ReconcileTree reconciles every source file under folder, recursing into
// subfolders. Files whose language has no classifier are skipped, as are
// the trace files themselves. Each source file uses its own directory as
// the trace search folder.
//
// Reconciliations are independent of one another (the merge law is
// order-free and there is no shared mutable state), so they run as one
// errgroup task per file, bounded by Parallelism. Results come back sorted
// by filename.
func (r *Reconciler) ReconcileTree(ctx context.Context, folder string) ([]cover.FileCoverage, error) {
	var sources []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".cov") {
			return nil
		}
		if classify.Supported(path) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", folder, err)
	}
	sort.Strings(sources)

	r.log.Debug("reconciling tree",
		zap.String("folder", folder),
		zap.Int("sources", len(sources)))

	results := make([]cover.FileCoverage, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			fc, err := r.Reconcile(gctx, src, filepath.Dir(src))
			if err != nil {
				return err
			}
			results[i] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
