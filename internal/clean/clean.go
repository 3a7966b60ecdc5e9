// Package clean deletes stale trace files. It is the only part of the
// system that removes anything from disk; the reconciliation core never
// deletes.
package clean

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"tracecov/internal/trace"
)

// Cleaner removes trace files matching the trace naming rule.
type Cleaner struct {
	log *zap.Logger
}

// New returns a Cleaner.
func New(log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{log: log}
}

// CleanSource deletes the trace files in folder belonging to the named
// source file and returns how many were removed.
func (c *Cleaner) CleanSource(folder, sourceName string) (int, error) {
	files, err := trace.Discover(folder, sourceName)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil {
			return removed, fmt.Errorf("remove trace file: %w", err)
		}
		c.log.Debug("removed trace file", zap.String("path", f.Path))
		removed++
	}
	return removed, nil
}

// CleanTree deletes every trace file under folder, recursing into
// subfolders, and returns how many were removed.
func (c *Cleaner) CleanTree(folder string) (int, error) {
	removed := 0
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".cov") {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove trace file: %w", err)
		}
		c.log.Debug("removed trace file", zap.String("path", path))
		removed++
		return nil
	})
	return removed, err
}
