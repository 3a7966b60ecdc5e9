// Package reconcile turns raw trace files into per-file coverage records.
// For each source file it discovers the traces that belong to it, folds
// them into one vector, and amends the result with static analysis so that
// executable lines missing from every trace read as "coverable but missed"
// rather than "not applicable".
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"tracecov/internal/classify"
	"tracecov/internal/cover"
	"tracecov/internal/trace"
)

// ErrStaleCoverage reports trace data shorter than the executable lines of
// the current source: the source has grown since the trace was produced, so
// the trace cannot be trusted for this file. Hard failure, never retried;
// the caller must regenerate its traces.
var ErrStaleCoverage = errors.New("stale coverage data")

// Reconciler builds FileCoverage records. Each call is stateless and
// independent, so one Reconciler may serve many goroutines; the only
// shared resource is the read-only filesystem.
type Reconciler struct {
	// ClassifierFor picks the line classifier for a source file; nil
	// results skip the amendment step. Tests substitute a fixed
	// line-range oracle here.
	ClassifierFor func(filename string) classify.Classifier

	// Parallelism bounds the tree walk's concurrent reconciliations.
	// Zero means unbounded.
	Parallelism int

	log *zap.Logger
}

// New returns a Reconciler using the language classifiers registered in
// the classify package.
func New(log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		ClassifierFor: classify.ForFile,
		log:           log,
	}
}

// Reconcile produces the coverage record for one source file, searching
// searchFolder for its trace files.
//
// Zero discovered traces is not an error: the file is assumed never run
// and starts as an all-not-applicable vector of source length, which the
// amendment step then repairs for executable lines. With traces present,
// each is parsed and folded through the merge law starting from the empty
// vector; order is irrelevant.
func (r *Reconciler) Reconcile(ctx context.Context, sourceFilename, searchFolder string) (cover.FileCoverage, error) {
	src, err := os.ReadFile(sourceFilename)
	if err != nil {
		return cover.FileCoverage{}, fmt.Errorf("read source: %w", err)
	}
	srcLines := countLines(src)

	traces, err := trace.Discover(searchFolder, filepath.Base(sourceFilename))
	if err != nil {
		return cover.FileCoverage{}, err
	}

	var vec cover.Vector
	if len(traces) == 0 {
		r.log.Debug("no trace files, assuming never executed",
			zap.String("source", sourceFilename))
		vec = cover.NewVector(srcLines)
	} else {
		for _, tf := range traces {
			if err := ctx.Err(); err != nil {
				return cover.FileCoverage{}, err
			}
			parsed, err := trace.ParseRecords(tf.Path)
			if err != nil {
				return cover.FileCoverage{}, err
			}
			vec = cover.Merge(vec, parsed)
		}
		r.log.Debug("merged trace files",
			zap.String("source", sourceFilename),
			zap.Int("traces", len(traces)),
			zap.Int("lines", len(vec)))
	}

	if len(vec) > srcLines {
		return cover.FileCoverage{}, fmt.Errorf("%w: %s: trace has %d lines, source has %d",
			ErrStaleCoverage, sourceFilename, len(vec), srcLines)
	}

	if c := r.ClassifierFor(sourceFilename); c != nil {
		executable, err := c.ExecutableLines(sourceFilename, src)
		if err != nil {
			return cover.FileCoverage{}, err
		}
		vec, err = amend(vec, executable)
		if err != nil {
			return cover.FileCoverage{}, fmt.Errorf("%s: %w", sourceFilename, err)
		}
	}

	// Clamp any remaining gap to not-applicable; never truncate.
	if len(vec) < srcLines {
		vec = append(vec, cover.NewVector(srcLines-len(vec))...)
	}

	return cover.FileCoverage{
		Filename: sourceFilename,
		Source:   string(src),
		Coverage: vec,
	}, nil
}

// amend promotes not-applicable entries on executable lines to a zero
// execution count. Already-counted lines are left untouched, which makes
// the step idempotent. An executable line beyond the merged vector means
// the traces predate the current source; that is a stale-data failure,
// never something to paper over by silently extending the vector.
func amend(vec cover.Vector, executable classify.LineSet) (cover.Vector, error) {
	for _, line := range executable.Lines() {
		if line > len(vec) {
			return nil, fmt.Errorf("%w: executable line %d beyond trace of %d lines",
				ErrStaleCoverage, line, len(vec))
		}
		if !vec[line-1].Applicable() {
			vec[line-1] = cover.Executions(0)
		}
	}
	return vec, nil
}

// countLines counts newline-separated lines; a trailing newline does not
// open an extra empty line.
func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := strings.Count(string(src), "\n")
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
