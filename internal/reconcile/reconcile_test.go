package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracecov/internal/classify"
	"tracecov/internal/cover"
	"tracecov/internal/trace"
)

// oracle is a fixed line-range classifier standing in for real parsing.
type oracle struct {
	lines []int
}

func (o oracle) ExecutableLines(string, []byte) (classify.LineSet, error) {
	set := make(classify.LineSet)
	for _, l := range o.lines {
		set.Add(l)
	}
	return set, nil
}

func newTestReconciler(executable ...int) *Reconciler {
	r := New(nil)
	r.ClassifierFor = func(string) classify.Classifier {
		return oracle{lines: executable}
	}
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fiveLineSource = "fn f()\n  a()\n  \nfn g()\n  b()\n"

func TestReconcileAmendsMissedExecutableLines(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", fiveLineSource)
	// The runtime omitted records for everything it never reached.
	writeFile(t, dir, "lib.src.cov",
		"        -\n"+
			"        3\n"+
			"        -\n"+
			"        -\n"+
			"        -\n")

	r := newTestReconciler(2, 5)
	fc, err := r.Reconcile(context.Background(), src, dir)
	require.NoError(t, err)

	want := cover.Vector{
		cover.NotApplicable(),
		cover.Executions(3), // already counted, untouched by amendment
		cover.NotApplicable(),
		cover.NotApplicable(),
		cover.Executions(0), // executable but absent from the trace
	}
	if diff := cmp.Diff(want, fc.Coverage); diff != "" {
		t.Errorf("reconciled vector (-want +got):\n%s", diff)
	}
	assert.Equal(t, src, fc.Filename)
	assert.Equal(t, fiveLineSource, fc.Source)
}

func TestReconcileNoTraceFallback(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", fiveLineSource)

	r := newTestReconciler() // nothing executable
	fc, err := r.Reconcile(context.Background(), src, dir)
	require.NoError(t, err)

	require.Len(t, fc.Coverage, 5)
	for i, lc := range fc.Coverage {
		assert.False(t, lc.Applicable(), "line %d", i+1)
	}
}

func TestReconcileNoTraceStillAmends(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", fiveLineSource)

	fc, err := newTestReconciler(2, 5).Reconcile(context.Background(), src, dir)
	require.NoError(t, err)

	want := cover.Vector{
		cover.NotApplicable(),
		cover.Executions(0),
		cover.NotApplicable(),
		cover.NotApplicable(),
		cover.Executions(0),
	}
	if diff := cmp.Diff(want, fc.Coverage); diff != "" {
		t.Errorf("never-run file (-want +got):\n%s", diff)
	}
}

func TestReconcileMergesMultipleTraces(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", "a()\nb()\n")
	writeFile(t, dir, "lib.src.100.cov", "        0\n        -\n")
	writeFile(t, dir, "lib.src.200.cov", "        -\n        2\n")

	fc, err := newTestReconciler().Reconcile(context.Background(), src, dir)
	require.NoError(t, err)

	want := cover.Vector{cover.Executions(0), cover.Executions(2)}
	if diff := cmp.Diff(want, fc.Coverage); diff != "" {
		t.Errorf("merged vector (-want +got):\n%s", diff)
	}
}

func TestReconcilePadsShortTrace(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", "a()\nb()\nc()\n")
	// A partial run recorded only the first line.
	writeFile(t, dir, "lib.src.cov", "        1\n")

	fc, err := newTestReconciler().Reconcile(context.Background(), src, dir)
	require.NoError(t, err)

	want := cover.Vector{cover.Executions(1), cover.NotApplicable(), cover.NotApplicable()}
	if diff := cmp.Diff(want, fc.Coverage); diff != "" {
		t.Errorf("padded vector (-want +got):\n%s", diff)
	}
}

func TestReconcileStaleTrace(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", "a()\nb()\nc()\nd()\n")
	writeFile(t, dir, "lib.src.cov", "        1\n        -\n")

	// The classifier sees executable code on line 4, beyond the trace.
	_, err := newTestReconciler(4).Reconcile(context.Background(), src, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStaleCoverage)
}

func TestReconcileTraceLongerThanSource(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", "a()\n")
	writeFile(t, dir, "lib.src.cov", "        1\n        2\n        3\n")

	_, err := newTestReconciler().Reconcile(context.Background(), src, dir)
	assert.ErrorIs(t, err, ErrStaleCoverage)
}

func TestReconcileMalformedTrace(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "lib.src", "a()\n")
	writeFile(t, dir, "lib.src.cov", "   12ab-x\n")

	_, err := newTestReconciler().Reconcile(context.Background(), src, dir)
	assert.ErrorIs(t, err, trace.ErrMalformedRecord)
}

func TestReconcileMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := newTestReconciler().Reconcile(context.Background(), filepath.Join(dir, "absent.src"), dir)
	assert.Error(t, err)
}

func TestAmendIdempotent(t *testing.T) {
	executable := make(classify.LineSet)
	executable.Add(2)
	executable.Add(4)
	vec := cover.Vector{
		cover.Executions(3),
		cover.NotApplicable(),
		cover.NotApplicable(),
		cover.NotApplicable(),
	}

	once, err := amend(vec, executable)
	require.NoError(t, err)
	twice, err := amend(once, executable)
	require.NoError(t, err)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("amend not idempotent (-once +twice):\n%s", diff)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countLines([]byte(tt.src)), "src %q", tt.src)
	}
}
