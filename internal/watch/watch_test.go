package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tracecov/internal/cover"
	"tracecov/internal/reconcile"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	passes [][]cover.FileCoverage
}

func (r *recorder) handle(results []cover.FileCoverage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes = append(r.passes, results)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.passes)
}

func (r *recorder) last() []cover.FileCoverage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.passes) == 0 {
		return nil
	}
	return r.passes[len(r.passes)-1]
}

func TestWatcherInitialPassAndShutdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- New(reconcile.New(nil), 30*time.Millisecond, nil).Run(ctx, dir, rec.handle)
	}()

	require.Eventually(t, func() bool { return rec.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, rec.last(), 1)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down")
	}
}

func TestWatcherReactsToNewTrace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"),
		[]byte("package a\n\nfunc A() int {\n\treturn 1\n}\n"), 0o644))

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- New(reconcile.New(nil), 30*time.Millisecond, nil).Run(ctx, dir, rec.handle)
	}()

	require.Eventually(t, func() bool { return rec.count() >= 1 }, 2*time.Second, 10*time.Millisecond)

	trace := "        -\n        -\n        2\n        2\n        2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go.cov"), []byte(trace), 0o644))

	require.Eventually(t, func() bool {
		results := rec.last()
		if len(results) != 1 {
			return false
		}
		return results[0].Summary().Executed == 3
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}
