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
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatcher_DispatchesSettledFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w := New(dir, rec.handle, nil)
	w.settle = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	smi := filepath.Join(dir, "drop.smi")
	require.NoError(t, os.WriteFile(smi, []byte("CCO\n"), 0o644))
	// Irrelevant extension must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		paths := rec.snapshot()
		return len(paths) == 1 && paths[0] == smi
	}, 3*time.Second, 25*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcher_CoalescesWriteBursts(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w := New(dir, rec.handle, nil)
	w.settle = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	smi := filepath.Join(dir, "big.smi")
	f, err := os.Create(smi)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.WriteString("CCO\n")
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) >= 1
	}, 3*time.Second, 25*time.Millisecond)
	// The write burst must collapse into a single dispatch.
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestWatcher_MissingDirFails(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent"), func(context.Context, string) {}, nil)
	err := w.Run(context.Background())
	assert.Error(t, err)
}
