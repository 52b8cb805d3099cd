package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRerunsOnWrite(t *testing.T) {
	dir := t.TempDir()
	query := filepath.Join(dir, "query.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(query, []byte("type: a\n"), 0o644))

	var calls atomic.Int32
	w, err := NewWatcher([]string{query}, 20*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, os.WriteFile(other, []byte("ignored\n"), 0o644))
	require.NoError(t, os.WriteFile(query, []byte("type: b\n"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "nope", "query.yaml")}, DefaultDebounce, func() error { return nil })
	assert.Error(t, err)
}
