package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedFileWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := NewBufferedFileWriter(path, WithFlushInterval(0))
	require.NoError(t, err)

	_, err = w.Write([]byte("line one\n"))
	require.NoError(t, err)
	assert.Positive(t, w.Buffered())

	require.NoError(t, w.Flush())
	assert.Zero(t, w.Buffered())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\n", string(data))

	require.NoError(t, w.Close())
}

func TestBufferedFileWriter_AutoFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.log")

	w, err := NewBufferedFileWriter(path, WithFlushInterval(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte("flushed by ticker\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), "flushed by ticker")
	}, time.Second, 10*time.Millisecond)
}

func TestBufferedFileWriter_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close.log")

	w, err := NewBufferedFileWriter(path)
	require.NoError(t, err)

	_, err = w.Write([]byte("pending\n"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "close is idempotent")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pending\n", string(data))

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestBufferedFileWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.log")

	w, err := NewBufferedFileWriter(path, WithBufferSize(128))
	require.NoError(t, err)

	const writers, lines = 8, 50
	var wg sync.WaitGroup
	for i := range writers {
		wg.Go(func() {
			for j := range lines {
				_, _ = fmt.Fprintf(w, "writer %d line %d\n", i, j)
			}
		})
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), writers*lines)
}

func TestBufferedFileWriter_AppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o600))

	w, err := NewBufferedFileWriter(path)
	require.NoError(t, err)
	_, _ = w.Write([]byte("appended\n"))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\nappended\n", string(data))
	assert.Equal(t, path, w.FilePath())
}

func TestNewBufferedFileWriter_InvalidPath(t *testing.T) {
	_, err := NewBufferedFileWriter(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}
