package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaWatcher_LoadAndReload(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  - key: a\n"), 0o644))

	w, err := NewSchemaWatcher(path, nil, nil)
	require.NoError(t, err)

	reloads := make(chan int, 8)
	w.OnReload(func(tables int, err error) {
		if err == nil {
			reloads <- tables
		}
	})

	defs, err := w.Load()
	require.NoError(t, err)
	assert.Len(t, defs, 1)
	assert.Equal(t, 1, TableCount())
	<-reloads

	require.NoError(t, w.Watch())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("tables:\n  - key: a\n  - key: b\n"), 0o644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-reloads:
			if n == 2 {
				_, ok := Get("b")
				assert.True(t, ok)
				return
			}
		case <-deadline:
			t.Fatal("schema was not reloaded")
		}
	}
}

func TestSchemaWatcher_BadReloadKeepsTables(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  - key: a\n"), 0o644))

	w, err := NewSchemaWatcher(path, nil, nil)
	require.NoError(t, err)
	_, err = w.Load()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("tables: []\n"), 0o644))
	_, err = w.Load()
	assert.ErrorIs(t, err, ErrEmptySchema)

	_, ok := Get("a")
	assert.True(t, ok, "previous tables survive a failed reload")

	w.Stop()
	w.Stop()
}
