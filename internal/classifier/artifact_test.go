package classifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "model.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []byte(`{"v":1}`)))

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":1}`), data)

	// Replace-on-write: second save fully replaces the first.
	require.NoError(t, store.Save(ctx, []byte(`{"v":2}`)))
	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), data)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	store := NewFileStore(path)
	ctx := context.Background()

	info, err := store.Info(ctx)
	require.NoError(t, err)
	assert.False(t, info.Exists)
	assert.Equal(t, path, info.Location)

	require.NoError(t, store.Save(ctx, []byte("x")))

	info, err = store.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.False(t, info.LastModified.IsZero())
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}
