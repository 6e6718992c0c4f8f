package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocal_WriteLeavesSingleFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "people.dat", []byte("one")))
	require.NoError(t, store.Write(ctx, "people.dat", []byte("two")))

	// No temp files may survive a completed write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "people.dat", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "people.dat"))
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
}

func TestLocal_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "store")
	_, err := NewLocal(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestLocal_MissingBlobIsOSNotExist(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read(context.Background(), "absent.dat")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocal_ContextCanceled(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, store.Write(ctx, "x.dat", []byte("data")))
	_, err = store.Read(ctx, "x.dat")
	require.Error(t, err)
}
