package backend

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// runBackendTests exercises the Backend contract against an implementation.
func runBackendTests(t *testing.T, newBackend func(t *testing.T) types.Backend) {
	ctx := context.Background()

	t.Run("WriteReadFile", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFile(ctx, "a/b/file", []byte("hello")))

		data, err := b.ReadFile(ctx, "a/b/file")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("ReadMissingFile", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.ReadFile(ctx, "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("WriteAtGrowsFile", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteAt(ctx, "f", 0, []byte("abcd")))
		require.NoError(t, b.WriteAt(ctx, "f", 6, []byte("xy")))

		data, err := b.ReadFile(ctx, "f")
		require.NoError(t, err)
		assert.Equal(t, []byte{'a', 'b', 'c', 'd', 0, 0, 'x', 'y'}, data)

		// Overwrite in the middle must not shift anything.
		require.NoError(t, b.WriteAt(ctx, "f", 2, []byte("ZZ")))
		data, err = b.ReadFile(ctx, "f")
		require.NoError(t, err)
		assert.Equal(t, []byte{'a', 'b', 'Z', 'Z', 0, 0, 'x', 'y'}, data)
	})

	t.Run("ReadAt", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFile(ctx, "f", []byte("0123456789")))

		buf := make([]byte, 4)
		require.NoError(t, b.ReadAt(ctx, "f", 3, buf))
		assert.Equal(t, []byte("3456"), buf)

		// Span past the end of the file fails.
		assert.Error(t, b.ReadAt(ctx, "f", 8, buf))
	})

	t.Run("WriteFileAtomicReplaces", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFileAtomic(ctx, "m", []byte("one")))
		require.NoError(t, b.WriteFileAtomic(ctx, "m", []byte("two")))

		data, err := b.ReadFile(ctx, "m")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), data)
	})

	t.Run("Rename", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFile(ctx, "src/f", []byte("x")))
		require.NoError(t, b.Rename(ctx, "src/f", "dst/sub/f"))

		_, err := b.ReadFile(ctx, "src/f")
		assert.Error(t, err)
		data, err := b.ReadFile(ctx, "dst/sub/f")
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), data)
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFile(ctx, "f", []byte("x")))
		require.NoError(t, b.Delete(ctx, "f"))
		require.NoError(t, b.Delete(ctx, "f"))

		ok, err := b.Exists(ctx, "f")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFile(ctx, "d/one", []byte("1")))
		require.NoError(t, b.WriteFile(ctx, "d/sub/two", []byte("2")))
		require.NoError(t, b.WriteFile(ctx, "dd/other", []byte("3")))

		require.NoError(t, b.DeleteAll(ctx, "d"))

		ok, err := b.Exists(ctx, "d/one")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = b.Exists(ctx, "dd/other")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("List", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFile(ctx, "dir/a", nil))
		require.NoError(t, b.WriteFile(ctx, "dir/b", nil))
		require.NoError(t, b.WriteFile(ctx, "dir/sub/c", nil))

		names, err := b.List(ctx, "dir")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b", "sub"}, names)

		names, err = b.List(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("Stat", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteFile(ctx, "f", []byte("12345")))

		fi, err := b.Stat(ctx, "f")
		require.NoError(t, err)
		assert.Equal(t, int64(5), fi.Size)
		assert.False(t, fi.ModTime.IsZero())

		_, err = b.Stat(ctx, "missing")
		assert.Error(t, err)
	})
}

func TestLocalBackend(t *testing.T) {
	t.Parallel()
	runBackendTests(t, func(t *testing.T) types.Backend {
		b, err := NewLocal(types.BackendConfig{Type: types.StorageTypeLocal, Path: t.TempDir()})
		require.NoError(t, err)
		t.Cleanup(func() { b.Close() })
		return b
	})
}

func TestMemoryBackend(t *testing.T) {
	t.Parallel()
	runBackendTests(t, func(t *testing.T) types.Backend {
		return NewMemoryStorage()
	})
}

func TestNewLocal_RequiresPath(t *testing.T) {
	t.Parallel()
	_, err := NewLocal(types.BackendConfig{Type: types.StorageTypeLocal})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	b, err := New(types.BackendConfig{Type: StorageTypeMemory})
	require.NoError(t, err)
	assert.Equal(t, StorageTypeMemory, b.Type())

	_, err = New(types.BackendConfig{Type: "bogus"})
	assert.Error(t, err)
}
