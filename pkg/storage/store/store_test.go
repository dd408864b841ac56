package store

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zphrs/twizzler-object-store/pkg/storage/backend"
	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// ============================================================================
// Test Helpers
// ============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(Config{
		Backend:     types.BackendConfig{Type: backend.StorageTypeMemory},
		CatalogKind: CatalogKindMemory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func oid(name string) types.ObjectID {
	return types.ObjectIDFromName(name)
}

// seq returns n bytes of a recognizable repeating pattern offset by salt.
func seq(salt byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = salt + byte(i%101)
	}
	return out
}

// chunkCount returns the number of chunk files on disk for an object.
func chunkCount(t *testing.T, s *Store, id types.ObjectID) int {
	t.Helper()
	names, err := s.backend.List(context.Background(), id.ChunksDir())
	require.NoError(t, err)
	return len(names)
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestStore_WriteRead_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("roundtrip")

	data := seq(1, 4096)
	require.NoError(t, s.Write(ctx, id, 0, data))

	got, err := s.Read(ctx, id, 0, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_Read_UnknownObject(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Read(context.Background(), oid("missing"), 0, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestStore_Read_NegativeLength(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("neg")
	require.NoError(t, s.Write(ctx, id, 0, []byte("x")))

	_, err := s.Read(ctx, id, 0, -1)
	assert.True(t, errors.Is(err, types.ErrInvalidRange))
}

func TestStore_Read_ZeroFillsGapsAndTail(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("gaps")

	data := seq(7, 10)
	require.NoError(t, s.Write(ctx, id, 10, data))

	got, err := s.Read(ctx, id, 0, 30)
	require.NoError(t, err)

	want := make([]byte, 30)
	copy(want[10:], data)
	assert.Equal(t, want, got, "bytes before, inside and past the object must line up")
}

func TestStore_Write_ZeroLengthIsNoop(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("noop")

	require.NoError(t, s.Write(ctx, id, 5, nil))

	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "a zero-length write must not create the object")
}

func TestStore_Write_CreatesObject(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("autocreate")

	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Write(ctx, id, 0, []byte("x")))

	ok, err = s.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Create(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("empty")

	created, err := s.Create(ctx, id)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Create(ctx, id)
	require.NoError(t, err)
	assert.False(t, created)

	// An empty object reads back as zeros of any requested length.
	got, err := s.Read(ctx, id, 0, 16)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), got)

	info, err := s.Stat(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, info.Length)
	assert.Zero(t, info.RangeCount)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("doomed")

	require.NoError(t, s.Write(ctx, id, 0, seq(3, 100)))
	require.NoError(t, s.Delete(ctx, id))

	_, err := s.Read(ctx, id, 0, 10)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	err = s.Delete(ctx, id)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	ok, err := s.backend.Exists(ctx, id.Dir())
	require.NoError(t, err)
	assert.False(t, ok, "delete must remove the object's directory")
}

func TestStore_DeleteThenRewrite(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("phoenix")

	require.NoError(t, s.Write(ctx, id, 0, []byte("old")))
	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Write(ctx, id, 0, []byte("new")))

	got, err := s.Read(ctx, id, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestStore_Stat(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("stats")

	require.NoError(t, s.Write(ctx, id, 0, seq(1, 10)))
	require.NoError(t, s.Write(ctx, id, 100, seq(2, 20)))

	info, err := s.Stat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, uint64(120), info.Length)
	assert.Equal(t, 2, info.RangeCount)
	assert.Equal(t, uint64(30), info.StoredBytes)
	assert.NotZero(t, info.UpdatedAt)

	_, err = s.Stat(ctx, oid("never written"))
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestStore_ListObjects(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.ListObjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	want := []types.ObjectID{oid("one"), oid("two"), oid("three")}
	for _, id := range want {
		require.NoError(t, s.Write(ctx, id, 0, []byte("x")))
	}

	ids, err = s.ListObjects(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, ids)
	for i := 1; i < len(ids); i++ {
		assert.True(t, ids[i-1].Less(ids[i]), "listing must be sorted")
	}
}

func TestStore_ListObjectInfos(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	id := oid("listed")
	require.NoError(t, s.Write(ctx, id, 5, seq(9, 10)))

	infos, err := s.ListObjectInfos(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, id, infos[0].ID)
	assert.Equal(t, uint64(15), infos[0].Length)
	assert.Equal(t, uint64(10), infos[0].StoredBytes)
}

func TestStore_ConfigID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.ConfigID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := oid("store identity")
	require.NoError(t, s.SetConfigID(ctx, want))

	got, ok, err := s.ConfigID(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

// ============================================================================
// Corruption and Persistence
// ============================================================================

func TestStore_Read_CorruptMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("mangled")

	require.NoError(t, s.Write(ctx, id, 0, []byte("fine")))

	// Damage the metadata behind the store's back and force a reload.
	require.NoError(t, s.backend.WriteFile(ctx, id.MetadataKey(), []byte("garbage")))
	s.handle(id).loaded = false

	_, err := s.Read(ctx, id, 0, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCorrupted))
}

func TestStore_PersistenceAcrossReopen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()
	id := oid("durable")
	data := seq(5, 1<<16)

	cfg := Config{
		Backend:     types.BackendConfig{Type: types.StorageTypeLocal, Path: dir},
		CatalogKind: CatalogKindLevelDB,
	}

	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, id, 0, data))
	require.NoError(t, s.Write(ctx, id, 1<<20, []byte("tail")))
	require.NoError(t, s.Close())

	s, err = New(cfg)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Read(ctx, id, 0, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	got, err = s.Read(ctx, id, 1<<20, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("tail"), got)

	info, err := s.Stat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<20+4), info.Length)
	assert.Equal(t, 2, info.RangeCount)
}

// ============================================================================
// Concurrency
// ============================================================================

func TestStore_ConcurrentDisjointWriters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("contended")

	const workers = 8
	const blockSize = 512

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Leave a one-byte gap between blocks so the ranges stay
			// disjoint regardless of write order.
			off := uint64(i) * (blockSize + 1)
			if err := s.Write(ctx, id, off, seq(byte(i), blockSize)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		off := uint64(i) * (blockSize + 1)
		got, err := s.Read(ctx, id, off, blockSize)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(seq(byte(i), blockSize), got), "worker %d block", i)
	}

	info, err := s.Stat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, workers, info.RangeCount)
}

func TestStore_ConcurrentReaders(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("readers")
	data := seq(11, 8192)
	require.NoError(t, s.Write(ctx, id, 0, data))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Read(ctx, id, 0, len(data))
			if err != nil {
				t.Error(err)
				return
			}
			if !bytes.Equal(data, got) {
				t.Error("read returned wrong bytes")
			}
		}()
	}
	wg.Wait()
}
