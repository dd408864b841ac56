package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

func TestSweepOrphans_RemovesUnreferencedChunks(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("swept")

	data := seq(1, 256)
	require.NoError(t, s.Write(ctx, id, 0, data))

	// Plant an orphan chunk, as a crash between chunk write and index
	// commit would.
	orphan := types.NewChunkID()
	require.NoError(t, s.backend.WriteFile(ctx, id.ChunkKey(orphan), seq(9, 128)))
	require.Equal(t, 2, chunkCount(t, s, id))

	res, err := s.SweepOrphans(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ObjectsScanned)
	assert.Equal(t, 1, res.ChunksRemoved)
	assert.Equal(t, uint64(128), res.BytesReclaimed)
	assert.Equal(t, 1, chunkCount(t, s, id))

	// Referenced data is untouched.
	got, err := s.Read(ctx, id, 0, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestSweepOrphans_HonorsGracePeriod(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("graceful")

	require.NoError(t, s.Write(ctx, id, 0, seq(1, 64)))
	require.NoError(t, s.backend.WriteFile(ctx, id.ChunkKey(types.NewChunkID()), seq(9, 32)))

	res, err := s.SweepOrphans(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, res.ChunksRemoved, "fresh files are protected by the grace period")
	assert.Equal(t, 2, chunkCount(t, s, id))
}

func TestSweepOrphans_RemovesStaleTempFiles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("halfway")

	require.NoError(t, s.Write(ctx, id, 0, seq(1, 64)))

	// A temp file next to .metadata is what an interrupted atomic
	// replace leaves behind.
	tmpKey := id.MetadataKey() + ".tmp"
	require.NoError(t, s.backend.WriteFile(ctx, tmpKey, []byte("partial")))

	_, err := s.SweepOrphans(ctx, 0)
	require.NoError(t, err)

	ok, err := s.backend.Exists(ctx, tmpKey)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.backend.Exists(ctx, id.MetadataKey())
	require.NoError(t, err)
	assert.True(t, ok, "the committed metadata file must survive")
}

func TestSweepOrphans_UncommittedObject(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := oid("never committed")

	// Chunks without any .metadata: a write that crashed before its
	// first commit. Everything under the object is reclaimable.
	require.NoError(t, s.backend.WriteFile(ctx, id.ChunkKey(types.NewChunkID()), seq(3, 100)))

	res, err := s.SweepOrphans(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunksRemoved)
	assert.Equal(t, uint64(100), res.BytesReclaimed)
}

func TestSweepOrphans_EmptyStore(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	res, err := s.SweepOrphans(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, res.ObjectsScanned)
	assert.Zero(t, res.ChunksRemoved)
}
