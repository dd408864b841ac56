// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/zphrs/twizzler-object-store/pkg/types"
	"github.com/zphrs/twizzler-object-store/pkg/utils"
)

// copyBufferSize is the unit for chunk-to-chunk copies during splices.
const copyBufferSize = 1 << 20 // 1MB

// chunkFile is a handle to one chunk file of one object. All physical
// offsets are relative to the start of the chunk. Writes land at offsets
// computed from the logical position, so a stale tail left behind by an
// interrupted operation is simply overwritten instead of shifting data.
type chunkFile struct {
	backend types.Backend
	key     string
	id      types.ChunkID
}

// newChunkFile allocates a handle with a fresh chunk id. The backing file
// comes into existence on the first write.
func newChunkFile(b types.Backend, obj types.ObjectID) chunkFile {
	id := types.NewChunkID()
	return chunkFile{backend: b, key: obj.ChunkKey(id), id: id}
}

// openChunkFile returns a handle to an existing chunk.
func openChunkFile(b types.Backend, obj types.ObjectID, id types.ChunkID) chunkFile {
	return chunkFile{backend: b, key: obj.ChunkKey(id), id: id}
}

// writeAt writes data at the given physical offset, growing the file if
// the write ends past its current length.
func (c chunkFile) writeAt(ctx context.Context, off uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := c.backend.WriteAt(ctx, c.key, int64(off), data); err != nil {
		return fmt.Errorf("chunk %s: %w", c.id, err)
	}
	return nil
}

// readAt fills buf starting at the given physical offset.
func (c chunkFile) readAt(ctx context.Context, off uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if err := c.backend.ReadAt(ctx, c.key, int64(off), buf); err != nil {
		return fmt.Errorf("chunk %s: %w", c.id, err)
	}
	return nil
}

// copyFrom copies length bytes from the start of other into the receiver
// at physical offset dstOff. The source file is left in place; the caller
// removes it once the new index has been committed.
func (c chunkFile) copyFrom(ctx context.Context, other chunkFile, dstOff, length uint64) error {
	buf := utils.GetBuffer(copyBufferSize)
	defer utils.PutBuffer(buf)

	var done uint64
	for done < length {
		n := uint64(len(buf))
		if length-done < n {
			n = length - done
		}
		if err := other.readAt(ctx, done, buf[:n]); err != nil {
			return err
		}
		if err := c.writeAt(ctx, dstOff+done, buf[:n]); err != nil {
			return err
		}
		done += n
	}
	return nil
}

// remove deletes the backing file.
func (c chunkFile) remove(ctx context.Context) error {
	return c.backend.Delete(ctx, c.key)
}
