// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/zphrs/twizzler-object-store/pkg/logger"
	"github.com/zphrs/twizzler-object-store/pkg/storage/index"
	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// ExtendWith appends the contents of src onto the end of dst and consumes
// src. Stored ranges keep their offsets relative to dst's logical length,
// so gaps in src stay gaps in dst. Chunk files move by rename; only the
// pair of ranges meeting at the join is ever copied.
//
// The two metadata updates are not atomic together: a crash between them
// can leave src behind with its chunk files already moved. dst is updated
// first, so data appended to it is never lost.
func (s *Store) ExtendWith(ctx context.Context, dst, src types.ObjectID) error {
	if dst == src {
		return fmt.Errorf("%w: cannot extend object %s with itself", types.ErrInvalidRange, dst)
	}

	dh := s.handle(dst)
	sh := s.handle(src)

	// Lock in id order so concurrent ExtendWith calls cannot deadlock.
	lo, hi := dh, sh
	if sh.id.Less(dh.id) {
		lo, hi = sh, dh
	}
	lo.mu.Lock()
	defer lo.mu.Unlock()
	hi.mu.Lock()
	defer hi.mu.Unlock()

	if err := s.loadLocked(ctx, dh); err != nil {
		return err
	}
	if err := s.loadLocked(ctx, sh); err != nil {
		return err
	}
	if !dh.exists {
		return fmt.Errorf("object %s: %w", dst, types.ErrNotFound)
	}
	if !sh.exists {
		return fmt.Errorf("object %s: %w", src, types.ErrNotFound)
	}

	shift := dh.idx.Length()
	prevStored := dh.idx.StoredBytes() + sh.idx.StoredBytes()

	srcEntries := sh.idx.Entries()
	for _, e := range srcEntries {
		if err := s.backend.Rename(ctx, src.ChunkKey(e.Chunk), dst.ChunkKey(e.Chunk)); err != nil {
			dh.loaded = false
			sh.loaded = false
			return fmt.Errorf("move chunk %s: %w", e.Chunk, err)
		}
	}

	merged := dh.idx.Entries()
	var consumed []chunkFile

	// If src's first range starts at offset zero and dst's stored data
	// reaches its logical end, the two ranges touch at the join and must
	// merge: fold the moved chunk onto dst's last one.
	if len(srcEntries) > 0 && len(merged) > 0 {
		last := &merged[len(merged)-1]
		head := srcEntries[0]
		if last.Range.End == head.Range.Start+shift {
			recv := openChunkFile(s.backend, dst, last.Chunk)
			moved := openChunkFile(s.backend, dst, head.Chunk)
			if err := recv.copyFrom(ctx, moved, last.Range.Len(), head.Range.Len()); err != nil {
				dh.loaded = false
				sh.loaded = false
				return err
			}
			last.Range.End = head.Range.End + shift
			consumed = append(consumed, moved)
			srcEntries = srcEntries[1:]
		}
	}

	for _, e := range srcEntries {
		merged = append(merged, index.Entry{
			Range: types.Range{Start: e.Range.Start + shift, End: e.Range.End + shift},
			Chunk: e.Chunk,
		})
	}

	newIdx := index.NewRangeIndex()
	if err := newIdx.Load(merged); err != nil {
		dh.loaded = false
		sh.loaded = false
		return err
	}
	dh.idx = newIdx

	if err := s.commitLocked(ctx, dh); err != nil {
		sh.loaded = false
		return err
	}

	for _, c := range consumed {
		if err := c.remove(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("chunk", c.id.String()).Msg("removing folded chunk failed")
		}
	}

	if err := s.backend.DeleteAll(ctx, src.Dir()); err != nil {
		sh.loaded = false
		return fmt.Errorf("consume object %s: %w", src, err)
	}
	if err := s.catalog.DeleteSync(src); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Stringer("object", src).Msg("catalog delete failed")
	}
	sh.idx = index.NewRangeIndex()
	sh.exists = false

	info := dh.infoLocked()
	s.updateCatalog(ctx, info)

	ObjectsTotal.Dec()
	StoredBytesTotal.Add(float64(info.StoredBytes) - float64(prevStored))
	ExtendOperations.Inc()
	return nil
}
