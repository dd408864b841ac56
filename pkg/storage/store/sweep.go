// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"github.com/zphrs/twizzler-object-store/pkg/logger"
	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// SweepResult summarizes one orphan sweep.
type SweepResult struct {
	ObjectsScanned int
	ChunksRemoved  int
	BytesReclaimed uint64
}

// SweepOrphans removes chunk files that no object's committed index
// references, plus temp files left behind by interrupted metadata
// replaces. Orphans appear when a crash lands between writing new chunks
// and committing the index, or between committing and deleting superseded
// chunks. Files younger than grace are left alone so in-flight writes are
// never swept out from under their commit.
func (s *Store) SweepOrphans(ctx context.Context, grace time.Duration) (SweepResult, error) {
	var res SweepResult

	ids, err := s.ListObjects(ctx)
	if err != nil {
		return res, err
	}
	cutoff := time.Now().Add(-grace)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.sweepObject(ctx, id, cutoff, &res); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Stringer("object", id).Msg("orphan sweep failed for object")
		}
	}
	StoredBytesTotal.Sub(float64(res.BytesReclaimed))
	return res, nil
}

func (s *Store) sweepObject(ctx context.Context, id types.ObjectID, cutoff time.Time, res *SweepResult) error {
	h := s.handle(id)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.loadLocked(ctx, h); err != nil {
		return err
	}
	res.ObjectsScanned++

	referenced := make(map[types.ChunkID]struct{}, h.idx.Len())
	for _, e := range h.idx.Entries() {
		referenced[e.Chunk] = struct{}{}
	}

	names, err := s.backend.List(ctx, id.ChunksDir())
	if err != nil {
		return err
	}
	for _, name := range names {
		cid, err := types.ParseChunkID(name)
		if err == nil {
			if _, ok := referenced[cid]; ok {
				continue
			}
		} else if !isTempKey(name) {
			continue // not ours to touch
		}
		key := id.ChunksDir() + "/" + name
		fi, err := s.backend.Stat(ctx, key)
		if err != nil {
			continue
		}
		if fi.ModTime.After(cutoff) {
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("orphan delete failed")
			continue
		}
		res.ChunksRemoved++
		res.BytesReclaimed += uint64(fi.Size)
	}

	// A temp metadata file can sit next to .metadata after a crash
	// mid-replace.
	dirNames, err := s.backend.List(ctx, id.Dir())
	if err != nil {
		return err
	}
	for _, name := range dirNames {
		if !isTempKey(name) {
			continue
		}
		key := id.Dir() + "/" + name
		fi, err := s.backend.Stat(ctx, key)
		if err != nil || fi.ModTime.After(cutoff) {
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("orphan delete failed")
		}
	}
	return nil
}
