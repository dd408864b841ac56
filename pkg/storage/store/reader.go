// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// readLocked assembles a read from the stored ranges overlapping the
// request. The buffer starts zeroed, so gaps and the region past the
// object's length need no work. Caller holds h.mu.
func (s *Store) readLocked(ctx context.Context, h *objectHandle, off uint64, length int) ([]byte, error) {
	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}

	r := types.NewRange(off, uint64(length))
	for _, e := range h.idx.Overlapping(r) {
		seg := e.Range.Intersect(r)
		ch := openChunkFile(s.backend, h.id, e.Chunk)
		if err := ch.readAt(ctx, seg.Start-e.Range.Start, buf[seg.Start-off:seg.End-off]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
