// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/zphrs/twizzler-object-store/pkg/storage/index"
	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// Write plan kinds, used as the metric label for write operations.
const (
	planInsert    = "insert"    // new range in a gap
	planOverwrite = "overwrite" // fully inside one stored range
	planExtend    = "extend"    // grows one stored range forward
	planSplice    = "splice"    // new chunk absorbs one stored range
	planFold      = "fold"      // merges several stored ranges
)

// writePlan describes how a write landed. Consumed chunk files are
// superseded by the merged chunk and must be removed only after the new
// index has been committed.
type writePlan struct {
	kind     string
	consumed []chunkFile
}

// applyWrite routes a write through the range index, mutating chunk files
// and the in-memory index. All chunk mutations happen at offsets computed
// from the final merged range, so an interrupted write can only leave a
// stale tail behind an existing chunk or an unreferenced new chunk; neither
// is visible through the committed index.
func (s *Store) applyWrite(ctx context.Context, h *objectHandle, off uint64, data []byte) (writePlan, error) {
	w := types.NewRange(off, uint64(len(data)))
	touched := h.idx.Touching(w)

	if len(touched) == 0 {
		ch := newChunkFile(s.backend, h.id)
		if err := ch.writeAt(ctx, 0, data); err != nil {
			return writePlan{}, err
		}
		if err := h.idx.Insert(index.Entry{Range: w, Chunk: ch.id}); err != nil {
			return writePlan{}, err
		}
		return writePlan{kind: planInsert}, nil
	}

	first := touched[0]

	// Fully interior write: update the chunk in place. The index is
	// untouched, so a crash before the data is durable at worst leaves
	// the previous bytes.
	if first.Range.Covers(w) {
		ch := openChunkFile(s.backend, h.id, first.Chunk)
		if err := ch.writeAt(ctx, w.Start-first.Range.Start, data); err != nil {
			return writePlan{}, err
		}
		return writePlan{kind: planOverwrite}, nil
	}

	// The write extends past at least one stored range. Pick a receiver
	// chunk, then walk the remaining touched ranges left to right,
	// filling gaps from the write and folding each stored chunk in.
	var (
		recv     chunkFile
		newStart uint64
		cursor   uint64
		rest     []index.Entry
		plan     writePlan
	)
	if first.Range.Start <= w.Start {
		// The write begins inside (or at the growing edge of) the
		// first range. Its chunk becomes the receiver; overwrite the
		// overlapped interior in place.
		recv = openChunkFile(s.backend, h.id, first.Chunk)
		newStart = first.Range.Start
		if w.Start < first.Range.End {
			n := min(w.End, first.Range.End) - w.Start
			if err := recv.writeAt(ctx, w.Start-first.Range.Start, data[:n]); err != nil {
				return writePlan{}, err
			}
		}
		cursor = first.Range.End
		rest = touched[1:]
		plan.kind = planExtend
		if len(rest) > 0 {
			plan.kind = planFold
		}
	} else {
		// The write begins before every stored range it touches: a
		// fresh chunk receives the write and absorbs them all.
		recv = newChunkFile(s.backend, h.id)
		newStart = w.Start
		cursor = w.Start
		rest = touched
		plan.kind = planSplice
		if len(rest) > 1 {
			plan.kind = planFold
		}
	}

	for _, e := range rest {
		if cursor < e.Range.Start {
			// Gap between stored ranges, covered by the write.
			if err := recv.writeAt(ctx, cursor-newStart, data[cursor-w.Start:e.Range.Start-w.Start]); err != nil {
				return writePlan{}, err
			}
			cursor = e.Range.Start
		}

		src := openChunkFile(s.backend, h.id, e.Chunk)
		if err := recv.copyFrom(ctx, src, e.Range.Start-newStart, e.Range.Len()); err != nil {
			return writePlan{}, err
		}
		if ov := e.Range.Intersect(w); !ov.IsEmpty() {
			if err := recv.writeAt(ctx, ov.Start-newStart, data[ov.Start-w.Start:ov.End-w.Start]); err != nil {
				return writePlan{}, err
			}
		}

		if _, ok := h.idx.Remove(e.Range); !ok {
			return writePlan{}, fmt.Errorf("%w: index lost range %s during merge", types.ErrCorrupted, e.Range)
		}
		plan.consumed = append(plan.consumed, src)
		cursor = e.Range.End
	}

	if w.End > cursor {
		if err := recv.writeAt(ctx, cursor-newStart, data[cursor-w.Start:]); err != nil {
			return writePlan{}, err
		}
		cursor = w.End
	}

	merged := types.Range{Start: newStart, End: cursor}
	if recv.id == first.Chunk {
		if err := h.idx.ExtendEnd(first.Range, merged.End); err != nil {
			return writePlan{}, err
		}
	} else {
		if err := h.idx.Insert(index.Entry{Range: merged, Chunk: recv.id}); err != nil {
			return writePlan{}, err
		}
	}
	return plan, nil
}
