// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

// Package index holds the per-object range index mapping logical byte
// ranges to chunk files, and the generic Indexer used for the store-wide
// object catalog.
package index

import (
	"fmt"

	"github.com/google/btree"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// Entry maps one logical range to the chunk backing it. The chunk's length
// always equals the range's length; logical offset L maps to physical
// offset L - Range.Start within the chunk.
type Entry struct {
	Range types.Range
	Chunk types.ChunkID
}

func entryLess(a, b Entry) bool {
	return a.Range.Start < b.Range.Start
}

// RangeIndex is an ordered set of non-overlapping range-to-chunk mappings
// for one object, keyed by range start. Stored ranges never overlap and
// never touch; the write planner merges touching ranges before insertion.
// Lookups and mutations are logarithmic in the number of ranges.
//
// RangeIndex is not safe for concurrent use; the store serializes access
// through its per-object locks.
type RangeIndex struct {
	tree *btree.BTreeG[Entry]
}

// NewRangeIndex returns an empty index.
func NewRangeIndex() *RangeIndex {
	return &RangeIndex{tree: btree.NewG(2, entryLess)}
}

// Len returns the number of stored ranges.
func (x *RangeIndex) Len() int {
	return x.tree.Len()
}

// Length returns the object's logical length: the highest stored range
// end, or zero for an empty index.
func (x *RangeIndex) Length() uint64 {
	e, ok := x.tree.Max()
	if !ok {
		return 0
	}
	return e.Range.End
}

// StoredBytes returns the total number of bytes covered by stored ranges.
func (x *RangeIndex) StoredBytes() uint64 {
	var total uint64
	x.tree.Ascend(func(e Entry) bool {
		total += e.Range.Len()
		return true
	})
	return total
}

// Entries returns all entries in ascending range order.
func (x *RangeIndex) Entries() []Entry {
	out := make([]Entry, 0, x.tree.Len())
	x.tree.Ascend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Covering returns the entry whose range contains off, if any.
func (x *RangeIndex) Covering(off uint64) (Entry, bool) {
	var found Entry
	var ok bool
	x.tree.DescendLessOrEqual(Entry{Range: types.Range{Start: off}}, func(e Entry) bool {
		if e.Range.Contains(off) {
			found, ok = e, true
		}
		return false
	})
	return found, ok
}

// Overlapping returns, in ascending order, every entry whose range shares
// at least one byte with r.
func (x *RangeIndex) Overlapping(r types.Range) []Entry {
	return x.collect(r, func(e Entry) bool { return e.Range.Overlaps(r) })
}

// Touching returns, in ascending order, every entry whose range overlaps
// r or is directly adjacent to it. This is the lookup the write planner
// uses to find merge candidates on both sides of a write.
func (x *RangeIndex) Touching(r types.Range) []Entry {
	return x.collect(r, func(e Entry) bool { return e.Range.Touches(r) })
}

func (x *RangeIndex) collect(r types.Range, match func(Entry) bool) []Entry {
	var out []Entry

	// The candidate with the largest start at or before r.Start may still
	// reach into r; pick it up first, then ascend through the rest.
	x.tree.DescendLessOrEqual(Entry{Range: types.Range{Start: r.Start}}, func(e Entry) bool {
		if match(e) {
			out = append(out, e)
		}
		return false
	})
	x.tree.AscendGreaterOrEqual(Entry{Range: types.Range{Start: r.Start + 1}}, func(e Entry) bool {
		if e.Range.Start > r.End {
			return false
		}
		if match(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Insert adds an entry. It fails with types.ErrInvalidRange if the entry
// is empty or would overlap a stored range; callers must merge instead.
func (x *RangeIndex) Insert(e Entry) error {
	if e.Range.IsEmpty() {
		return fmt.Errorf("%w: empty range %s", types.ErrInvalidRange, e.Range)
	}
	if over := x.Overlapping(e.Range); len(over) > 0 {
		return fmt.Errorf("%w: %s overlaps stored range %s", types.ErrInvalidRange, e.Range, over[0].Range)
	}
	x.tree.ReplaceOrInsert(e)
	return nil
}

// Remove deletes the entry with the exact given range.
func (x *RangeIndex) Remove(r types.Range) (Entry, bool) {
	e, ok := x.tree.Get(Entry{Range: r})
	if !ok || e.Range != r {
		return Entry{}, false
	}
	return x.tree.Delete(e)
}

// ExtendEnd grows the end of the entry with the exact given range. It
// fails if no such entry exists or if the extension would overlap the
// next stored range; callers must merge instead.
func (x *RangeIndex) ExtendEnd(r types.Range, newEnd uint64) error {
	e, ok := x.tree.Get(Entry{Range: r})
	if !ok || e.Range != r {
		return fmt.Errorf("%w: no stored range %s", types.ErrInvalidRange, r)
	}
	if newEnd <= r.End {
		return fmt.Errorf("%w: new end %d does not extend %s", types.ErrInvalidRange, newEnd, r)
	}

	var next Entry
	var hasNext bool
	x.tree.AscendGreaterOrEqual(Entry{Range: types.Range{Start: r.Start + 1}}, func(n Entry) bool {
		next, hasNext = n, true
		return false
	})
	if hasNext && next.Range.Start < newEnd {
		return fmt.Errorf("%w: extending %s to %d overlaps %s", types.ErrInvalidRange, r, newEnd, next.Range)
	}

	x.tree.Delete(e)
	e.Range.End = newEnd
	x.tree.ReplaceOrInsert(e)
	return nil
}

// Load replaces the index contents with the given entries, validating the
// ordering invariants. Entries must be sorted by start, pairwise
// non-overlapping and non-touching; violations report types.ErrCorrupted.
func (x *RangeIndex) Load(entries []Entry) error {
	tree := btree.NewG(2, entryLess)
	var prev Entry
	for i, e := range entries {
		if e.Range.IsEmpty() {
			return fmt.Errorf("%w: empty range %s", types.ErrCorrupted, e.Range)
		}
		if e.Chunk == "" {
			return fmt.Errorf("%w: range %s has no chunk", types.ErrCorrupted, e.Range)
		}
		if i > 0 && e.Range.Start <= prev.Range.End {
			return fmt.Errorf("%w: ranges %s and %s overlap or touch", types.ErrCorrupted, prev.Range, e.Range)
		}
		tree.ReplaceOrInsert(e)
		prev = e
	}
	if tree.Len() != len(entries) {
		return fmt.Errorf("%w: duplicate range starts", types.ErrCorrupted)
	}
	x.tree = tree
	return nil
}
