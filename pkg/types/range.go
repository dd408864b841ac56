// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "fmt"

// Range is a half-open interval [Start, End) of logical byte offsets.
// A valid Range has Start < End; the zero Range is empty.
type Range struct {
	Start uint64
	End   uint64
}

// NewRange builds a Range from an offset and a byte count.
func NewRange(off, length uint64) Range {
	return Range{Start: off, End: off + length}
}

// Len returns the number of bytes the range covers.
func (r Range) Len() uint64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty reports whether the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains reports whether off falls inside the range.
func (r Range) Contains(off uint64) bool {
	return off >= r.Start && off < r.End
}

// Covers reports whether other lies entirely within r.
func (r Range) Covers(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Overlaps reports whether the two ranges share at least one byte.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Touches reports whether the two ranges overlap or are directly adjacent.
// Touching ranges must be merged by the write planner; the index never
// stores two of them side by side.
func (r Range) Touches(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Intersect returns the overlapping part of the two ranges. The returned
// range is empty when they do not overlap.
func (r Range) Intersect(other Range) Range {
	out := Range{Start: max(r.Start, other.Start), End: min(r.End, other.End)}
	if out.End < out.Start {
		return Range{}
	}
	return out
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
