package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRange(t *testing.T) {
	t.Parallel()

	r := NewRange(10, 5)
	assert.Equal(t, uint64(10), r.Start)
	assert.Equal(t, uint64(15), r.End)
	assert.Equal(t, uint64(5), r.Len())
	assert.False(t, r.IsEmpty())

	assert.True(t, NewRange(7, 0).IsEmpty())
}

func TestRange_Contains(t *testing.T) {
	t.Parallel()

	r := Range{Start: 10, End: 20}
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(19))
	assert.False(t, r.Contains(20)) // end is exclusive
	assert.False(t, r.Contains(9))
}

func TestRange_Covers(t *testing.T) {
	t.Parallel()

	r := Range{Start: 10, End: 20}
	assert.True(t, r.Covers(Range{Start: 10, End: 20}))
	assert.True(t, r.Covers(Range{Start: 12, End: 18}))
	assert.False(t, r.Covers(Range{Start: 9, End: 15}))
	assert.False(t, r.Covers(Range{Start: 15, End: 21}))
}

func TestRange_Overlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"disjoint", Range{0, 10}, Range{20, 30}, false},
		{"adjacent", Range{0, 10}, Range{10, 20}, false},
		{"one byte shared", Range{0, 11}, Range{10, 20}, true},
		{"nested", Range{0, 30}, Range{10, 20}, true},
		{"identical", Range{5, 9}, Range{5, 9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestRange_Touches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"disjoint", Range{0, 10}, Range{20, 30}, false},
		{"gap of one", Range{0, 10}, Range{11, 20}, false},
		{"adjacent", Range{0, 10}, Range{10, 20}, true},
		{"overlapping", Range{0, 15}, Range{10, 20}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Touches(tt.b))
			assert.Equal(t, tt.want, tt.b.Touches(tt.a))
		})
	}
}

func TestRange_Intersect(t *testing.T) {
	t.Parallel()

	got := Range{Start: 0, End: 15}.Intersect(Range{Start: 10, End: 20})
	require.Equal(t, Range{Start: 10, End: 15}, got)

	empty := Range{Start: 0, End: 10}.Intersect(Range{Start: 10, End: 20})
	assert.True(t, empty.IsEmpty())
}
