// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"math/bits"
	"sync"
)

// Byte slice pool size classes (powers of 2), 4KB through 4MB.
const (
	minPoolSize   = 1 << 12
	maxPoolSize   = 1 << 22
	numPoolLevels = 11
)

var bufferPools [numPoolLevels]sync.Pool

func init() {
	for i := range bufferPools {
		size := minPoolSize << i
		bufferPools[i] = sync.Pool{
			New: func() any {
				buf := make([]byte, size)
				return &buf
			},
		}
	}
}

// poolIndex returns the pool index holding buffers of at least size bytes,
// or -1 if size exceeds the largest class.
func poolIndex(size int) int {
	if size <= minPoolSize {
		return 0
	}
	if size > maxPoolSize {
		return -1
	}
	idx := bits.Len(uint(size-1)) - 12
	if idx < 0 {
		return 0
	}
	if idx >= numPoolLevels {
		return -1
	}
	return idx
}

// GetBuffer returns a pooled byte slice of exactly size bytes. Slices larger
// than the biggest pool class are allocated directly.
func GetBuffer(size int) []byte {
	idx := poolIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	buf := bufferPools[idx].Get().(*[]byte)
	return (*buf)[:size]
}

// PutBuffer returns a slice obtained from GetBuffer to its pool.
func PutBuffer(buf []byte) {
	size := cap(buf)
	if size < minPoolSize || size > maxPoolSize {
		return
	}
	idx := poolIndex(size)
	if idx < 0 || minPoolSize<<idx != size {
		return
	}
	full := buf[:size]
	bufferPools[idx].Put(&full)
}
