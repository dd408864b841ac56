// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"hash"
	"sync"

	"github.com/minio/sha256-simd"
)

var (
	bufPool = sync.Pool{
		New: func() any {
			return new(bytes.Buffer)
		},
	}
	sha256Pool = sync.Pool{
		New: func() any {
			return sha256.New()
		},
	}
)

// SyncPoolGetBuffer returns a reset bytes.Buffer from the pool.
func SyncPoolGetBuffer() *bytes.Buffer {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// SyncPoolPutBuffer returns a buffer to the pool.
func SyncPoolPutBuffer(buf *bytes.Buffer) {
	bufPool.Put(buf)
}

// Sha256PoolGetHasher returns a reset sha256 hasher from the pool.
func Sha256PoolGetHasher() hash.Hash {
	h := sha256Pool.Get().(hash.Hash)
	h.Reset()
	return h
}

// Sha256PoolPutHasher returns a hasher to the pool.
func Sha256PoolPutHasher(h hash.Hash) {
	sha256Pool.Put(h)
}
