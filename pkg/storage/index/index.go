// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"io"
)

// Indexer is a small durable key-value index. The store uses one as its
// object catalog: an advisory ObjectID to ObjectInfo mapping that serves
// listings and gauges without touching per-object metadata files.
type Indexer[K comparable, V any] interface {
	io.Closer
	Put(key K, value V) error
	Get(key K) (V, error)
	Delete(key K) error
	Iterate(func(key K, value V) error) error

	// Destroy removes the underlying index storage
	Destroy() error

	// Sync forces buffered writes to disk
	Sync() error

	// PutSync writes with immediate fsync (slower but durable)
	PutSync(key K, value V) error

	// DeleteSync deletes with immediate fsync (slower but durable)
	DeleteSync(key K) error
}
