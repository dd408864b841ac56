// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"encoding/hex"
	"fmt"
	"path"

	"github.com/zphrs/twizzler-object-store/pkg/utils"
)

// ObjectIDSize is the byte length of an object identifier.
const ObjectIDSize = 16

// ObjectID is an opaque fixed-length object identifier, used verbatim as a
// lookup key and as a path component. It is immutable once assigned.
type ObjectID [ObjectIDSize]byte

// ObjectIDFromName derives an ObjectID by hashing an arbitrary name.
func ObjectIDFromName(name string) ObjectID {
	h := utils.Sha256PoolGetHasher()
	h.Write([]byte(name))
	sum := h.Sum(nil)
	utils.Sha256PoolPutHasher(h)

	var id ObjectID
	copy(id[:], sum[:ObjectIDSize])
	return id
}

// ParseObjectID parses the canonical 32-character lowercase hex form.
func ParseObjectID(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != ObjectIDSize*2 {
		return id, fmt.Errorf("object id must be %d hex characters, got %d", ObjectIDSize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("parse object id: %w", err)
	}
	copy(id[:], b)
	return id, nil
}

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// Prefix returns the first hex character, used to fan out object
// directories and bound per-directory entry counts.
func (id ObjectID) Prefix() string {
	return id.String()[:1]
}

// Dir returns the object's directory key within the store.
func (id ObjectID) Dir() string {
	return path.Join("ids", id.Prefix(), id.String())
}

// MetadataKey returns the key of the persisted range index.
func (id ObjectID) MetadataKey() string {
	return path.Join(id.Dir(), ".metadata")
}

// ChunksDir returns the directory key holding the object's chunk files.
func (id ObjectID) ChunksDir() string {
	return path.Join(id.Dir(), "chunks")
}

// ChunkKey returns the key of one chunk file.
func (id ObjectID) ChunkKey(c ChunkID) string {
	return path.Join(id.ChunksDir(), c.String())
}

// Less orders object ids lexicographically. Used to take per-object locks
// in a stable order when an operation spans two objects.
func (id ObjectID) Less(other ObjectID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

// ObjectInfo summarizes one object for listings and the store catalog.
type ObjectInfo struct {
	ID          ObjectID `json:"id"`
	Length      uint64   `json:"length"`       // logical length (highest range end)
	RangeCount  int      `json:"range_count"`  // number of ranges in the index
	StoredBytes uint64   `json:"stored_bytes"` // bytes physically present in chunks
	UpdatedAt   int64    `json:"updated_at"`   // unix seconds of last committed mutation
}
