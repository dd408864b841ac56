// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ChunkID identifies one chunk file within an object. Chunk contents are
// mutated in place (interior overwrites, tail growth), so ids are random
// rather than content-derived. Randomness also keeps ids unique across
// objects, which lets ExtendWith move chunk files by rename alone.
type ChunkID string

// NewChunkID allocates a fresh chunk id.
func NewChunkID() ChunkID {
	return ChunkID(uuid.NewString())
}

// ParseChunkID validates the canonical uuid form of a chunk id.
func ParseChunkID(s string) (ChunkID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse chunk id: %w", err)
	}
	return ChunkID(u.String()), nil
}

func (c ChunkID) String() string {
	return string(c)
}
