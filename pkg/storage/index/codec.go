// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/zphrs/twizzler-object-store/pkg/types"
	"github.com/zphrs/twizzler-object-store/pkg/utils"
)

// metadataVersion is bumped when the persisted layout changes shape.
const metadataVersion = 1

// metadataFile is the persisted form of a range index: a versioned,
// start-ordered list of (range, chunk) entries.
type metadataFile struct {
	Version int
	Entries []Entry
}

// EncodeMetadata serializes the index for its .metadata file.
func EncodeMetadata(x *RangeIndex) ([]byte, error) {
	buf := utils.SyncPoolGetBuffer()
	defer utils.SyncPoolPutBuffer(buf)

	f := metadataFile{Version: metadataVersion, Entries: x.Entries()}
	if err := gob.NewEncoder(buf).Encode(f); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeMetadata rebuilds a range index from its .metadata file contents,
// validating the ordering invariants. Undecodable or invariant-violating
// input reports types.ErrCorrupted.
func DecodeMetadata(data []byte) (*RangeIndex, error) {
	var f metadataFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", types.ErrCorrupted, err)
	}
	if f.Version != metadataVersion {
		return nil, fmt.Errorf("%w: unsupported metadata version %d", types.ErrCorrupted, f.Version)
	}

	x := NewRangeIndex()
	if err := x.Load(f.Entries); err != nil {
		return nil, err
	}
	return x, nil
}
