// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "errors"

var (
	// ErrNotFound is returned when an object id is unknown to the store.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidRange is returned for invalid offsets or lengths, and for
	// internal lookups that would violate the non-overlap invariant.
	ErrInvalidRange = errors.New("invalid range")

	// ErrCorrupted is returned when persisted metadata fails to decode or
	// violates the range index invariants on load.
	ErrCorrupted = errors.New("metadata corrupted")
)
