// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package backend

import "os"

// Fdatasync falls back to a full fsync on platforms without fdatasync.
func Fdatasync(f *os.File) error {
	return f.Sync()
}
