// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"time"
)

// StorageType identifies a backend implementation.
type StorageType string

const (
	// StorageTypeLocal stores data on the local filesystem.
	StorageTypeLocal StorageType = "local"
)

// BackendConfig configures a storage backend.
type BackendConfig struct {
	Type StorageType `json:"type" mapstructure:"type"`
	Path string      `json:"path" mapstructure:"path"` // base directory for local backends
}

// FileInfo describes one stored file.
type FileInfo struct {
	Size    int64
	ModTime time.Time
}

// Backend is the filesystem collaborator the store is built on. Keys are
// slash-separated relative paths; implementations own directory creation
// and durability. Mutating operations must be durable on return so that
// the metadata commit ordering holds up across a crash.
type Backend interface {
	Type() StorageType

	// WriteFile creates or truncates the file at key with the given bytes.
	WriteFile(ctx context.Context, key string, data []byte) error

	// WriteFileAtomic replaces the file at key via write-to-temp-then-rename,
	// so readers never observe a partially written file.
	WriteFileAtomic(ctx context.Context, key string, data []byte) error

	// WriteAt writes data at the given offset, extending the file if the
	// write ends past its current length.
	WriteAt(ctx context.Context, key string, off int64, data []byte) error

	// ReadAt fills buf from the given offset. It fails if the requested
	// span extends past the end of the file.
	ReadAt(ctx context.Context, key string, off int64, buf []byte) error

	// ReadFile returns the whole file.
	ReadFile(ctx context.Context, key string) ([]byte, error)

	// Rename moves a file to a new key, creating parent directories.
	Rename(ctx context.Context, oldKey, newKey string) error

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteAll removes a directory tree rooted at prefix.
	DeleteAll(ctx context.Context, prefix string) error

	// Exists reports whether a file exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Stat returns size and modification time of the file at key.
	Stat(ctx context.Context, key string) (FileInfo, error)

	// List returns the names of the immediate children of a directory key.
	// A missing directory lists as empty.
	List(ctx context.Context, prefix string) ([]string, error)

	Close() error
}
