// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

func init() {
	Register(types.StorageTypeLocal, NewLocal)
}

// Local implements types.Backend on the local filesystem
type Local struct {
	basePath string
}

// NewLocal creates a local filesystem backend
func NewLocal(cfg types.BackendConfig) (types.Backend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path required for local backend")
	}

	// Ensure base path exists
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("create base path: %w", err)
	}

	return &Local{basePath: cfg.Path}, nil
}

func (l *Local) Type() types.StorageType {
	return types.StorageTypeLocal
}

func (l *Local) path(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *Local) WriteFile(ctx context.Context, key string, data []byte) error {
	path := l.path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(path)
		return fmt.Errorf("write data: %w", err)
	}

	return Fdatasync(f)
}

func (l *Local) WriteFileAtomic(ctx context.Context, key string, data []byte) error {
	path := l.path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return syncDir(filepath.Dir(path))
}

func (l *Local) WriteAt(ctx context.Context, key string, off int64, data []byte) error {
	path := l.path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, off); err != nil {
		return fmt.Errorf("write at %d: %w", off, err)
	}

	return Fdatasync(f)
}

func (l *Local) ReadAt(ctx context.Context, key string, off int64, buf []byte) error {
	f, err := os.Open(l.path(key))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.ReadAt(buf, off); err != nil {
		return fmt.Errorf("read %d bytes at %d: %w", len(buf), off, err)
	}
	return nil
}

func (l *Local) ReadFile(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(l.path(key))
}

func (l *Local) Rename(ctx context.Context, oldKey, newKey string) error {
	oldPath := l.path(oldKey)
	newPath := l.path(newKey)

	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return syncDir(filepath.Dir(newPath))
}

func (l *Local) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.path(key))
	if os.IsNotExist(err) {
		return nil // Already gone
	}
	return err
}

func (l *Local) DeleteAll(ctx context.Context, prefix string) error {
	return os.RemoveAll(l.path(prefix))
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (l *Local) Stat(ctx context.Context, key string) (types.FileInfo, error) {
	info, err := os.Stat(l.path(key))
	if err != nil {
		return types.FileInfo{}, err
	}
	return types.FileInfo{Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (l *Local) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(l.path(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (l *Local) Close() error {
	return nil
}

// syncDir flushes a directory so that renames within it survive a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
