package backend

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// StorageTypeMemory is used for testing
const StorageTypeMemory types.StorageType = "memory"

func init() {
	Register(StorageTypeMemory, func(cfg types.BackendConfig) (types.Backend, error) {
		return NewMemoryStorage(), nil
	})
}

type memoryFile struct {
	data    []byte
	modTime time.Time
}

// MemoryStorage is an in-memory backend for testing
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
}

// NewMemoryStorage creates a new in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		files: make(map[string]*memoryFile),
	}
}

func (m *MemoryStorage) Type() types.StorageType {
	return StorageTypeMemory
}

func (m *MemoryStorage) WriteFile(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = &memoryFile{data: append([]byte(nil), data...), modTime: time.Now()}
	return nil
}

func (m *MemoryStorage) WriteFileAtomic(ctx context.Context, key string, data []byte) error {
	// A map swap is already atomic for readers holding the lock.
	return m.WriteFile(ctx, key, data)
}

func (m *MemoryStorage) WriteAt(ctx context.Context, key string, off int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[key]
	if !ok {
		f = &memoryFile{}
		m.files[key] = f
	}

	end := off + int64(len(data))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[off:end], data)
	f.modTime = time.Now()
	return nil
}

func (m *MemoryStorage) ReadAt(ctx context.Context, key string, off int64, buf []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[key]
	if !ok {
		return fmt.Errorf("read %s: %w", key, os.ErrNotExist)
	}
	if off+int64(len(buf)) > int64(len(f.data)) {
		return fmt.Errorf("read %d bytes at %d: past end of %s (%d bytes)", len(buf), off, key, len(f.data))
	}
	copy(buf, f.data[off:])
	return nil
}

func (m *MemoryStorage) ReadFile(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[key]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", key, os.ErrNotExist)
	}
	return append([]byte(nil), f.data...), nil
}

func (m *MemoryStorage) Rename(ctx context.Context, oldKey, newKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[oldKey]
	if !ok {
		return fmt.Errorf("rename %s: %w", oldKey, os.ErrNotExist)
	}
	m.files[newKey] = f
	delete(m.files, oldKey)
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *MemoryStorage) DeleteAll(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.files {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			delete(m.files, key)
		}
	}
	return nil
}

func (m *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok, nil
}

func (m *MemoryStorage) Stat(ctx context.Context, key string) (types.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[key]
	if !ok {
		return types.FileInfo{}, fmt.Errorf("stat %s: %w", key, os.ErrNotExist)
	}
	return types.FileInfo{Size: int64(len(f.data)), ModTime: f.modTime}, nil
}

func (m *MemoryStorage) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for key := range m.files {
		if !strings.HasPrefix(key, prefix+"/") {
			continue
		}
		rest := strings.TrimPrefix(key, prefix+"/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		seen[rest] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
