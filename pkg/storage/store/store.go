// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

// Package store implements a sparse object store on a plain filesystem.
// Objects are logically sparse byte streams; written ranges are backed by
// chunk files and routed through a per-object range index, while unwritten
// gaps read as zeros.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zphrs/twizzler-object-store/pkg/logger"
	"github.com/zphrs/twizzler-object-store/pkg/storage/backend"
	"github.com/zphrs/twizzler-object-store/pkg/storage/index"
	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// CatalogKind specifies the object catalog backend type
type CatalogKind string

const (
	CatalogKindMemory  CatalogKind = "memory"
	CatalogKindLevelDB CatalogKind = "leveldb"
)

// configIDKey is the store-level file holding the configured store id.
const configIDKey = "config_id"

// Config holds Store configuration
type Config struct {
	Backend     types.BackendConfig
	CatalogKind CatalogKind // memory or leveldb
	CatalogPath string      // defaults to <backend path>/catalog for local backends
}

// Store binds object ids to their range indexes and chunk files on a
// storage backend. Writes to one object are serialized by a per-object
// lock; reads share it. The per-object .metadata file is the source of
// truth; the catalog is an advisory store-wide summary.
type Store struct {
	backend types.Backend
	catalog index.Indexer[types.ObjectID, types.ObjectInfo]

	mu      sync.Mutex
	objects map[types.ObjectID]*objectHandle
}

// objectHandle carries the in-memory state of one object. The range index
// is loaded lazily and dropped again if a commit fails, so memory never
// diverges from disk.
type objectHandle struct {
	id types.ObjectID

	mu     sync.RWMutex
	idx    *index.RangeIndex
	loaded bool
	exists bool
}

// New creates a Store on the configured backend.
func New(cfg Config) (*Store, error) {
	b, err := backend.New(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	s := &Store{
		backend: b,
		objects: make(map[types.ObjectID]*objectHandle),
	}

	switch cfg.CatalogKind {
	case CatalogKindLevelDB:
		path := cfg.CatalogPath
		if path == "" {
			if cfg.Backend.Path == "" {
				return nil, fmt.Errorf("catalog path required for leveldb catalog")
			}
			path = filepath.Join(cfg.Backend.Path, "catalog")
		}
		s.catalog, err = index.NewLevelDBIndexer[types.ObjectID, types.ObjectInfo](
			path, nil,
			func(k types.ObjectID) []byte { return k[:] },
			func(b []byte) (types.ObjectID, error) {
				var id types.ObjectID
				if len(b) != types.ObjectIDSize {
					return id, fmt.Errorf("bad catalog key length %d", len(b))
				}
				copy(id[:], b)
				return id, nil
			},
		)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("create catalog: %w", err)
		}

	default: // CatalogKindMemory
		s.catalog, err = index.NewMemoryIndexer[types.ObjectID, types.ObjectInfo]()
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("create catalog: %w", err)
		}
	}

	s.initializeMetrics()

	return s, nil
}

// Close flushes the catalog and releases the backend.
func (s *Store) Close() error {
	var errs []error
	if s.catalog != nil {
		if err := s.catalog.Sync(); err != nil {
			errs = append(errs, err)
		}
		if err := s.catalog.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.backend.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// handle returns the shared handle for an object id.
func (s *Store) handle(id types.ObjectID) *objectHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.objects[id]
	if !ok {
		h = &objectHandle{id: id}
		s.objects[id] = h
	}
	return h
}

// loadLocked populates the handle from disk. Caller holds h.mu for writing.
func (s *Store) loadLocked(ctx context.Context, h *objectHandle) error {
	if h.loaded {
		return nil
	}

	data, err := s.backend.ReadFile(ctx, h.id.MetadataKey())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ok, err := s.backend.Exists(ctx, h.id.Dir())
			if err != nil {
				return fmt.Errorf("stat object %s: %w", h.id, err)
			}
			h.idx = index.NewRangeIndex()
			h.exists = ok
			h.loaded = true
			return nil
		}
		return fmt.Errorf("load metadata for %s: %w", h.id, err)
	}

	x, err := index.DecodeMetadata(data)
	if err != nil {
		return fmt.Errorf("object %s: %w", h.id, err)
	}
	h.idx = x
	h.exists = true
	h.loaded = true
	return nil
}

// commitLocked atomically replaces the object's .metadata with the current
// in-memory index. Chunk mutations are already durable at this point, so a
// crash on either side of the rename leaves a consistent object. On failure
// the in-memory index is dropped so the next operation reloads from disk.
func (s *Store) commitLocked(ctx context.Context, h *objectHandle) error {
	data, err := index.EncodeMetadata(h.idx)
	if err != nil {
		h.loaded = false
		return err
	}
	if err := s.backend.WriteFileAtomic(ctx, h.id.MetadataKey(), data); err != nil {
		h.loaded = false
		return fmt.Errorf("persist metadata for %s: %w", h.id, err)
	}
	h.exists = true
	return nil
}

// infoLocked builds the catalog entry for the current index.
func (h *objectHandle) infoLocked() types.ObjectInfo {
	return types.ObjectInfo{
		ID:          h.id,
		Length:      h.idx.Length(),
		RangeCount:  h.idx.Len(),
		StoredBytes: h.idx.StoredBytes(),
		UpdatedAt:   time.Now().Unix(),
	}
}

// updateCatalog records the object's current summary. The catalog is
// advisory; failures are logged, never surfaced.
func (s *Store) updateCatalog(ctx context.Context, info types.ObjectInfo) {
	if err := s.catalog.Put(info.ID, info); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Stringer("object", info.ID).Msg("catalog update failed")
	}
}

// Write writes data into the object at the given logical offset, creating
// the object if it does not exist yet. A zero-length write is a no-op.
func (s *Store) Write(ctx context.Context, id types.ObjectID, off uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if off+uint64(len(data)) < off {
		return fmt.Errorf("%w: offset %d + %d bytes overflows", types.ErrInvalidRange, off, len(data))
	}

	h := s.handle(id)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.loadLocked(ctx, h); err != nil {
		return err
	}

	prevStored := h.idx.StoredBytes()
	existed := h.exists

	plan, err := s.applyWrite(ctx, h, off, data)
	if err != nil {
		h.loaded = false
		return err
	}

	if err := s.commitLocked(ctx, h); err != nil {
		return err
	}

	// Superseded chunks are unreferenced now that the new index is on
	// disk. Removal is best-effort; the sweeper picks up leftovers.
	for _, c := range plan.consumed {
		if err := c.remove(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("chunk", c.id.String()).Msg("removing superseded chunk failed")
		}
	}

	info := h.infoLocked()
	s.updateCatalog(ctx, info)

	WriteOperations.WithLabelValues(plan.kind).Inc()
	WriteBytes.Add(float64(len(data)))
	StoredBytesTotal.Add(float64(info.StoredBytes) - float64(prevStored))
	if !existed {
		ObjectsTotal.Inc()
	}
	return nil
}

// Read returns exactly length bytes from the object at the given offset.
// Gaps read as zeros; reading an unknown object fails with ErrNotFound.
func (s *Store) Read(ctx context.Context, id types.ObjectID, off uint64, length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", types.ErrInvalidRange, length)
	}
	if off+uint64(length) < off {
		return nil, fmt.Errorf("%w: offset %d + %d bytes overflows", types.ErrInvalidRange, off, length)
	}

	h := s.handle(id)
	for {
		h.mu.RLock()
		if h.loaded {
			break
		}
		h.mu.RUnlock()

		h.mu.Lock()
		err := s.loadLocked(ctx, h)
		h.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	defer h.mu.RUnlock()

	if !h.exists {
		return nil, fmt.Errorf("object %s: %w", id, types.ErrNotFound)
	}

	out, err := s.readLocked(ctx, h, off, length)
	if err != nil {
		return nil, err
	}

	ReadOperations.Inc()
	ReadBytes.Add(float64(length))
	return out, nil
}

// Create makes an empty object. It returns true if the object was newly
// created and false if it already existed.
func (s *Store) Create(ctx context.Context, id types.ObjectID) (bool, error) {
	h := s.handle(id)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.loadLocked(ctx, h); err != nil {
		return false, err
	}
	if h.exists {
		return false, nil
	}

	if err := s.commitLocked(ctx, h); err != nil {
		return false, err
	}

	s.updateCatalog(ctx, h.infoLocked())
	ObjectsTotal.Inc()
	return true, nil
}

// Exists reports whether the object is known to the store.
func (s *Store) Exists(ctx context.Context, id types.ObjectID) (bool, error) {
	h := s.handle(id)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.loadLocked(ctx, h); err != nil {
		return false, err
	}
	return h.exists, nil
}

// Delete removes the object's chunks and metadata.
func (s *Store) Delete(ctx context.Context, id types.ObjectID) error {
	h := s.handle(id)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.loadLocked(ctx, h); err != nil {
		return err
	}
	if !h.exists {
		return fmt.Errorf("object %s: %w", id, types.ErrNotFound)
	}

	stored := h.idx.StoredBytes()

	if err := s.backend.DeleteAll(ctx, h.id.Dir()); err != nil {
		h.loaded = false
		return fmt.Errorf("delete object %s: %w", id, err)
	}
	if err := s.catalog.DeleteSync(id); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Stringer("object", id).Msg("catalog delete failed")
	}

	h.idx = index.NewRangeIndex()
	h.exists = false

	ObjectsTotal.Dec()
	StoredBytesTotal.Sub(float64(stored))
	return nil
}

// Stat returns the object's summary, refreshed from its range index.
func (s *Store) Stat(ctx context.Context, id types.ObjectID) (types.ObjectInfo, error) {
	h := s.handle(id)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.loadLocked(ctx, h); err != nil {
		return types.ObjectInfo{}, err
	}
	if !h.exists {
		return types.ObjectInfo{}, fmt.Errorf("object %s: %w", id, types.ErrNotFound)
	}

	info := h.infoLocked()
	if fi, err := s.backend.Stat(ctx, h.id.MetadataKey()); err == nil {
		info.UpdatedAt = fi.ModTime.Unix()
	}
	s.updateCatalog(ctx, info)
	return info, nil
}

// ListObjects walks the id fan-out directories and returns every stored
// object id in ascending order.
func (s *Store) ListObjects(ctx context.Context) ([]types.ObjectID, error) {
	prefixes, err := s.backend.List(ctx, "ids")
	if err != nil {
		return nil, fmt.Errorf("list id prefixes: %w", err)
	}

	var out []types.ObjectID
	for _, p := range prefixes {
		names, err := s.backend.List(ctx, "ids/"+p)
		if err != nil {
			return nil, fmt.Errorf("list ids/%s: %w", p, err)
		}
		for _, name := range names {
			id, err := types.ParseObjectID(name)
			if err != nil {
				continue // ., .., stray files
			}
			out = append(out, id)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

// ListObjectInfos returns the summary of every stored object, served from
// the catalog where possible and rebuilt from object metadata on misses.
func (s *Store) ListObjectInfos(ctx context.Context) ([]types.ObjectInfo, error) {
	ids, err := s.ListObjects(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]types.ObjectInfo, 0, len(ids))
	for _, id := range ids {
		if info, err := s.catalog.Get(id); err == nil {
			infos = append(infos, info)
			continue
		}
		info, err := s.Stat(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ConfigID returns the configured store id, if one has been set.
func (s *Store) ConfigID(ctx context.Context) (types.ObjectID, bool, error) {
	var id types.ObjectID
	data, err := s.backend.ReadFile(ctx, configIDKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return id, false, nil
		}
		return id, false, fmt.Errorf("read config id: %w", err)
	}
	if len(data) != types.ObjectIDSize {
		return id, false, fmt.Errorf("%w: config id has %d bytes", types.ErrCorrupted, len(data))
	}
	copy(id[:], data)
	return id, true, nil
}

// SetConfigID persists the store id.
func (s *Store) SetConfigID(ctx context.Context, id types.ObjectID) error {
	return s.backend.WriteFileAtomic(ctx, configIDKey, id[:])
}

// initializeMetrics restores store-wide gauges from the catalog on open.
func (s *Store) initializeMetrics() {
	var objects, stored float64
	s.catalog.Iterate(func(id types.ObjectID, info types.ObjectInfo) error {
		objects++
		stored += float64(info.StoredBytes)
		return nil
	})
	ObjectsTotal.Set(objects)
	StoredBytesTotal.Set(stored)
}

// isTempKey reports whether a directory entry is a leftover temp file from
// an interrupted atomic replace.
func isTempKey(name string) bool {
	return strings.HasSuffix(name, ".tmp")
}
