package index

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/zphrs/twizzler-object-store/pkg/utils"
)

type LevelDBIndexer[K comparable, V any] struct {
	db         *leveldb.DB
	dbDir      string
	keyToBytes func(K) []byte
	bytesToKey func([]byte) (K, error)

	// Write options for different durability levels
	writeOpts     *opt.WriteOptions // Normal writes (buffered)
	writeOptsSync *opt.WriteOptions // Durable writes (fsync)
}

// Serialize struct to bytes
func serialize[T any](v T) ([]byte, error) {
	buf := utils.SyncPoolGetBuffer()
	defer utils.SyncPoolPutBuffer(buf)
	if err := gob.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Deserialize bytes to struct
func deserialize[T any](data []byte) (T, error) {
	var v T
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v)
	return v, err
}

func NewLevelDBIndexer[K comparable, V any](
	dbDir string,
	opts *opt.Options,
	keyToBytes func(K) []byte,
	bytesToKey func([]byte) (K, error)) (Indexer[K, V], error) {
	m := &LevelDBIndexer[K, V]{
		dbDir:         dbDir,
		keyToBytes:    keyToBytes,
		bytesToKey:    bytesToKey,
		writeOpts:     &opt.WriteOptions{Sync: false}, // Buffered writes (fast)
		writeOptsSync: &opt.WriteOptions{Sync: true},  // Durable writes (fsync)
	}
	db, err := leveldb.OpenFile(dbDir, opts)
	if err != nil && !errors.IsCorrupted(err) {
		return nil, err
	}
	if errors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(dbDir, opts)
		if err != nil {
			return nil, err
		}
	}
	m.db = db
	return m, nil
}

func (m *LevelDBIndexer[K, V]) Put(key K, value V) error {
	data, err := serialize(value)
	if err != nil {
		return err
	}
	return m.db.Put(m.keyToBytes(key), data, m.writeOpts)
}

// PutSync writes a key-value pair with fsync for durability.
func (m *LevelDBIndexer[K, V]) PutSync(key K, value V) error {
	data, err := serialize(value)
	if err != nil {
		return err
	}
	return m.db.Put(m.keyToBytes(key), data, m.writeOptsSync)
}

func (m *LevelDBIndexer[K, V]) Get(key K) (V, error) {
	data, err := m.db.Get(m.keyToBytes(key), nil)
	if err != nil {
		var zero V
		return zero, err
	}
	v, err := deserialize[V](data)
	if err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

func (m *LevelDBIndexer[K, V]) Delete(key K) error {
	return m.db.Delete(m.keyToBytes(key), m.writeOpts)
}

// DeleteSync deletes a key with fsync for durability.
func (m *LevelDBIndexer[K, V]) DeleteSync(key K) error {
	return m.db.Delete(m.keyToBytes(key), m.writeOptsSync)
}

func (m *LevelDBIndexer[K, V]) Close() error {
	return m.db.Close()
}

func (m *LevelDBIndexer[K, V]) Iterate(f func(key K, value V) error) error {
	iter := m.db.NewIterator(nil, nil)
	defer iter.Release()

	for iter.Next() {
		key, err := m.bytesToKey(iter.Key())
		if err != nil {
			return err
		}
		value, err := deserialize[V](iter.Value())
		if err != nil {
			return err
		}
		if err := f(key, value); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Sync forces all buffered writes to disk.
func (m *LevelDBIndexer[K, V]) Sync() error {
	// LevelDB has no explicit sync method; an empty synced batch forces one.
	batch := new(leveldb.Batch)
	return m.db.Write(batch, m.writeOptsSync)
}

func (m *LevelDBIndexer[K, V]) Destroy() error {
	if err := m.Close(); err != nil {
		return err
	}
	return os.RemoveAll(m.dbDir)
}
