// Copyright 2026 Twizzler Object Store Authors
// SPDX-License-Identifier: Apache-2.0

// Package backend provides storage backend implementations.
// All backends implement the types.Backend interface.
package backend

import (
	"fmt"
	"sync"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

// Registry holds registered backend factories
var (
	registryMu sync.RWMutex
	registry   = make(map[types.StorageType]Factory)
)

// Factory creates a Backend from config
type Factory func(cfg types.BackendConfig) (types.Backend, error)

// Register adds a factory for a storage type
func Register(t types.StorageType, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = f
}

// New creates a Backend from config
func New(cfg types.BackendConfig) (types.Backend, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
	return f(cfg)
}
