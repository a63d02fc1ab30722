// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kvstore provides the persistent key-value storage boundary.
//
// The repositories treat storage as a generic mapping from string key to
// string value. Two durable backends are provided (file-per-key with atomic
// writes, and SQLite) plus an in-memory store for tests.
package kvstore

import "sync"

// Store is a persistent mapping from string key to string value.
//
// Get returns (value, true, nil) when the key exists and ("", false, nil)
// when it does not; the error is reserved for storage failures. Remove of
// an absent key is not an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// =============================================================================
// IN-MEMORY STORE
// =============================================================================

// MemStore is an in-memory Store, used in tests and as a scratch backend.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the value for key.
func (s *MemStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *MemStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
