// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/agentchat/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists each key as one file under a base directory.
// Writes are atomic with fsync, so a crash never leaves a torn value.
type FileStore struct {
	// BaseDir is the directory holding the key files.
	// Default: ~/.agentchat/store/
	BaseDir string
}

// NewFileStore creates a file store under the user's home directory.
func NewFileStore() (*FileStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFileStoreWithDir(filepath.Join(homeDir, ".agentchat", "store"))
}

// NewFileStoreWithDir creates a file store with a custom directory.
func NewFileStoreWithDir(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{BaseDir: baseDir}, nil
}

// Get returns the value for key, or ("", false, nil) if absent.
func (s *FileStore) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set stores value under key atomically.
func (s *FileStore) Set(key, value string) error {
	if err := util.AtomicWriteFile(s.filePath(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *FileStore) Remove(key string) error {
	if err := os.Remove(s.filePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

// filePath maps a key to its file. Keys that are not simple identifiers are
// hex-encoded so a hostile key can't escape the base directory.
func (s *FileStore) filePath(key string) string {
	if !safeKey(key) {
		key = "enc-" + hex.EncodeToString([]byte(key))
	}
	return filepath.Join(s.BaseDir, key+".json")
}

// safeKey reports whether key is a plain [a-z0-9_-] identifier.
func safeKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "enc-") {
		return false
	}
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
