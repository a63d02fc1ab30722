// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"path/filepath"
	"testing"
)

// storeFactories builds one of each Store backend against a temp location.
func storeFactories(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStoreWithDir(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("NewFileStoreWithDir failed: %v", err)
	}

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"mem":    NewMemStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

// TestStoreRoundTrip verifies Get/Set/Remove on every backend.
func TestStoreRoundTrip(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			// Absent key
			_, ok, err := store.Get("chats")
			if err != nil {
				t.Fatalf("Get on empty store failed: %v", err)
			}
			if ok {
				t.Error("Absent key should report ok=false")
			}

			// Set then get
			if err := store.Set("chats", `[{"id":"c1"}]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			value, ok, err := store.Get("chats")
			if err != nil || !ok {
				t.Fatalf("Get after Set = (%v, %v), expected value present", ok, err)
			}
			if value != `[{"id":"c1"}]` {
				t.Errorf("Get = %q, expected stored value", value)
			}

			// Overwrite
			if err := store.Set("chats", `[]`); err != nil {
				t.Fatalf("Overwrite failed: %v", err)
			}
			value, _, _ = store.Get("chats")
			if value != `[]` {
				t.Errorf("Get after overwrite = %q, expected %q", value, `[]`)
			}

			// Remove
			if err := store.Remove("chats"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			_, ok, _ = store.Get("chats")
			if ok {
				t.Error("Key should be absent after Remove")
			}

			// Remove of absent key is not an error
			if err := store.Remove("chats"); err != nil {
				t.Errorf("Remove of absent key should be a no-op, got %v", err)
			}
		})
	}
}

// TestStoreKeysIsolated verifies keys don't leak into each other.
func TestStoreKeysIsolated(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store.Set("agents", "A")
			store.Set("chats", "C")
			store.Set("credential", "sk-test")

			for key, want := range map[string]string{
				"agents": "A", "chats": "C", "credential": "sk-test",
			} {
				got, ok, err := store.Get(key)
				if err != nil || !ok || got != want {
					t.Errorf("Get(%q) = (%q, %v, %v), expected %q", key, got, ok, err, want)
				}
			}

			store.Remove("agents")
			if _, ok, _ := store.Get("chats"); !ok {
				t.Error("Removing agents should not affect chats")
			}
		})
	}
}

// TestFileStoreUnsafeKey verifies hostile keys can't escape the base dir.
func TestFileStoreUnsafeKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store, err := NewFileStoreWithDir(dir)
	if err != nil {
		t.Fatalf("NewFileStoreWithDir failed: %v", err)
	}

	key := "../escape"
	if err := store.Set(key, "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	path := store.filePath(key)
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) > 1 && rel[:2] == ".." {
		t.Errorf("Unsafe key mapped outside base dir: %s", path)
	}

	value, ok, err := store.Get(key)
	if err != nil || !ok || value != "v" {
		t.Errorf("Round trip for unsafe key = (%q, %v, %v)", value, ok, err)
	}
}

// TestFileStorePersistence verifies values survive a new store instance.
func TestFileStorePersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")

	first, err := NewFileStoreWithDir(dir)
	if err != nil {
		t.Fatalf("NewFileStoreWithDir failed: %v", err)
	}
	first.Set("agents", "persisted")

	second, err := NewFileStoreWithDir(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	value, ok, err := second.Get("agents")
	if err != nil || !ok || value != "persisted" {
		t.Errorf("Get after reopen = (%q, %v, %v)", value, ok, err)
	}
}

// TestSQLiteStorePersistence verifies values survive reopening the database.
func TestSQLiteStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	first.Set("credential", "sk-123")
	first.Close()

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get("credential")
	if err != nil || !ok || value != "sk-123" {
		t.Errorf("Get after reopen = (%q, %v, %v)", value, ok, err)
	}
}
