// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"strings"

	"github.com/jeranaias/agentchat/internal/kvstore"
)

// LoadCredential returns the stored bearer token, or "" when none is set.
// A missing credential is not an error: it disables Send at the controller.
func LoadCredential(kv kvstore.Store) (string, error) {
	raw, ok, err := kv.Get(credentialKey)
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(raw), nil
}

// SaveCredential stores the bearer token. An empty token removes it.
func SaveCredential(kv kvstore.Store, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		if err := kv.Remove(credentialKey); err != nil {
			return fmt.Errorf("failed to clear credential: %w", err)
		}
		return nil
	}
	if err := kv.Set(credentialKey, token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}
