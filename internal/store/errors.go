// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "errors"

// Storage keys, one serialized JSON array (or bare string) per key.
const (
	agentsKey     = "agents"
	chatsKey      = "chats"
	credentialKey = "credential"
)

// Lookup errors. Use errors.Is to check for these.
var (
	// ErrAgentNotFound is returned when an agent id has no persisted entry.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrChatNotFound is returned when a chat id has no persisted entry.
	ErrChatNotFound = errors.New("chat not found")
)
