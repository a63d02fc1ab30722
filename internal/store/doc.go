// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the agent and chat repositories.
//
// Each repository keeps its whole collection as one JSON array under a
// single storage key and mutates it with a full read-modify-write cycle:
// load all, change one entry, store all. A per-collection mutex serializes
// those cycles so concurrent callers can't lose updates; the load-all /
// store-all pattern is not atomic on its own.
package store
