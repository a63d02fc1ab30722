// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the chat session state machine.
//
// A Controller holds one active chat and its agent, drives the streaming
// completion client when the user sends or regenerates a message, and
// persists finished transcripts through the repositories. Callers are
// expected to serialize actions per chat; a second Send while a stream is
// in flight is rejected by the state guard rather than queued.
package conversation
