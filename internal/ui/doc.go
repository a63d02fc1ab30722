// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal chat interface.
//
// The Bubble Tea model renders the active transcript in a viewport with a
// text input below. Streamed assistant chunks arrive as transcript
// snapshots published by the conversation controller and forwarded over a
// channel into the update loop, so the viewport grows as the model talks.
// Send is disabled while a response is in flight.
package ui
