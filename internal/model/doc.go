// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for agents, chats, and messages.
//
// The JSON field names match the persisted wire layout: one serialized array
// per storage key, camelCase fields, timestamps as integer epoch milliseconds.
// Existing data written by earlier builds loads unchanged.
package model
