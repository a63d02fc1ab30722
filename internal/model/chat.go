// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat holds a persisted conversation transcript tied to one agent.
//
// Messages are kept in insertion order, which is chronological order; the
// sequence is only ever appended to or mutated element-wise, never reordered.
type Chat struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	SystemPrompt string    `json:"systemPrompt"`
	AgentID      string    `json:"agentId"`
	CreatedAt    int64     `json:"createdAt"` // epoch milliseconds
	UpdatedAt    int64     `json:"updatedAt"` // epoch milliseconds
}

// NewChat creates an empty chat scoped to the given agent.
// The agent's system prompt is snapshotted into the chat.
func NewChat(agent Agent) Chat {
	now := NowMillis()
	return Chat{
		ID:           NewID(),
		Title:        "Chat with " + agent.Name,
		Messages:     []Message{},
		SystemPrompt: agent.SystemPrompt,
		AgentID:      agent.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AppendMessage appends a message and bumps UpdatedAt.
func (c *Chat) AppendMessage(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.Touch()
}

// MessageByID returns a pointer into the transcript for the message with the
// given id, or nil if absent.
func (c *Chat) MessageByID(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// MessageIndex returns the index of the message with the given id, or -1.
func (c *Chat) MessageIndex(id string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveMessage removes a message by id. Returns true if a message was removed.
func (c *Chat) RemoveMessage(id string) bool {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			c.Touch()
			return true
		}
	}
	return false
}

// MessageCount returns the number of messages in the transcript.
func (c *Chat) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if the transcript has no messages.
func (c *Chat) IsEmpty() bool {
	return len(c.Messages) == 0
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// Touch bumps UpdatedAt to now. UpdatedAt is monotonically non-decreasing:
// if the clock reads earlier than the stored value, the stored value wins.
func (c *Chat) Touch() {
	if now := NowMillis(); now > c.UpdatedAt {
		c.UpdatedAt = now
	}
}

// =============================================================================
// SERIALIZATION HELPERS
// =============================================================================

// Preview returns a short single-line preview from the first user message.
func (c *Chat) Preview() string {
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser && c.Messages[i].Content != "" {
			line := strings.ReplaceAll(c.Messages[i].Content, "\n", " ")
			line = strings.ReplaceAll(line, "\r", "")
			return truncate(line, 80)
		}
	}
	return ""
}

// Clone creates a deep copy of the chat, including the transcript.
func (c *Chat) Clone() Chat {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return clone
}
