// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// =============================================================================
// AGENT TYPE
// =============================================================================

// Agent is a named persona preset bundling a system prompt and display
// metadata. Default agents are seeded on first run and protected from
// deletion at the controller layer.
type Agent struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	IsDefault    bool   `json:"isDefault,omitempty"`
	CreatedAt    int64  `json:"createdAt"` // epoch milliseconds
	UpdatedAt    int64  `json:"updatedAt"` // epoch milliseconds
}

// NewAgent creates an agent with a generated ID and current timestamps.
// Validate before persisting.
func NewAgent(name, description, systemPrompt, icon, color string) Agent {
	now := NowMillis()
	return Agent{
		ID:           NewID(),
		Name:         name,
		Description:  description,
		SystemPrompt: systemPrompt,
		Icon:         icon,
		Color:        color,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Touch bumps UpdatedAt to now, keeping it monotonically non-decreasing.
func (a *Agent) Touch() {
	if now := NowMillis(); now > a.UpdatedAt {
		a.UpdatedAt = now
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// AgentIcons is the closed set of icon tokens an agent may carry.
var AgentIcons = map[string]bool{
	"chat-bubble-outline": true,
	"edit":                true,
	"code":                true,
	"lightbulb-outline":   true,
	"school":              true,
	"translate":           true,
	"science":             true,
	"brush":               true,
	"music-note":          true,
	"fitness-center":      true,
}

// Validation errors for Agent fields.
var (
	ErrEmptyName         = errors.New("agent name is empty")
	ErrEmptySystemPrompt = errors.New("agent system prompt is empty")
	ErrUnknownIcon       = errors.New("unknown agent icon")
	ErrBadColor          = errors.New("agent color is not a #RRGGBB token")
)

// Validate checks the agent's required fields and display tokens.
// Icon must come from AgentIcons; Color must be a #RRGGBB hex token.
func (a Agent) Validate() error {
	if a.Name == "" {
		return ErrEmptyName
	}
	if a.SystemPrompt == "" {
		return ErrEmptySystemPrompt
	}
	if !AgentIcons[a.Icon] {
		return fmt.Errorf("%w: %q", ErrUnknownIcon, a.Icon)
	}
	if !validHexColor(a.Color) {
		return fmt.Errorf("%w: %q", ErrBadColor, a.Color)
	}
	return nil
}

// validHexColor reports whether s is a "#RRGGBB" hex color token.
func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// =============================================================================
// DEFAULT AGENTS
// =============================================================================

// Default agent ids, stable across installs.
const (
	DefaultChatAgentID   = "default-chat"
	DefaultWriterAgentID = "default-writer"
	DefaultCoderAgentID  = "default-coder"
)

// DefaultAgents returns the three preset agents seeded on first run.
// Fresh timestamps are assigned on each call; ids are fixed.
func DefaultAgents() []Agent {
	now := NowMillis()
	return []Agent{
		{
			ID:           DefaultChatAgentID,
			Name:         "Chat Assistant",
			Description:  "A friendly AI assistant for general conversation and help",
			SystemPrompt: "You are a helpful AI assistant. You can help with various tasks including answering questions, writing code, and analyzing data.",
			Icon:         "chat-bubble-outline",
			Color:        "#6B4EFF",
			IsDefault:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           DefaultWriterAgentID,
			Name:         "Content Writer",
			Description:  "Specialized in writing and editing various types of content",
			SystemPrompt: "You are a professional content writer. You excel at creating engaging, well-structured content including articles, blog posts, social media content, and more. Focus on clarity, engagement, and the target audience's needs.",
			Icon:         "edit",
			Color:        "#00C853",
			IsDefault:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           DefaultCoderAgentID,
			Name:         "Code Expert",
			Description:  "Expert in programming and technical problem-solving",
			SystemPrompt: "You are an expert programmer. You excel at writing clean, efficient code, debugging problems, and explaining technical concepts clearly. Provide code examples when helpful and focus on best practices.",
			Icon:         "code",
			Color:        "#FF6B4E",
			IsDefault:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}
