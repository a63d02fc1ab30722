// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styled components of the chat view.
type Theme struct {
	Title        lipgloss.Style
	AgentName    lipgloss.Style
	UserLabel    lipgloss.Style
	UserText     lipgloss.Style
	AgentLabel   lipgloss.Style
	EditedMarker lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	Error        lipgloss.Style
	InputBorder  lipgloss.Style
	Spinner      lipgloss.Style
}

// DefaultTheme builds the default styling.
func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#6B4EFF")).
			Padding(0, 1),
		AgentName: lipgloss.NewStyle().
			Bold(true),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00C853")),
		UserText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0")),
		AgentLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6B4EFF")),
		EditedMarker: lipgloss.NewStyle().
			Faint(true).
			Italic(true),
		StatusBar: lipgloss.NewStyle().
			Faint(true),
		ShortcutKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B4E")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5252")),
		InputBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B4EFF")).
			Padding(0, 1),
		Spinner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B4EFF")),
	}
}

// agentLabel styles an agent's name with its configured hex color.
func (t Theme) agentLabel(name, color string) string {
	style := t.AgentLabel
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style.Render(name)
}
