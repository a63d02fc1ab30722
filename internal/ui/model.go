// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// transcriptMsg is a snapshot of the working transcript, one per mutation.
type transcriptMsg []model.Message

// sendDoneMsg reports the outcome of a Send or Regenerate.
type sendDoneMsg struct {
	err error
}

// statusMsg is a transient status line notice.
type statusMsg string

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl        *conversation.Controller
	transcripts <-chan []model.Message
	theme       Theme

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	transcript []model.Message
	agents     []model.Agent
	agentIdx   int

	width   int
	height  int
	ready   bool
	sending bool
	status  string
	lastErr error
}

// New creates the chat view. transcripts must be the channel fed by the
// controller's observer; the update loop drains it.
func New(ctrl *conversation.Controller, transcripts <-chan []model.Message) Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	theme := DefaultTheme()
	sp.Style = theme.Spinner

	m := Model{
		ctrl:        ctrl,
		transcripts: transcripts,
		theme:       theme,
		viewport:    viewport.New(80, 20),
		input:       input,
		spin:        sp,
	}
	if agents, err := ctrl.ListAgents(); err == nil {
		m.agents = agents
		if active, ok := ctrl.ActiveAgent(); ok {
			for i, a := range agents {
				if a.ID == active.ID {
					m.agentIdx = i
				}
			}
		}
	}
	m.transcript = ctrl.Transcript()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		listenTranscripts(m.transcripts),
	)
}

// listenTranscripts waits for the next transcript snapshot.
func listenTranscripts(ch <-chan []model.Message) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return nil
		}
		return transcriptMsg(snapshot)
	}
}

// sendCmd runs the controller's Send off the update loop.
func sendCmd(ctrl *conversation.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: ctrl.Send(context.Background(), text, "")}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		m.input.Width = msg.Width - 6
		m.renderer = newRenderer(msg.Width)
		m.ready = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.sending {
				return m, nil
			}
			m.input.Reset()
			m.sending = true
			m.lastErr = nil
			m.status = ""
			return m, tea.Batch(sendCmd(m.ctrl, text), m.spin.Tick)

		case "ctrl+n":
			if m.sending || len(m.agents) == 0 {
				return m, nil
			}
			if _, err := m.ctrl.NewChat(m.agents[m.agentIdx].ID); err != nil {
				m.lastErr = err
			}
			return m, listenSkip(m)

		case "tab":
			if m.sending || len(m.agents) == 0 {
				return m, nil
			}
			m.agentIdx = (m.agentIdx + 1) % len(m.agents)
			if err := m.ctrl.OpenAgent(m.agents[m.agentIdx].ID); err != nil {
				m.lastErr = err
			}
			return m, listenSkip(m)

		case "ctrl+y":
			if content, ok := m.lastAssistantContent(); ok {
				if err := m.ctrl.CopyMessage(content); err != nil {
					m.lastErr = err
				} else {
					m.status = "copied"
				}
			}
			return m, nil
		}

	case transcriptMsg:
		m.transcript = msg
		m.refreshViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, listenTranscripts(m.transcripts))

	case sendDoneMsg:
		m.sending = false
		m.lastErr = msg.err
		// The observer channel may have dropped the final snapshot under
		// backpressure; Send has returned, so re-read the transcript.
		m.transcript = m.ctrl.Transcript()
		m.refreshViewport()
		m.viewport.GotoBottom()

	case statusMsg:
		m.status = string(msg)

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// listenSkip refreshes the local transcript after a synchronous controller
// call already published it; the channel copy is drained by the listener.
func listenSkip(m Model) tea.Cmd {
	return func() tea.Msg {
		return transcriptMsg(m.ctrl.Transcript())
	}
}

// lastAssistantContent finds the newest non-empty assistant message.
func (m Model) lastAssistantContent() (string, bool) {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		if m.transcript[i].Role == model.RoleAssistant && m.transcript[i].Content != "" {
			return m.transcript[i].Content, true
		}
	}
	return "", false
}

// =============================================================================
// VIEW
// =============================================================================

// newRenderer builds a glamour renderer sized to the terminal.
func newRenderer(width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
}

func (m *Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return m.theme.StatusBar.Render("No messages yet. Say something.")
	}

	agent, _ := m.ctrl.ActiveAgent()

	var b strings.Builder
	for i, msg := range m.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		edited := ""
		if msg.IsEdited {
			edited = " " + m.theme.EditedMarker.Render("(edited)")
		}
		switch msg.Role {
		case model.RoleUser:
			b.WriteString(m.theme.UserLabel.Render("You") + edited + "\n")
			b.WriteString(m.theme.UserText.Render(msg.Content) + "\n")
		case model.RoleAssistant:
			b.WriteString(m.theme.agentLabel(agent.Name, agent.Color) + edited + "\n")
			b.WriteString(m.renderMarkdown(msg.Content) + "\n")
		}
	}
	return b.String()
}

// renderMarkdown renders assistant content, falling back to plain text.
// While a stream is in flight the raw text is shown; glamour re-rendering
// every chunk is too expensive and flickers.
func (m *Model) renderMarkdown(content string) string {
	if m.sending || m.renderer == nil || content == "" {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	agent, _ := m.ctrl.ActiveAgent()
	title := m.theme.Title.Render("agentchat") + " " + m.theme.AgentName.Render(agent.Name)

	inputView := m.theme.InputBorder.Width(m.width - 2).Render(m.input.View())
	if m.sending {
		inputView = m.theme.InputBorder.Width(m.width - 2).
			Render(m.spin.View() + " waiting for response...")
	}

	status := m.theme.StatusBar.Render(fmt.Sprintf(
		"%s send  %s new chat  %s agent  %s copy  %s quit",
		m.theme.ShortcutKey.Render("enter"),
		m.theme.ShortcutKey.Render("ctrl+n"),
		m.theme.ShortcutKey.Render("tab"),
		m.theme.ShortcutKey.Render("ctrl+y"),
		m.theme.ShortcutKey.Render("esc"),
	))
	if m.status != "" {
		status += "  " + m.theme.StatusBar.Render(m.status)
	}
	if m.lastErr != nil {
		status = m.theme.Error.Render("error: " + m.lastErr.Error())
	}

	return strings.Join([]string{title, m.viewport.View(), inputView, status}, "\n")
}
