// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/agentchat/internal/cloud"
	"github.com/jeranaias/agentchat/internal/kvstore"
	"github.com/jeranaias/agentchat/internal/model"
	"github.com/jeranaias/agentchat/internal/store"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeStreamer replays canned chunks or fails, recording what it was sent.
type fakeStreamer struct {
	chunks []string
	err    error
	seen   [][]cloud.ChatMessage
	onCall func() // runs mid-stream, for re-entrancy tests
}

func (f *fakeStreamer) StreamCompletion(
	ctx context.Context,
	messages []cloud.ChatMessage,
	onChunk func(string),
	onError func(error),
	onComplete func(string),
) error {
	f.seen = append(f.seen, messages)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		if onError != nil {
			onError(f.err)
		}
		return f.err
	}
	var full strings.Builder
	for _, chunk := range f.chunks {
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if onComplete != nil {
		onComplete(full.String())
	}
	return nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

// testController wires a controller over in-memory stores with one agent
// and an empty chat loaded.
func testController(t *testing.T, streamer Streamer) (*Controller, *store.ChatStore, model.Chat) {
	t.Helper()
	agents := store.NewAgentStore(kvstore.NewMemStore())
	chats := store.NewChatStore(kvstore.NewMemStore())

	seeded, err := agents.Initialize()
	require.NoError(t, err)

	ctrl := New(Options{
		Agents:   agents,
		Chats:    chats,
		Streamer: streamer,
	})
	chat, err := ctrl.NewChat(seeded[0].ID)
	require.NoError(t, err)
	return ctrl, chats, chat
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_HappyPath(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"Hi", " there"}}
	ctrl, chats, chat := testController(t, streamer)

	require.NoError(t, ctrl.Send(context.Background(), "hello", ""))
	assert.Equal(t, StateIdle, ctrl.State())

	persisted, err := chats.Get(chat.ID)
	require.NoError(t, err)
	require.Len(t, persisted.Messages, 2)
	assert.Equal(t, model.RoleUser, persisted.Messages[0].Role)
	assert.Equal(t, "hello", persisted.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, persisted.Messages[1].Role)
	assert.Equal(t, "Hi there", persisted.Messages[1].Content)
}

func TestSend_WireExcludesPlaceholder(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"ok"}}
	ctrl, _, _ := testController(t, streamer)

	require.NoError(t, ctrl.Send(context.Background(), "hello", ""))

	require.Len(t, streamer.seen, 1)
	wire := streamer.seen[0]
	// system prompt + the user turn, no empty assistant placeholder
	require.Len(t, wire, 2)
	assert.Equal(t, "system", wire[0].Role)
	assert.Equal(t, "user", wire[1].Role)
	assert.Equal(t, "hello", wire[1].Content)
}

func TestSend_ErrorRollsBackPlaceholder(t *testing.T) {
	streamErr := errors.New("connection reset")
	streamer := &fakeStreamer{err: streamErr}
	ctrl, chats, chat := testController(t, streamer)

	err := ctrl.Send(context.Background(), "hello", "")
	require.ErrorIs(t, err, streamErr)
	assert.Equal(t, StateIdle, ctrl.State())

	// Working transcript keeps only the user turn
	transcript := ctrl.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, model.RoleUser, transcript[0].Role)

	// Nothing was persisted
	persisted, err := chats.Get(chat.ID)
	require.NoError(t, err)
	assert.Empty(t, persisted.Messages)
}

func TestSend_PreconditionsAreSilentNoOps(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"x"}}
	ctrl, _, _ := testController(t, streamer)

	// Empty input
	require.NoError(t, ctrl.Send(context.Background(), "", ""))
	assert.Empty(t, ctrl.Transcript())
	assert.Empty(t, streamer.seen)

	// Missing credential, with a chat and agent loaded
	agents := store.NewAgentStore(kvstore.NewMemStore())
	seeded, err := agents.Initialize()
	require.NoError(t, err)
	noCred := New(Options{
		Agents:        agents,
		Chats:         store.NewChatStore(kvstore.NewMemStore()),
		Streamer:      streamer,
		HasCredential: func() bool { return false },
	})
	_, err = noCred.NewChat(seeded[0].ID)
	require.NoError(t, err)
	require.NoError(t, noCred.Send(context.Background(), "hello", ""))
	assert.Empty(t, streamer.seen)
	assert.Empty(t, noCred.Transcript())
}

func TestSend_RejectsReentrance(t *testing.T) {
	var reentrant error
	streamer := &fakeStreamer{chunks: []string{"x"}}
	ctrl, _, _ := testController(t, streamer)
	streamer.onCall = func() {
		reentrant = ctrl.Send(context.Background(), "again", "")
	}

	require.NoError(t, ctrl.Send(context.Background(), "hello", ""))
	assert.ErrorIs(t, reentrant, ErrBusy)
}

func TestSend_ObserverSeesIncrementalGrowth(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"a", "b", "c"}}
	agents := store.NewAgentStore(kvstore.NewMemStore())
	chats := store.NewChatStore(kvstore.NewMemStore())
	seeded, err := agents.Initialize()
	require.NoError(t, err)

	var assistantViews []string
	ctrl := New(Options{
		Agents:   agents,
		Chats:    chats,
		Streamer: streamer,
		Observer: func(messages []model.Message) {
			if len(messages) == 2 && messages[1].Role == model.RoleAssistant {
				assistantViews = append(assistantViews, messages[1].Content)
			}
		},
	})
	_, err = ctrl.NewChat(seeded[0].ID)
	require.NoError(t, err)

	require.NoError(t, ctrl.Send(context.Background(), "go", ""))
	assert.Equal(t, []string{"", "a", "ab", "abc", "abc"}, assistantViews)
}

// =============================================================================
// REGENERATE
// =============================================================================

// seedTranscript sends one exchange so the chat has user + assistant turns.
func seedTranscript(t *testing.T, ctrl *Controller, streamer *fakeStreamer) []model.Message {
	t.Helper()
	streamer.chunks = []string{"first answer"}
	require.NoError(t, ctrl.Send(context.Background(), "question", ""))
	transcript := ctrl.Transcript()
	require.Len(t, transcript, 2)
	return transcript
}

func TestRegenerate_ReplacesContent(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, chats, chat := testController(t, streamer)
	transcript := seedTranscript(t, ctrl, streamer)

	streamer.chunks = []string{"better", " answer"}
	require.NoError(t, ctrl.RegenerateMessage(context.Background(), transcript[1].ID))

	persisted, err := chats.Get(chat.ID)
	require.NoError(t, err)
	require.Len(t, persisted.Messages, 2)
	assert.Equal(t, "better answer", persisted.Messages[1].Content)
	assert.True(t, persisted.Messages[1].IsEdited)
}

func TestRegenerate_ContextIsMessagesBeforeTarget(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, _, _ := testController(t, streamer)
	transcript := seedTranscript(t, ctrl, streamer)

	streamer.seen = nil
	streamer.chunks = []string{"x"}
	require.NoError(t, ctrl.RegenerateMessage(context.Background(), transcript[1].ID))

	require.Len(t, streamer.seen, 1)
	wire := streamer.seen[0]
	// system prompt + user turn only; the target itself is excluded
	require.Len(t, wire, 2)
	assert.Equal(t, "system", wire[0].Role)
	assert.Equal(t, "user", wire[1].Role)
}

func TestRegenerate_ErrorRestoresPriorContent(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, chats, chat := testController(t, streamer)
	transcript := seedTranscript(t, ctrl, streamer)

	streamer.chunks = nil
	streamer.err = errors.New("boom")
	err := ctrl.RegenerateMessage(context.Background(), transcript[1].ID)
	require.Error(t, err)

	got := ctrl.Transcript()
	require.Len(t, got, 2)
	assert.Equal(t, "first answer", got[1].Content)
	assert.False(t, got[1].IsEdited)

	// Persisted copy still carries the original exchange
	persisted, err := chats.Get(chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "first answer", persisted.Messages[1].Content)
}

func TestRegenerate_UnknownMessageIsNoOp(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, _, _ := testController(t, streamer)
	seedTranscript(t, ctrl, streamer)

	streamer.seen = nil
	require.NoError(t, ctrl.RegenerateMessage(context.Background(), "missing"))
	assert.Empty(t, streamer.seen)
}

// =============================================================================
// EDIT AND COPY
// =============================================================================

func TestEditMessage(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, chats, chat := testController(t, streamer)
	transcript := seedTranscript(t, ctrl, streamer)

	require.NoError(t, ctrl.EditMessage(transcript[0].ID, "fixed"))

	persisted, err := chats.Get(chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", persisted.Messages[0].Content)
	assert.True(t, persisted.Messages[0].IsEdited)
	// Sibling untouched, order preserved
	assert.Equal(t, "first answer", persisted.Messages[1].Content)
	assert.False(t, persisted.Messages[1].IsEdited)
}

func TestEditMessage_Validation(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, _, _ := testController(t, streamer)
	transcript := seedTranscript(t, ctrl, streamer)

	assert.ErrorIs(t, ctrl.EditMessage(transcript[0].ID, ""), ErrEmptyContent)
	assert.ErrorIs(t, ctrl.EditMessage("missing", "x"), ErrMessageNotFound)
}

func TestCopyMessage(t *testing.T) {
	clip := &fakeClipboard{}
	ctrl := New(Options{Clipboard: clip})

	require.NoError(t, ctrl.CopyMessage("copied text"))
	assert.Equal(t, "copied text", clip.text)

	clip.err = errors.New("no display")
	err := ctrl.CopyMessage("again")
	require.Error(t, err)
	assert.Equal(t, StateIdle, ctrl.State())
}

// =============================================================================
// AGENT AND CHAT LIFECYCLE
// =============================================================================

func TestDeleteAgent_ProtectsDefaults(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, _, _ := testController(t, streamer)

	agents, err := ctrl.ListAgents()
	require.NoError(t, err)
	require.NotEmpty(t, agents)

	err = ctrl.DeleteAgent(agents[0].ID)
	assert.ErrorIs(t, err, ErrDefaultAgent)

	// Custom agents delete fine
	custom := model.NewAgent("Mine", "d", "You are mine.", "edit", "#123456")
	require.NoError(t, ctrl.SaveAgent(custom))
	require.NoError(t, ctrl.DeleteAgent(custom.ID))
}

func TestAgentMutationsRejectedWhileStreaming(t *testing.T) {
	ctrl, _, _ := testController(t, &fakeStreamer{})
	ctrl.state = StateStreaming

	custom := model.NewAgent("Mine", "d", "You are mine.", "edit", "#123456")
	assert.ErrorIs(t, ctrl.SaveAgent(custom), ErrBusy)
	assert.ErrorIs(t, ctrl.DeleteAgent(model.DefaultChatAgentID), ErrBusy)
}

func TestSaveAgent_Validates(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, _, _ := testController(t, streamer)

	bad := model.NewAgent("", "d", "prompt", "edit", "#123456")
	assert.Error(t, ctrl.SaveAgent(bad))
}

func TestOpenAgent_PicksMostRecentChat(t *testing.T) {
	streamer := &fakeStreamer{}
	agents := store.NewAgentStore(kvstore.NewMemStore())
	chats := store.NewChatStore(kvstore.NewMemStore())
	seeded, err := agents.Initialize()
	require.NoError(t, err)

	agent, err := agents.Get(seeded[0].ID)
	require.NoError(t, err)

	older := model.NewChat(agent)
	older.UpdatedAt = 1000
	newer := model.NewChat(agent)
	newer.UpdatedAt = 2000
	require.NoError(t, chats.Save(older))
	require.NoError(t, chats.Save(newer))

	ctrl := New(Options{Agents: agents, Chats: chats, Streamer: streamer})
	require.NoError(t, ctrl.OpenAgent(agent.ID))

	active, ok := ctrl.ActiveChat()
	require.True(t, ok)
	assert.Equal(t, newer.ID, active.ID)
}

func TestOpenAgent_CreatesWhenNone(t *testing.T) {
	streamer := &fakeStreamer{}
	agents := store.NewAgentStore(kvstore.NewMemStore())
	chats := store.NewChatStore(kvstore.NewMemStore())
	seeded, err := agents.Initialize()
	require.NoError(t, err)

	ctrl := New(Options{Agents: agents, Chats: chats, Streamer: streamer})
	require.NoError(t, ctrl.OpenAgent(seeded[0].ID))

	active, ok := ctrl.ActiveChat()
	require.True(t, ok)
	assert.Equal(t, seeded[0].ID, active.AgentID)
	assert.Empty(t, active.Messages)

	// The fresh chat was persisted immediately
	all, err := chats.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNewChat_SnapshotsSystemPrompt(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, _, chat := testController(t, streamer)

	agent, ok := ctrl.ActiveAgent()
	require.True(t, ok)
	assert.Equal(t, agent.SystemPrompt, chat.SystemPrompt)
	assert.Equal(t, "Chat with "+agent.Name, chat.Title)
}

func TestDeleteChat_ClearsActive(t *testing.T) {
	streamer := &fakeStreamer{}
	ctrl, _, chat := testController(t, streamer)

	require.NoError(t, ctrl.DeleteChat(chat.ID))
	_, ok := ctrl.ActiveChat()
	assert.False(t, ok)
}
