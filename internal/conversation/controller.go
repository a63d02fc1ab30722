// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jeranaias/agentchat/internal/cloud"
	"github.com/jeranaias/agentchat/internal/model"
	"github.com/jeranaias/agentchat/internal/store"
)

// =============================================================================
// STATES AND ERRORS
// =============================================================================

// State is the controller's position in the send/regenerate lifecycle.
type State int

const (
	// StateIdle accepts new operations.
	StateIdle State = iota
	// StateSending has issued a completion request, no chunk seen yet.
	StateSending
	// StateStreaming is receiving assistant content chunks.
	StateStreaming
	// StateRegenerating is re-streaming an existing assistant message.
	StateRegenerating
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateRegenerating:
		return "regenerating"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy indicates a stream is already in flight for the active chat.
	ErrBusy = errors.New("a response is already in progress")

	// ErrNoActiveChat indicates the operation needs a loaded chat.
	ErrNoActiveChat = errors.New("no active chat")

	// ErrEmptyContent indicates a required text field was empty.
	ErrEmptyContent = errors.New("content must not be empty")

	// ErrMessageNotFound indicates the message id is not in the transcript.
	ErrMessageNotFound = errors.New("message not found")

	// ErrDefaultAgent indicates an attempt to delete a built-in agent.
	ErrDefaultAgent = errors.New("default agents cannot be deleted")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Streamer produces a streamed completion for a message sequence.
// cloud.Client satisfies this.
type Streamer interface {
	StreamCompletion(
		ctx context.Context,
		messages []cloud.ChatMessage,
		onChunk func(delta string),
		onError func(err error),
		onComplete func(full string),
	) error
}

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// Observer receives a snapshot of the working transcript after every
// mutation, including each streamed chunk.
type Observer func(messages []model.Message)

// Options bundles the controller's collaborators.
type Options struct {
	Agents        *store.AgentStore
	Chats         *store.ChatStore
	Streamer      Streamer
	Clipboard     Clipboard
	HasCredential func() bool
	Observer      Observer
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives one conversation at a time.
//
// Not safe for concurrent use: callers serialize operations per chat, and
// the state guard rejects overlapping streams rather than queueing them.
type Controller struct {
	agents        *store.AgentStore
	chats         *store.ChatStore
	streamer      Streamer
	clipboard     Clipboard
	hasCredential func() bool
	observer      Observer

	state State
	chat  *model.Chat
	agent *model.Agent
}

// New creates a controller in the idle state with no chat loaded.
func New(opts Options) *Controller {
	hasCred := opts.HasCredential
	if hasCred == nil {
		hasCred = func() bool { return true }
	}
	return &Controller{
		agents:        opts.Agents,
		chats:         opts.Chats,
		streamer:      opts.Streamer,
		clipboard:     opts.Clipboard,
		hasCredential: hasCred,
		observer:      opts.Observer,
		state:         StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// ActiveChat returns a deep copy of the working chat, or false when none
// is loaded.
func (c *Controller) ActiveChat() (model.Chat, bool) {
	if c.chat == nil {
		return model.Chat{}, false
	}
	return c.chat.Clone(), true
}

// ActiveAgent returns the agent of the working chat, or false when none.
func (c *Controller) ActiveAgent() (model.Agent, bool) {
	if c.agent == nil {
		return model.Agent{}, false
	}
	return *c.agent, true
}

// Transcript returns a copy of the working transcript.
func (c *Controller) Transcript() []model.Message {
	if c.chat == nil {
		return nil
	}
	out := make([]model.Message, len(c.chat.Messages))
	copy(out, c.chat.Messages)
	return out
}

// publish pushes a transcript snapshot to the observer.
func (c *Controller) publish() {
	if c.observer == nil || c.chat == nil {
		return
	}
	c.observer(c.Transcript())
}

// =============================================================================
// CHAT AND AGENT LIFECYCLE
// =============================================================================

// NewChat starts a fresh empty chat for the given agent, persists it
// immediately, and makes it the working chat.
func (c *Controller) NewChat(agentID string) (model.Chat, error) {
	if c.state != StateIdle {
		return model.Chat{}, ErrBusy
	}
	agent, err := c.agents.Get(agentID)
	if err != nil {
		return model.Chat{}, err
	}

	chat := model.NewChat(agent)
	if err := c.chats.Save(chat); err != nil {
		return model.Chat{}, fmt.Errorf("failed to persist new chat: %w", err)
	}

	c.chat = &chat
	c.agent = &agent
	c.publish()
	return chat.Clone(), nil
}

// LoadChat makes an existing chat the working chat.
func (c *Controller) LoadChat(chatID string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	chat, err := c.chats.Get(chatID)
	if err != nil {
		return err
	}
	agent, err := c.agents.Get(chat.AgentID)
	if err != nil {
		return err
	}
	c.chat = &chat
	c.agent = &agent
	c.publish()
	return nil
}

// OpenAgent loads the agent's most recently updated chat, creating one
// when the agent has none yet.
func (c *Controller) OpenAgent(agentID string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	agent, err := c.agents.Get(agentID)
	if err != nil {
		return err
	}

	chats, err := c.chats.List()
	if err != nil {
		return err
	}
	var matches []model.Chat
	for _, chat := range chats {
		if chat.AgentID == agentID {
			matches = append(matches, chat)
		}
	}
	if len(matches) == 0 {
		_, err := c.NewChat(agentID)
		return err
	}

	// Duplicates can exist; the most recently updated chat wins.
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].UpdatedAt > matches[j].UpdatedAt
	})
	chat := matches[0]
	c.chat = &chat
	c.agent = &agent
	c.publish()
	return nil
}

// ListAgents returns all stored agents.
func (c *Controller) ListAgents() ([]model.Agent, error) {
	return c.agents.List()
}

// ListChats returns all stored chats.
func (c *Controller) ListChats() ([]model.Chat, error) {
	return c.chats.List()
}

// SaveAgent validates and persists an agent.
func (c *Controller) SaveAgent(agent model.Agent) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if err := agent.Validate(); err != nil {
		return err
	}
	agent.Touch()
	if err := c.agents.Save(agent); err != nil {
		return err
	}
	if c.agent != nil && c.agent.ID == agent.ID {
		c.agent = &agent
	}
	return nil
}

// DeleteAgent removes an agent. Built-in agents are protected here; the
// repository itself deletes unconditionally.
func (c *Controller) DeleteAgent(agentID string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	agent, err := c.agents.Get(agentID)
	if err != nil {
		return err
	}
	if agent.IsDefault {
		return fmt.Errorf("%w: %s", ErrDefaultAgent, agent.Name)
	}
	if err := c.agents.Delete(agentID); err != nil {
		return err
	}
	if c.agent != nil && c.agent.ID == agentID {
		c.chat = nil
		c.agent = nil
	}
	return nil
}

// DeleteChat removes a chat, clearing it from the controller if active.
func (c *Controller) DeleteChat(chatID string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if err := c.chats.Delete(chatID); err != nil {
		return err
	}
	if c.chat != nil && c.chat.ID == chatID {
		c.chat = nil
	}
	return nil
}

// =============================================================================
// SEND
// =============================================================================

// Send appends the user's turn and streams the assistant's reply into a
// placeholder message, publishing the transcript after every chunk.
//
// Unmet preconditions (empty input, no working chat or agent, no
// credential) make Send a silent no-op. A stream in flight returns
// ErrBusy. On stream error the placeholder is removed, the chat is not
// persisted, and the error is returned. On completion the finalized chat
// is persisted.
func (c *Controller) Send(ctx context.Context, text, imagePath string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if text == "" && imagePath == "" {
		return nil
	}
	if c.chat == nil || c.agent == nil {
		return nil
	}
	if !c.hasCredential() {
		return nil
	}

	userMsg := model.NewUserMessage(text)
	userMsg.Image = imagePath
	c.chat.AppendMessage(userMsg)

	// Wire context excludes the empty placeholder appended below.
	wire, err := c.wireMessages(c.chat.Messages)
	if err != nil {
		c.chat.RemoveMessage(userMsg.ID)
		return err
	}

	placeholder := model.NewAssistantMessage()
	c.chat.AppendMessage(placeholder)
	c.state = StateSending
	c.publish()

	return c.stream(ctx, wire, placeholder.ID, StateStreaming, func() {
		// Stream failed: the transcript reverts to the user turn only
		c.chat.RemoveMessage(placeholder.ID)
	})
}

// =============================================================================
// REGENERATE
// =============================================================================

// RegenerateMessage re-streams the content of an existing message using
// everything strictly before it as context. The prior content is restored
// if the stream fails. An unknown message id is a silent no-op.
func (c *Controller) RegenerateMessage(ctx context.Context, messageID string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if c.chat == nil || c.agent == nil {
		return nil
	}
	idx := c.chat.MessageIndex(messageID)
	if idx < 0 {
		return nil
	}
	if !c.hasCredential() {
		return nil
	}

	wire, err := c.wireMessages(c.chat.Messages[:idx])
	if err != nil {
		return err
	}

	target := &c.chat.Messages[idx]
	prevContent, prevEdited := target.Content, target.IsEdited
	target.Content = ""
	target.IsEdited = true
	c.state = StateRegenerating
	c.publish()

	return c.stream(ctx, wire, messageID, StateRegenerating, func() {
		target.Content = prevContent
		target.IsEdited = prevEdited
	})
}

// =============================================================================
// STREAM DRIVER
// =============================================================================

// stream runs the completion, concatenating chunks into the message with
// targetID. rollback undoes the in-memory mutation on stream error; the
// chat is persisted only on clean completion.
func (c *Controller) stream(ctx context.Context, wire []cloud.ChatMessage, targetID string, active State, rollback func()) error {
	defer func() {
		c.state = StateIdle
		c.publish()
	}()

	var persistErr error
	streamErr := c.streamer.StreamCompletion(ctx, wire,
		func(delta string) {
			c.state = active
			if msg := c.chat.MessageByID(targetID); msg != nil {
				msg.Content += delta
			}
			c.publish()
		},
		func(err error) {
			rollback()
		},
		func(full string) {
			if msg := c.chat.MessageByID(targetID); msg != nil {
				msg.Content = full
			}
			c.chat.Touch()
			persistErr = c.chats.Save(*c.chat)
		},
	)
	if streamErr != nil {
		return streamErr
	}
	if persistErr != nil {
		return fmt.Errorf("failed to persist chat: %w", persistErr)
	}
	return nil
}

// wireMessages maps transcript messages to the completion request shape,
// prefixing the chat's system prompt. User messages carrying an image file
// become multimodal content parts.
func (c *Controller) wireMessages(messages []model.Message) ([]cloud.ChatMessage, error) {
	wire := make([]cloud.ChatMessage, 0, len(messages)+1)
	if c.chat.SystemPrompt != "" {
		wire = append(wire, cloud.NewSystemMessage(c.chat.SystemPrompt))
	}
	for _, msg := range messages {
		if msg.Image != "" && msg.Role == model.RoleUser {
			m, err := cloud.NewImageMessageFromFile(msg.Content, msg.Image)
			if err != nil {
				return nil, err
			}
			wire = append(wire, m)
			continue
		}
		wire = append(wire, cloud.ChatMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return wire, nil
}

// =============================================================================
// EDIT AND COPY
// =============================================================================

// EditMessage rewrites a message's content in place, marks it edited, and
// persists the single-field change through the repository's targeted
// update rather than re-saving the working transcript wholesale.
func (c *Controller) EditMessage(messageID, newContent string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if newContent == "" {
		return ErrEmptyContent
	}
	if c.chat == nil {
		return ErrNoActiveChat
	}
	msg := c.chat.MessageByID(messageID)
	if msg == nil {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}

	if err := c.chats.UpdateMessageContent(c.chat.ID, messageID, newContent); err != nil {
		return err
	}
	msg.Content = newContent
	msg.IsEdited = true
	c.chat.Touch()
	c.publish()
	return nil
}

// CopyMessage puts text on the clipboard. Failure is recoverable and
// changes no state.
func (c *Controller) CopyMessage(content string) error {
	if c.clipboard == nil {
		return errors.New("clipboard unavailable")
	}
	if err := c.clipboard.WriteText(content); err != nil {
		return fmt.Errorf("failed to copy message: %w", err)
	}
	return nil
}
