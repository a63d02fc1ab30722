// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jeranaias/agentchat/internal/kvstore"
	"github.com/jeranaias/agentchat/internal/model"
)

// =============================================================================
// CHAT STORE
// =============================================================================

// ChatStore persists the chat collection.
type ChatStore struct {
	mu sync.Mutex
	kv kvstore.Store
}

// NewChatStore creates a chat repository over the given storage.
func NewChatStore(kv kvstore.Store) *ChatStore {
	return &ChatStore{kv: kv}
}

// List returns all persisted chats (empty slice if none).
func (s *ChatStore) List() ([]model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the chat with the given id.
func (s *ChatStore) Get(id string) (model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load()
	if err != nil {
		return model.Chat{}, err
	}
	for i := range chats {
		if chats[i].ID == id {
			return chats[i], nil
		}
	}
	return model.Chat{}, fmt.Errorf("%w: %s", ErrChatNotFound, id)
}

// Save upserts the chat by id: replaces the matching entry, or appends if
// absent. The caller supplies UpdatedAt.
func (s *ChatStore) Save(chat model.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range chats {
		if chats[i].ID == chat.ID {
			chats[i] = chat
			replaced = true
			break
		}
	}
	if !replaced {
		chats = append(chats, chat)
	}

	return s.persist(chats)
}

// Delete removes the chat by id. Deleting an unknown id is a no-op.
func (s *ChatStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load()
	if err != nil {
		return err
	}

	kept := chats[:0]
	for _, c := range chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}

	return s.persist(kept)
}

// UpdateMessageContent rewrites one message's content in place: sets the new
// content, marks the message edited, and bumps the chat's UpdatedAt.
// A missing chat or message id is a silent no-op; the persisted collection
// is left untouched.
func (s *ChatStore) UpdateMessageContent(chatID, messageID, newContent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.load()
	if err != nil {
		return err
	}

	for i := range chats {
		if chats[i].ID != chatID {
			continue
		}
		msg := chats[i].MessageByID(messageID)
		if msg == nil {
			return nil
		}
		msg.Content = newContent
		msg.IsEdited = true
		chats[i].Touch()
		return s.persist(chats)
	}

	return nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// load reads the whole collection. Caller must hold the mutex.
func (s *ChatStore) load() ([]model.Chat, error) {
	raw, ok, err := s.kv.Get(chatsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load chats: %w", err)
	}
	if !ok || raw == "" {
		return []model.Chat{}, nil
	}

	var chats []model.Chat
	if err := json.Unmarshal([]byte(raw), &chats); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	return chats, nil
}

// persist writes the whole collection. Caller must hold the mutex.
func (s *ChatStore) persist(chats []model.Chat) error {
	data, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("failed to encode chats: %w", err)
	}
	if err := s.kv.Set(chatsKey, string(data)); err != nil {
		return fmt.Errorf("failed to store chats: %w", err)
	}
	return nil
}
