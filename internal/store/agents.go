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
// AGENT STORE
// =============================================================================

// AgentStore persists the agent collection.
type AgentStore struct {
	mu sync.Mutex
	kv kvstore.Store
}

// NewAgentStore creates an agent repository over the given storage.
func NewAgentStore(kv kvstore.Store) *AgentStore {
	return &AgentStore{kv: kv}
}

// Initialize returns the persisted agents, seeding the three default presets
// when none exist yet. Idempotent after the first successful seeding.
func (s *AgentStore) Initialize() ([]model.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(agents) > 0 {
		return agents, nil
	}

	agents = model.DefaultAgents()
	if err := s.persist(agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// List returns all persisted agents (empty slice if none).
func (s *AgentStore) List() ([]model.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the agent with the given id.
func (s *AgentStore) Get(id string) (model.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents, err := s.load()
	if err != nil {
		return model.Agent{}, err
	}
	for _, a := range agents {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Agent{}, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
}

// Save upserts the agent by id: replaces the matching entry, or appends if
// absent. No fields are set automatically; the caller supplies UpdatedAt.
func (s *AgentStore) Save(agent model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range agents {
		if agents[i].ID == agent.ID {
			agents[i] = agent
			replaced = true
			break
		}
	}
	if !replaced {
		agents = append(agents, agent)
	}

	return s.persist(agents)
}

// Delete removes the agent by id regardless of IsDefault; the protection
// rule for default agents lives at the controller layer. Deleting an
// unknown id is a no-op.
func (s *AgentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents, err := s.load()
	if err != nil {
		return err
	}

	kept := agents[:0]
	for _, a := range agents {
		if a.ID != id {
			kept = append(kept, a)
		}
	}

	return s.persist(kept)
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// load reads the whole collection. Caller must hold the mutex.
func (s *AgentStore) load() ([]model.Agent, error) {
	raw, ok, err := s.kv.Get(agentsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load agents: %w", err)
	}
	if !ok || raw == "" {
		return []model.Agent{}, nil
	}

	var agents []model.Agent
	if err := json.Unmarshal([]byte(raw), &agents); err != nil {
		return nil, fmt.Errorf("failed to decode agents: %w", err)
	}
	return agents, nil
}

// persist writes the whole collection. Caller must hold the mutex.
func (s *AgentStore) persist(agents []model.Agent) error {
	data, err := json.Marshal(agents)
	if err != nil {
		return fmt.Errorf("failed to encode agents: %w", err)
	}
	if err := s.kv.Set(agentsKey, string(data)); err != nil {
		return fmt.Errorf("failed to store agents: %w", err)
	}
	return nil
}
