// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jeranaias/agentchat/internal/cloud"
	"github.com/jeranaias/agentchat/internal/config"
	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/kvstore"
	"github.com/jeranaias/agentchat/internal/store"
)

// App holds the wired application dependencies shared by the TUI and the
// subcommand handlers.
type App struct {
	Config *config.Config
	KV     kvstore.Store
	Agents *store.AgentStore
	Chats  *store.ChatStore
	Client *cloud.Client
}

// NewApp builds the dependency graph from configuration: persistent store
// backend, repositories with seeded defaults, and the completion client
// using the stored credential (config key as fallback).
func NewApp(cfg *config.Config) (*App, error) {
	kv, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	agents := store.NewAgentStore(kv)
	if _, err := agents.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize agents: %w", err)
	}
	chats := store.NewChatStore(kv)

	credential, err := store.LoadCredential(kv)
	if err != nil {
		return nil, err
	}
	if credential == "" {
		credential = cfg.API.Key
	}

	client := cloud.NewClient(credential).
		WithBaseURL(cfg.API.BaseURL).
		WithModel(cfg.API.Model).
		WithTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second).
		WithRateLimit(cfg.API.RequestsPerMinute)

	return &App{
		Config: cfg,
		KV:     kv,
		Agents: agents,
		Chats:  chats,
		Client: client,
	}, nil
}

// openStore selects the persistent store backend from configuration.
func openStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		dir := cfg.Storage.Dir
		if dir == "" {
			base, err := config.ConfigDir()
			if err != nil {
				return nil, err
			}
			dir = base
		}
		return kvstore.NewSQLiteStore(filepath.Join(dir, "agentchat.db"))
	default:
		if cfg.Storage.Dir != "" {
			return kvstore.NewFileStoreWithDir(cfg.Storage.Dir)
		}
		return kvstore.NewFileStore()
	}
}

// Controller builds a conversation controller over the app's stores,
// streaming through the cloud client and copying via the OS clipboard.
func (a *App) Controller(observer conversation.Observer) *conversation.Controller {
	return conversation.New(conversation.Options{
		Agents:        a.Agents,
		Chats:         a.Chats,
		Streamer:      a.Client,
		Clipboard:     conversation.SystemClipboard{},
		HasCredential: func() bool { return a.Client.IsConfigured() },
		Observer:      observer,
	})
}
