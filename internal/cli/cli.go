// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements command parsing and the non-TUI subcommands.
package cli

import "strings"

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies a top-level subcommand.
type Command int

const (
	// CmdTUI launches the interactive chat interface (the default).
	CmdTUI Command = iota
	// CmdAsk sends a single prompt and prints the reply.
	CmdAsk
	// CmdAgents manages agent presets.
	CmdAgents
	// CmdChats manages stored chats.
	CmdChats
	// CmdCredential manages the stored API credential.
	CmdCredential
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Parse maps raw arguments (without the program name) to a command and
// its remaining arguments. No arguments means the TUI.
func Parse(args []string) (Command, []string) {
	if len(args) == 0 {
		return CmdTUI, nil
	}

	cmd := strings.ToLower(args[0])
	rest := args[1:]

	switch cmd {
	case "tui":
		return CmdTUI, rest
	case "ask":
		return CmdAsk, rest
	case "agents", "agent":
		return CmdAgents, rest
	case "chats", "chat":
		return CmdChats, rest
	case "credential", "cred", "key":
		return CmdCredential, rest
	case "version", "-v", "--version":
		return CmdVersion, rest
	case "help", "-h", "--help":
		return CmdHelp, rest
	default:
		return CmdHelp, args
	}
}

// Usage is the top-level help text.
const Usage = `agentchat - terminal LLM chat with agent presets

Usage:
  agentchat                    launch the chat TUI
  agentchat ask <prompt>       one-shot question (add --no-stream to wait for the full reply)
  agentchat agents list        list agent presets
  agentchat agents show <id>   show one agent
  agentchat agents delete <id> delete a custom agent
  agentchat chats list         list stored chats
  agentchat chats show <id>    print a chat transcript
  agentchat chats delete <id>  delete a chat
  agentchat credential set     store the API key (reads from stdin)
  agentchat credential clear   remove the stored API key
  agentchat credential show    show whether a key is stored
  agentchat version            print version information

Configuration: ~/.agentchat/config.toml
Environment:   AGENTCHAT_API_KEY, AGENTCHAT_BASE_URL, AGENTCHAT_MODEL
`
