// agentchat - terminal LLM chat with agent presets.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentchat/internal/cli"
	"github.com/jeranaias/agentchat/internal/config"
	"github.com/jeranaias/agentchat/internal/model"
	"github.com/jeranaias/agentchat/internal/ui"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdVersion:
		fmt.Printf("agentchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	case cli.CmdHelp:
		fmt.Print(cli.Usage)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	app, err := cli.NewApp(cfg)
	if err != nil {
		fatal(err)
	}

	switch cmd {
	case cli.CmdAsk:
		err = cli.HandleAsk(app, args)
	case cli.CmdAgents:
		err = cli.HandleAgents(app, args)
	case cli.CmdChats:
		err = cli.HandleChats(app, args)
	case cli.CmdCredential:
		err = cli.HandleCredential(app, args)
	default:
		err = runTUI(app)
	}
	if err != nil {
		fatal(err)
	}
}

// runTUI wires the controller to the chat view and runs the program.
func runTUI(app *cli.App) error {
	transcripts := make(chan []model.Message, 64)
	ctrl := app.Controller(func(messages []model.Message) {
		// Dropping a snapshot under backpressure only costs a frame; the
		// view re-reads the transcript when the send finishes
		select {
		case transcripts <- messages:
		default:
		}
	})

	agents, err := ctrl.ListAgents()
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		return fmt.Errorf("no agents available")
	}
	if err := ctrl.OpenAgent(agents[0].ID); err != nil {
		return err
	}

	program := tea.NewProgram(ui.New(ctrl, transcripts), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
