// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
)

// HandleAgents manages agent presets: list, show <id>, delete <id>.
func HandleAgents(app *App, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		agents, err := app.Agents.List()
		if err != nil {
			return err
		}
		for _, a := range agents {
			tag := ""
			if a.IsDefault {
				tag = " (default)"
			}
			fmt.Printf("%-16s %s%s\n", a.ID, a.Name, tag)
			if a.Description != "" {
				fmt.Printf("%-16s %s\n", "", a.Description)
			}
		}
		return nil

	case "show":
		if len(args) < 2 {
			return errors.New("usage: agentchat agents show <id>")
		}
		agent, err := app.Agents.Get(args[1])
		if err != nil {
			return err
		}
		fmt.Printf("id:            %s\n", agent.ID)
		fmt.Printf("name:          %s\n", agent.Name)
		fmt.Printf("description:   %s\n", agent.Description)
		fmt.Printf("icon:          %s\n", agent.Icon)
		fmt.Printf("color:         %s\n", agent.Color)
		fmt.Printf("default:       %t\n", agent.IsDefault)
		fmt.Printf("system prompt: %s\n", agent.SystemPrompt)
		return nil

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: agentchat agents delete <id>")
		}
		// Default-agent protection lives at the controller layer
		ctrl := app.Controller(nil)
		if err := ctrl.DeleteAgent(args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted agent %s\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown agents subcommand: %s", sub)
	}
}
