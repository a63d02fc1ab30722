// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"time"
)

// HandleChats manages stored chats: list, show <id>, delete <id>.
func HandleChats(app *App, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		chats, err := app.Chats.List()
		if err != nil {
			return err
		}
		for _, c := range chats {
			updated := time.UnixMilli(c.UpdatedAt).Format("2006-01-02 15:04")
			fmt.Printf("%s  %-30s %3d messages  %s\n", c.ID, c.Title, len(c.Messages), updated)
		}
		return nil

	case "show":
		if len(args) < 2 {
			return errors.New("usage: agentchat chats show <id>")
		}
		chat, err := app.Chats.Get(args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", chat.Title)
		printTranscript(chat.Messages)
		return nil

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: agentchat chats delete <id>")
		}
		if err := app.Chats.Delete(args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted chat %s\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown chats subcommand: %s", sub)
	}
}
