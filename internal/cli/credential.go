// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/agentchat/internal/store"
)

// HandleCredential manages the stored API key: set, clear, show.
// The key is read from stdin rather than argv so it stays out of shell
// history and process listings.
func HandleCredential(app *App, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "set":
		fmt.Fprint(os.Stderr, "API key: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key := strings.TrimSpace(line)
		if key == "" {
			return fmt.Errorf("empty key, nothing stored")
		}
		if err := store.SaveCredential(app.KV, key); err != nil {
			return err
		}
		fmt.Println("credential stored")
		return nil

	case "clear":
		if err := store.SaveCredential(app.KV, ""); err != nil {
			return err
		}
		fmt.Println("credential cleared")
		return nil

	case "show":
		key, err := store.LoadCredential(app.KV)
		if err != nil {
			return err
		}
		if key == "" {
			fmt.Println("no credential stored")
		} else {
			fmt.Printf("credential stored (%d chars)\n", len(key))
		}
		return nil

	default:
		return fmt.Errorf("unknown credential subcommand: %s", sub)
	}
}
