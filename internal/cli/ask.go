// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/agentchat/internal/cloud"
	"github.com/jeranaias/agentchat/internal/model"
)

// HandleAsk answers a one-shot prompt. Output streams to stdout as deltas
// arrive; --no-stream waits for the complete reply instead. --agent <id>
// applies that agent's system prompt.
func HandleAsk(app *App, args []string) error {
	var (
		noStream bool
		agentID  string
		words    []string
	)
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--no-stream":
			noStream = true
		case "--agent":
			if i+1 < len(args) {
				i++
				agentID = args[i]
			}
		default:
			words = append(words, args[i])
		}
	}

	prompt := strings.Join(words, " ")
	if prompt == "" {
		return errors.New("usage: agentchat ask [--no-stream] [--agent <id>] <prompt>")
	}
	if !app.Client.IsConfigured() {
		return errors.New("no API key configured; run: agentchat credential set")
	}

	systemPrompt := ""
	if agentID != "" {
		agent, err := app.Agents.Get(agentID)
		if err != nil {
			return err
		}
		systemPrompt = agent.SystemPrompt
	}

	messages := make([]cloud.ChatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, cloud.NewSystemMessage(systemPrompt))
	}
	messages = append(messages, cloud.NewUserMessage(prompt))

	ctx := context.Background()

	if noStream {
		reply, err := app.Client.Complete(ctx, messages)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	}

	chunks, errs := app.Client.StreamChan(ctx, messages)
	for chunk := range chunks {
		fmt.Print(chunk.Content())
	}
	fmt.Println()
	if err := <-errs; err != nil {
		return err
	}
	return nil
}

// printTranscript writes a chat transcript in a readable form.
func printTranscript(messages []model.Message) {
	for _, msg := range messages {
		marker := ""
		if msg.IsEdited {
			marker = " (edited)"
		}
		fmt.Fprintf(os.Stdout, "[%s]%s\n%s\n\n", msg.Role.DisplayName(), marker, msg.Content)
	}
}
