// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the OpenRouter chat completion client.
//
// OpenRouter exposes many LLM providers behind a single OpenAI-compatible
// API. This package provides a one-shot completion call and a streaming
// variant that parses Server-Sent Events line by line, delivering content
// deltas through callbacks or a channel.
//
// # Usage
//
// Create a client with a credential and stream a completion:
//
//	client := cloud.NewClient(apiKey).WithModel("google/gemini-2.0-flash-001")
//	err := client.StreamCompletion(ctx, messages,
//	    func(delta string) { fmt.Print(delta) },
//	    func(err error) { log.Printf("stream failed: %v", err) },
//	    func(full string) { log.Printf("done: %d chars", len(full)) },
//	)
//
// Exactly one of the error and completion callbacks fires per stream,
// exactly once. All requests use TLS 1.2+ and a shared pooled transport.
package cloud
