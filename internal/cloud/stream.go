// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// =============================================================================
// STREAMING TYPES
// =============================================================================

// doneMarker terminates the SSE stream.
const doneMarker = "[DONE]"

// maxLineSize bounds a single SSE line (1MB).
const maxLineSize = 1024 * 1024

// StreamChunk is one parsed SSE payload from the completion stream.
type StreamChunk struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice is one choice within a streamed chunk.
type StreamChoice struct {
	Delta struct {
		Content string `json:"content"`
		Role    string `json:"role,omitempty"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

// Content returns the first choice's delta content.
func (c *StreamChunk) Content() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// FinishReason returns the first choice's finish reason, if any.
func (c *StreamChunk) FinishReason() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason
	}
	return ""
}

// =============================================================================
// CALLBACK STREAMING
// =============================================================================

// StreamCompletion performs a streaming completion request.
//
// onChunk fires for every non-empty content delta, in arrival order.
// Afterwards exactly one terminal callback fires exactly once: onComplete
// with the concatenation of all deltas when the stream ends cleanly
// (the [DONE] marker or EOF), or onError when the request cannot be made,
// the server answers non-2xx, the context is cancelled, or the connection
// drops mid-stream. Malformed payload lines are logged and skipped; they
// never terminate the stream.
//
// Nil callbacks are allowed and simply not invoked. The returned error
// mirrors what onError received, nil on success.
func (c *Client) StreamCompletion(
	ctx context.Context,
	messages []ChatMessage,
	onChunk func(delta string),
	onError func(err error),
	onComplete func(full string),
) error {
	fail := func(err error) error {
		if onError != nil {
			onError(err)
		}
		return err
	}

	if !c.IsConfigured() {
		return fail(ErrNoCredential)
	}

	// The limiter waits under the request timeout so a saturated limiter
	// cannot stall the call past the configured budget.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return fail(err)
	}

	resp, err := c.openStream(ctx, messages)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	var full strings.Builder
	if err := c.scanStream(ctx, resp.Body, func(delta string) {
		full.WriteString(delta)
		if onChunk != nil {
			onChunk(delta)
		}
	}); err != nil {
		return fail(err)
	}

	if onComplete != nil {
		onComplete(full.String())
	}
	return nil
}

// openStream sends the streaming request and returns the live response.
// Non-2xx responses are drained, parsed, and returned as typed errors.
func (c *Client) openStream(ctx context.Context, messages []ChatMessage) (*http.Response, error) {
	bodyBytes, err := json.Marshal(completionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		resp.Body.Close()
		return nil, handleErrorResponse(resp.StatusCode, body)
	}
	return resp, nil
}

// scanStream reads SSE lines from body until the done marker or EOF,
// calling emit with each non-empty content delta. Each data line is parsed
// independently; a line that fails to parse is skipped, not fatal.
func (c *Client) scanStream(ctx context.Context, body io.Reader, emit func(delta string)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Accept both "data: <json>" and bare "<json>" lines; some
		// proxies strip the SSE field name.
		data := line
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		} else if !strings.HasPrefix(line, "{") {
			// Comments, id:/event: fields
			continue
		}
		if data == doneMarker {
			return nil
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			logSkippedChunk(err)
			continue
		}
		if delta := chunk.Content(); delta != "" {
			emit(delta)
		}
	}

	if err := scanner.Err(); err != nil {
		// Prefer the cancellation cause when the context killed the body
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("read error: %w", err)
	}
	// EOF without [DONE] still counts as a clean end
	return nil
}

// =============================================================================
// CHANNEL STREAMING
// =============================================================================

// StreamChan performs a streaming completion and delivers chunks over a
// channel, for consumers that pull rather than register callbacks. The
// chunk channel is closed when the stream ends either way; a failure is
// sent on the error channel before close. Cancelling ctx abandons the
// stream promptly.
func (c *Client) StreamChan(ctx context.Context, messages []ChatMessage) (<-chan StreamChunk, <-chan error) {
	chunks := make(chan StreamChunk, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		err := c.StreamCompletion(ctx, messages,
			func(delta string) {
				chunk := StreamChunk{Choices: []StreamChoice{{}}}
				chunk.Choices[0].Delta.Content = delta
				select {
				case chunks <- chunk:
				case <-ctx.Done():
				}
			},
			nil, nil)

		if err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
		}
	}()

	return chunks, errs
}

// StreamAccumulate streams a completion but returns only the final
// concatenated reply. Useful where progress display is not needed but the
// endpoint behaves better in streaming mode.
func (c *Client) StreamAccumulate(ctx context.Context, messages []ChatMessage) (string, error) {
	var full string
	err := c.StreamCompletion(ctx, messages, nil, nil, func(s string) { full = s })
	return full, err
}
