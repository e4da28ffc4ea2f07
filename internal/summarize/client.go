// Package summarize adapts extracted turn text into requests against an
// external summarization service and returns the resulting short label.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chatnav/chatnav/internal/textutil"
)

const promptTemplate = "User's Prompt:\n%s\nAssistant's Answer:\n%s"

const defaultTimeout = 60 * time.Second

// Client talks to a text-in/text-out summarization endpoint. A nil client is
// a valid "service unavailable" value for callers.
type Client struct {
	Endpoint  string
	APIKey    string
	Model     string
	ElideMax  int
	ElideHalf int
	HTTP      *http.Client
}

type summarizeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

// BuildRequestText formats a turn's user and assistant text under the fixed
// template, eliding each side independently so oversized turns stay within
// the service's input budget.
func BuildRequestText(userText, assistantText string, max, half int) string {
	return fmt.Sprintf(promptTemplate,
		textutil.Elide(userText, max, half),
		textutil.Elide(assistantText, max, half))
}

// Summarize sends the turn text to the service and returns its short label.
// Transport failures and explicit error responses are surfaced as errors,
// never as empty summaries; an empty summary in a success response is passed
// through for the caller to ignore.
func (c *Client) Summarize(ctx context.Context, userText, assistantText string) (string, error) {
	payload, err := json.Marshal(summarizeRequest{
		Text:  BuildRequestText(userText, assistantText, c.ElideMax, c.ElideHalf),
		Model: c.Model,
	})
	if err != nil {
		return "", fmt.Errorf("encode summarize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build summarize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read summarize response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("summarize service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed summarizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode summarize response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("summarize service error: %s", parsed.Error)
	}
	return strings.TrimSpace(parsed.Summary), nil
}
