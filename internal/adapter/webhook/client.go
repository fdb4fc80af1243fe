// Package webhook posts bulletin messages to chat webhook URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client implements notify.Poster over plain HTTP.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a webhook delivery client with a per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// payload is the message body chat webhook endpoints expect.
type payload struct {
	Content string `json:"content"`
}

// Post sends content to hookURL as a JSON webhook message. Any non-2xx
// response is an error; the caller decides whether that matters.
func (c *Client) Post(ctx context.Context, hookURL, content string) error {
	body, err := json.Marshal(payload{Content: content})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
