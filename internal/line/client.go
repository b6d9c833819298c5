// Package line is a minimal LINE Messaging API client: reply delivery and
// webhook signature verification. Only the surface this bot needs.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const replyPath = "/v2/bot/message/reply"

// Messenger sends replies back through the messaging gateway.
type Messenger interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Client talks to the LINE Messaging API with a channel access token.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// Reply sends a single text message using the event's reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	payload, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshal reply request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+replyPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line reply request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return fmt.Errorf("line reply non-success status=%d body=%s", resp.StatusCode, string(body))
	}

	slog.DebugContext(ctx, "line reply delivered",
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}
