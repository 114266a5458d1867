// Package assistant answers shopper questions through a hosted
// generative-language model.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrNotConfigured = errors.New("assistant endpoint not configured")
	ErrEmptyReply    = errors.New("assistant returned no text")
)

const DefaultSystemPrompt = `You are the shopping assistant for Digital Shop Nepal, an online store for electronics, fashion and home goods. ` +
	`Prices are in Nepalese rupees. Answer briefly and helpfully. ` +
	`Use "* " bullets for lists and **bold** lines for headings. ` +
	`If you do not know something about an order, tell the customer to check the Orders page.`

const maxReplyBytes = 1 << 20

type Client struct {
	endpoint     string
	apiKey       string
	systemPrompt string
	client       *http.Client
}

func NewClient(endpoint, apiKey, systemPrompt string, client *http.Client) *Client {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Client{
		endpoint:     endpoint,
		apiKey:       apiKey,
		systemPrompt: systemPrompt,
		client:       client,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Ask sends the prompt prefixed with the system prompt and returns the raw
// reply text of the first candidate.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if c.apiKey != "" {
		q := target.Query()
		q.Set("key", c.apiKey)
		target.RawQuery = q.Encode()
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: c.systemPrompt + "\n\nCustomer: " + message}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReplyBytes))
		return "", fmt.Errorf("assistant endpoint returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var text strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyReply
	}
	return text.String(), nil
}
