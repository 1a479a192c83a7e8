// Package slackweb implements the outbound SurfaceAPI boundary against the
// Slack Web API. It is a thin transport: documents arrive already
// serialized, and only the identifiers the engine needs come back.
package slackweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/marquee-kit/marquee/pkg/ports"
)

const defaultBaseURL = "https://slack.com/api"

// Client calls the Slack Web API with a bot token.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API base URL (for tests or proxies).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a Slack Web API client.
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	View    struct {
		ID string `json:"id"`
	} `json:"view"`
}

func (c *Client) call(ctx context.Context, method string, body map[string]any) (*apiResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !ar.OK {
		return nil, fmt.Errorf("%s: slack error: %s", method, ar.Error)
	}
	return &ar, nil
}

// docFields unpacks a serialized document into a request body.
func docFields(doc json.RawMessage) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return fields, nil
}

// PostMessage posts a new message document to a channel.
func (c *Client) PostMessage(ctx context.Context, doc json.RawMessage, channelID string) (ports.MessageRef, error) {
	body, err := docFields(doc)
	if err != nil {
		return ports.MessageRef{}, err
	}
	body["channel"] = channelID

	resp, err := c.call(ctx, "chat.postMessage", body)
	if err != nil {
		return ports.MessageRef{}, err
	}
	return ports.MessageRef{ChannelID: resp.Channel, TS: resp.TS}, nil
}

// UpdateMessage replaces the document of an existing message.
func (c *Client) UpdateMessage(ctx context.Context, doc json.RawMessage, channelID, ts string) error {
	body, err := docFields(doc)
	if err != nil {
		return err
	}
	body["channel"] = channelID
	body["ts"] = ts

	_, err = c.call(ctx, "chat.update", body)
	return err
}

// OpenView opens a modal with the interaction's trigger token.
func (c *Client) OpenView(ctx context.Context, doc json.RawMessage, triggerID string) (string, error) {
	resp, err := c.call(ctx, "views.open", map[string]any{
		"trigger_id": triggerID,
		"view":       doc,
	})
	if err != nil {
		return "", err
	}
	return resp.View.ID, nil
}

// UpdateView replaces the document of an open modal.
func (c *Client) UpdateView(ctx context.Context, doc json.RawMessage, viewID string) error {
	_, err := c.call(ctx, "views.update", map[string]any{
		"view_id": viewID,
		"view":    doc,
	})
	return err
}

// PublishHome publishes a user's home panel.
func (c *Client) PublishHome(ctx context.Context, doc json.RawMessage, userID string) (string, error) {
	resp, err := c.call(ctx, "views.publish", map[string]any{
		"user_id": userID,
		"view":    doc,
	})
	if err != nil {
		return "", err
	}
	return resp.View.ID, nil
}

// UpdateHome republishes an existing home panel. Slack keys home publishes
// by user, but the engine tracks the panel by view id; the view id is sent
// for concurrency control.
func (c *Client) UpdateHome(ctx context.Context, doc json.RawMessage, viewID string) error {
	_, err := c.call(ctx, "views.update", map[string]any{
		"view_id": viewID,
		"view":    doc,
	})
	return err
}
