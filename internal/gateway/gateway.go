// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway calls an OpenAI-style chat-completion endpoint. Each
// Complete call makes at most one request: no retries, no streaming.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/portfolio-engine/internal/httputil"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// Defaults for the hosted gateway.
const (
	DefaultEndpoint    = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultModel       = "google/gemini-2.5-flash"
	DefaultTemperature = 0.7
)

// ConfigurationError reports a missing credential or endpoint. It is raised
// before any network call.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gateway %s is not configured", e.Field)
}

// UpstreamError reports a non-success status from the gateway.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gateway returned %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError reports a success status whose body lacks
// choices[0].message.content.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed gateway response: " + e.Reason
}

// Completer produces one assistant reply for a message list.
type Completer interface {
	Complete(ctx context.Context, messages []types.Message) (string, error)
}

// Client is the HTTP Completer.
type Client struct {
	cfg         types.GatewayConfig
	temperature float64
	client      *http.Client
}

// New returns a Client. An empty Model and a nil Temperature take the
// defaults; an empty Endpoint or APIKey is reported by Complete.
func New(cfg types.GatewayConfig) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &Client{cfg: cfg, temperature: temperature, client: httputil.NewClient(cfg.HTTPConfig)}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string { return c.cfg.Model }

type completionRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends messages in order and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []types.Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &ConfigurationError{Field: "api key"}
	}
	if c.cfg.Endpoint == "" {
		return "", &ConfigurationError{Field: "endpoint"}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.UserAgent != "" {
		header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.PostJSON(ctx, c.client, c.cfg.Endpoint, header, completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("calling gateway: %w", err)
	}
	defer httputil.Drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: httputil.ReadErrorBody(resp)}
	}

	var body completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &MalformedResponseError{Reason: err.Error()}
	}
	if len(body.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "no choices"}
	}
	msg := body.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &MalformedResponseError{Reason: "choice has no message content"}
	}
	return *msg.Content, nil
}
