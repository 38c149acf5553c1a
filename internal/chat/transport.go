// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/portfolio-engine/internal/httputil"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// ErrMissingResponse reports a 200 reply without a response field.
var ErrMissingResponse = errors.New("chat reply has no response field")

// RemoteError is a non-200 reply from a chat endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("chat endpoint returned %d: %s", e.StatusCode, e.Message)
}

// HTTPTransport posts requests to a running chat endpoint.
type HTTPTransport struct {
	URL    string
	Client *http.Client
}

// Send posts req and decodes {response} or {error}.
func (t *HTTPTransport) Send(ctx context.Context, req types.ChatRequest) (string, error) {
	resp, err := httputil.PostJSON(ctx, t.Client, t.URL, nil, req)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", t.URL, err)
	}
	defer httputil.Drain(resp)

	if resp.StatusCode != http.StatusOK {
		var body types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return "", &RemoteError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	var body struct {
		Response *string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if body.Response == nil {
		return "", ErrMissingResponse
	}
	return *body.Response, nil
}

// ProxyTransport calls a Proxy in process, for the CLI and tests.
type ProxyTransport struct {
	Proxy *Proxy
}

// Send routes to PaperChat when req carries a paper, Research otherwise.
func (t ProxyTransport) Send(ctx context.Context, req types.ChatRequest) (string, error) {
	if req.Paper != nil {
		return t.Proxy.PaperChat(ctx, req)
	}
	return t.Proxy.Research(ctx, req)
}
