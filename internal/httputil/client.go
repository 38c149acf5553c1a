// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the gateway client and the
// chat transport. Nothing here retries: every call is attempted once.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// MaxErrorBody bounds how much of a failed response body is kept for
// diagnostics.
const MaxErrorBody = 4 << 10

// DefaultTimeout applies when HTTPConfig.Timeout is zero.
var DefaultTimeout = 60 * time.Second

// NewClient returns an http.Client with the configured timeout.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// PostJSON marshals body and POSTs it to url. header entries are set on the
// request after Content-Type. The caller closes the response body.
func PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// ReadErrorBody reads at most MaxErrorBody bytes of resp.Body and returns
// them trimmed.
func ReadErrorBody(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
	return strings.TrimSpace(string(data))
}

// Drain discards the rest of resp.Body and closes it so the connection can be
// reused.
func Drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
