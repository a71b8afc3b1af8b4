// Package client holds the HTTP collaborators the session core talks to:
// route generation, favorites persistence, and identity lookup. Each client
// maps the wire contract onto the error taxonomy the session layer reacts to,
// so transports stay swappable behind the session interfaces.
package client

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

	"github.com/Mengran777/GaiaPath/internal/types"
)

// TokenSource yields the current bearer credential, or "" when signed out.
type TokenSource interface {
	Token() string
}

// Config carries the shared client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type base struct {
	logger  *slog.Logger
	httpc   *http.Client
	baseURL string
	tokens  TokenSource
}

func newBase(cfg Config, tokens TokenSource, logger *slog.Logger) base {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return base{
		logger:  logger,
		httpc:   &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  tokens,
	}
}

// do issues a JSON request and returns the raw response body for 2xx
// statuses. 401 surfaces as types.ErrAuthExpired; every other non-2xx becomes
// a types.TransportError carrying the server's error message when one is
// present.
func (b *base) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := b.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpc.Do(req)
	if err != nil {
		return nil, &types.TransportError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.TransportError{Status: resp.StatusCode, Message: "read response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, types.ErrAuthExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &types.TransportError{Status: resp.StatusCode, Message: serverMessage(raw)}
	}
	return raw, nil
}

// serverMessage pulls the {"error": "..."} message out of an error body,
// falling back to a generic label when the body is not in that shape.
func serverMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return "unexpected server response"
}
