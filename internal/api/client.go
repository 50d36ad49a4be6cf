// Package api is a typed client for the MarketPulse backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries a per-request ULID for log correlation.
const RequestIDHeader = "X-Request-ID"

const maxErrorBody = 64 << 10

// Client talks to the backend under baseURL + "/api".
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the transport timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u.String(),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  "pulse",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one request.
type call struct {
	body   any
	out    any
	method string
	path   string
	auth   string
	op     string
	// credentialed marks login/register: rejections there are authentication
	// failures rather than authorization failures.
	credentialed bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	if cl.body != nil {
		encoded, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", cl.op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+"/api"+cl.path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", cl.op, err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.auth != "" {
		req.Header.Set("Authorization", cl.auth)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Request failed",
			"op", cl.op,
			"request_id", requestID,
			"error", err)
		return &common.TransientRequestError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("Request completed",
		"op", cl.op,
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if cl.out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
			return &common.TransientRequestError{
				Op:  cl.op,
				Err: fmt.Errorf("failed to decode response: %w", err),
			}
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := parseDetail(raw)

	switch {
	case cl.credentialed && resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &common.AuthenticationError{Message: detail, Status: resp.StatusCode}
	case !cl.credentialed && common.IsUnauthorizedStatus(resp.StatusCode):
		return &common.AuthorizationError{Status: resp.StatusCode, Detail: detail}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &common.ValidationError{Message: detail}
	default:
		return &common.TransientRequestError{Op: cl.op, Status: resp.StatusCode, Detail: detail}
	}
}

// parseDetail extracts the human-readable message of an error body. The
// backend sends {"detail": "..."}; request validation failures send a list of
// {"msg": "..."} objects instead.
func parseDetail(raw []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
