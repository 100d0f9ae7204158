// Package apiclient is the single choke point for outbound calls to the
// Baidu OpenAPI. It executes instrumented GET requests and normalizes
// transport and HTTP failures into one provider-unavailable error class.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "baiduauth/1.0"
)

// Response carries the raw provider response body and status code.
type Response struct {
	Body       string
	StatusCode int
}

// RequestOptions customize a single request.
type RequestOptions struct {
	// Query parameters appended to the URL.
	Query url.Values
	// Headers set on the request. Use DefaultHeaders as a base.
	Headers http.Header
	// Timeout overrides the client default for this call.
	Timeout time.Duration
}

// Client executes GET requests against the provider.
type Client struct {
	http    *http.Client
	log     *slog.Logger
	timeout time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the underlying transport. Useful for tests with
// httptest servers or custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the default per-request timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a provider API client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultHeaders returns the standard headers for provider calls:
// the client User-Agent and the requested Accept value.
func DefaultHeaders(accept string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", accept)
	return h
}

// Execute performs a GET request and returns the response body.
//
// Every failure mode collapses into ErrProviderUnavailable: transport
// errors (DNS, connect, timeout) are additionally tagged ErrTransport,
// non-2xx statuses ErrHTTPStatus. Callers only ever branch on "the call
// did not succeed"; the narrower sentinels exist for diagnostics. The
// operation name identifies the call in logs and error messages. No
// retries happen at this layer.
func (c *Client) Execute(ctx context.Context, operation, rawURL string, opts RequestOptions) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, fmt.Errorf("%s: parse url: %w", operation, err))
	}
	if len(opts.Query) > 0 {
		q := u.Query()
		for k, vs := range opts.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, fmt.Errorf("%s: build request: %w", operation, err))
	}
	if opts.Headers != nil {
		req.Header = opts.Headers.Clone()
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()
	c.log.InfoContext(ctx, "baidu api call started",
		slog.String("operation", operation),
		slog.String("host", u.Host),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "baidu api call failed",
			slog.String("operation", operation),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Any("error", err),
		)
		return nil, errors.Join(ErrProviderUnavailable, ErrTransport,
			fmt.Errorf("%s: %w", operation, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.ErrorContext(ctx, "baidu api call failed",
			slog.String("operation", operation),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Any("error", err),
		)
		return nil, errors.Join(ErrProviderUnavailable, ErrTransport,
			fmt.Errorf("%s: read body: %w", operation, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.ErrorContext(ctx, "baidu api call failed",
			slog.String("operation", operation),
			slog.Int("status_code", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, errors.Join(ErrProviderUnavailable, ErrHTTPStatus,
			fmt.Errorf("%s: unexpected status %d", operation, resp.StatusCode))
	}

	c.log.InfoContext(ctx, "baidu api call completed",
		slog.String("operation", operation),
		slog.Int("status_code", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return &Response{Body: string(body), StatusCode: resp.StatusCode}, nil
}
