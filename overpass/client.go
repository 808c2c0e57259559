// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package overpass

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the main public Overpass instance.
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"

	// DefaultUserAgent identifies this tool to instance operators, as
	// the Overpass usage policy asks.
	DefaultUserAgent = "poirit/1.0 (+https://github.com/poiesic/poirit)"

	// DefaultRateInterval spaces requests so a full-city harvest stays
	// under the public instances' per-IP quota.
	DefaultRateInterval = 2 * time.Second

	defaultHTTPTimeout = 90 * time.Second
)

// Client talks to one Overpass API endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithEndpoint sets the Overpass interpreter URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		if endpoint == "" {
			return fmt.Errorf("endpoint must not be empty")
		}
		c.endpoint = endpoint
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithRateInterval sets the minimum spacing between requests. Zero
// disables client-side rate limiting.
func WithRateInterval(interval time.Duration) Option {
	return func(c *Client) error {
		if interval < 0 {
			return fmt.Errorf("rate interval must not be negative")
		}
		if interval == 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
		} else {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates an Overpass client with the given options.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		endpoint:   DefaultEndpoint,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultRateInterval), 1),
		logger:     slog.Default().With("component", "overpass"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("overpass client option: %w", err)
		}
	}
	return c, nil
}

// Query POSTs one QL query and returns the response in raw and parsed
// form. It waits on the rate limiter first, so a cancelled context
// returns before any request is made.
func (c *Client) Query(ctx context.Context, ql string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to body handling
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (HTTP %d)", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w (HTTP %d)", ErrServerError, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w (HTTP %d): %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	elements, err := ParseElements(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("overpass query complete",
		"elements", len(elements),
		"bytes", len(raw),
		"duration", time.Since(started).Round(time.Millisecond))

	return &Result{Raw: raw, Elements: elements}, nil
}
