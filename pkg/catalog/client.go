// Package catalog holds the HTTP plumbing shared by the upstream catalog clients.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 30 * time.Second

const userAgent = "freebooks-api/1.0 (+https://github.com/iziplay/freebooks-api)"

// StatusError is returned when an upstream answers with an unexpected status code.
// URL never carries the query string, which may hold credentials.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Client performs JSON GET requests against a single upstream base URL.
// Identical requests in flight at the same time share one upstream call.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	g       singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. The client's own
// Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

// BaseURL returns the upstream root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON fetches path (relative to the base URL) with the given query
// parameters and decodes the JSON body into out.
// A 404 answer is reported as book.ErrNotFound.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	// the shared call outlives any single caller, the http.Client timeout bounds it
	ch := c.g.DoChan(u, func() (interface{}, error) {
		return c.get(context.WithoutCancel(ctx), path, u, c.baseURL+path)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return fmt.Errorf("failed to fetch %s: %w", path, ctx.Err())
	}
	if res.Err != nil {
		return res.Err
	}

	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// get fetches u. Errors only ever mention redacted, the URL without its query.
func (c *Client) get(ctx context.Context, path, u, redacted string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redacted
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, book.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: redacted}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return body, nil
}

var strict = bluemonday.StrictPolicy()

// StripHTML removes every tag from s. Upstream descriptions routinely
// contain markup which must not leak into API responses.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Offset converts a 1-based page number into a zero-based item offset.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
