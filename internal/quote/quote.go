// Package quote fetches the short text the demos display. The endpoint is a
// stand-in data source; its body is treated as opaque text.
package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// ErrUpstream is returned when the quote endpoint answers with a non-2xx status.
var ErrUpstream = errors.New("quote: upstream error")

// maxBody caps how much of the response is read.
const maxBody = 4 << 10

// Source returns one piece of text per call.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// Client fetches text from an HTTP endpoint.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
}

// NewClient returns a Client for url with the given request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:       url,
		userAgent: "effectlab",
		http:      &http.Client{Timeout: timeout},
	}
}

// Fetch performs one GET and returns the trimmed body.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("quote: GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: GET %s returned %d", ErrUpstream, c.url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("quote: reading body: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

// Static always returns the same text.
type Static string

func (s Static) Fetch(context.Context) (string, error) { return string(s), nil }

// Failing always fails with Err.
type Failing struct{ Err error }

func (f Failing) Fetch(context.Context) (string, error) { return "", f.Err }

// Counting wraps a Source and counts calls. OnResult, when set, is called
// with "ok" or "error" after every fetch.
type Counting struct {
	Source   Source
	OnResult func(result string)
	calls    atomic.Int64
}

func (c *Counting) Fetch(ctx context.Context) (string, error) {
	c.calls.Add(1)
	text, err := c.Source.Fetch(ctx)
	if c.OnResult != nil {
		if err != nil {
			c.OnResult("error")
		} else {
			c.OnResult("ok")
		}
	}
	return text, err
}

// Calls returns how many fetches have started.
func (c *Counting) Calls() int { return int(c.calls.Load()) }
