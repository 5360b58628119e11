package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-features/pkg/chessdto"
)

// Client posts PGN text to a featured instance.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the network dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 2 * time.Minute, WriteTimeout: 30 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 2 * time.Minute,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a non-2xx response. API is set when the body decoded as
// chessdto.APIError.
type StatusError struct {
	Status int
	Body   string
	API    *chessdto.APIError
}

func (e *StatusError) Error() string {
	if e.API != nil {
		return fmt.Sprintf("featured api error: status=%d code=%s: %s", e.Status, e.API.Code, e.API.Error())
	}
	return fmt.Sprintf("featured api error: status=%d body=%s", e.Status, truncate(e.Body, 512))
}

func newStatusError(status int, body []byte) *StatusError {
	se := &StatusError{Status: status, Body: string(body)}
	var apiErr chessdto.APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
		se.API = &apiErr
	}
	return se
}

// Extract sends one PGN document and returns the scored tables.
func (c *Client) Extract(ctx context.Context, pgnText []byte) (*Response, error) {
	var out Response
	if err := c.do(ctx, fasthttp.MethodPost, PathFeatures, pgnText, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, fasthttp.MethodGet, PathHealth, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if body != nil {
		req.Header.SetContentType("application/x-chess-pgn")
		req.SetBody(body)
	}

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			se := newStatusError(status, resp.Body())
			lastErr = se
			if !shouldRetryStatus(status) && (se.API == nil || !se.API.Retryable) {
				return lastErr
			}
		} else {
			if out != nil {
				if err := json.Unmarshal(resp.Body(), out); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}
			return nil
		}
		if attempt == attempts {
			break
		}
		if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
			return lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
