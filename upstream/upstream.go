// seehuhn.de/go/radar - nearest-aircraft display for colour e-paper
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package upstream holds the HTTP plumbing shared by the clients for the
// public aircraft data services.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single request, including reading the body.
const DefaultTimeout = 10 * time.Second

// ErrNotFound is returned when a service does not know the requested item.
var ErrNotFound = errors.New("not found")

// RateLimitError is returned when a service answers with HTTP 429.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration // zero if the service did not say
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
	}
	return "rate limit exceeded"
}

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	StatusCode int
	Body       string // start of the response body
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}

// ParseRetryAfter returns the delay requested by a Retry-After header, or
// zero. Both the delay-seconds and the HTTP-date form are understood.
func ParseRetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// Options configures a [Client].
type Options struct {
	// HTTP is the client used for requests. If nil, a client with
	// DefaultTimeout is used.
	HTTP *http.Client

	// RequestsPerSecond limits the request rate. Zero means no limit.
	RequestsPerSecond float64

	UserAgent string
	Retry     RetryConfig
}

// Client performs rate limited GET requests with retries.
// A Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	retry     RetryConfig
}

// NewClient returns a new client.
func NewClient(opts Options) *Client {
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		http:      hc,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
		retry:     opts.Retry,
	}
}

// GetJSON fetches url and decodes the JSON response into v.
// A 404 response gives ErrNotFound.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	_, err := Retry(ctx, c.retry, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, url, "application/json", func(resp *http.Response) error {
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return fmt.Errorf("decoding %s: %w", url, err)
			}
			return nil
		})
	})
	return err
}

// Download fetches url and returns the body and its media type. Bodies
// longer than maxBytes are rejected.
func (c *Client) Download(ctx context.Context, url string, maxBytes int64) ([]byte, string, error) {
	type result struct {
		data []byte
		mime string
	}
	res, err := Retry(ctx, c.retry, func() (result, error) {
		var r result
		err := c.do(ctx, url, "*/*", func(resp *http.Response) error {
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
			if err != nil {
				return err
			}
			if int64(len(data)) > maxBytes {
				return fmt.Errorf("%s: body exceeds %d bytes", url, maxBytes)
			}
			r.data = data
			r.mime = resp.Header.Get("Content-Type")
			if r.mime == "" || r.mime == "application/octet-stream" {
				r.mime = http.DetectContentType(data)
			}
			return nil
		})
		return r, err
	})
	if err != nil {
		return nil, "", err
	}
	return res.data, res.mime, nil
}

func (c *Client) do(ctx context.Context, url, accept string, body func(*http.Response) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return body(resp)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: ParseRetryAfter(resp.Header),
		}
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}
}
