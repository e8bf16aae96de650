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

package upstream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryConfig configures retries with exponential backoff.
// The zero value disables retries.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns the settings used by the service clients.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
	}
}

// Retryable reports whether err may go away when the request is repeated:
// rate limit responses and server errors are retried, everything else is
// returned at once.
func Retryable(err error) bool {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Temporary()
}

// Retry calls fn until it succeeds, fails with an error which is not
// [Retryable], or cfg.MaxRetries retries have been made. The delay before
// retry n is InitialDelay·Multiplier^(n-1), capped at MaxDelay. If the
// service asked for a specific delay with Retry-After, that delay is used
// instead; when it exceeds MaxDelay, Retry gives up at once.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 0; ; attempt++ {
		result, err = fn()
		if err == nil || !Retryable(err) {
			return result, err
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		delay := backoff(cfg, attempt)
		var rle *RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			if cfg.MaxDelay > 0 && rle.RetryAfter > cfg.MaxDelay {
				return result, fmt.Errorf("server asked to wait %v: %w", rle.RetryAfter, err)
			}
			delay = rle.RetryAfter
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return result, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}
	}
	if cfg.MaxRetries > 0 {
		err = fmt.Errorf("giving up after %d retries: %w", cfg.MaxRetries, err)
	}
	return result, err
}

func backoff(cfg RetryConfig, attempt int) time.Duration {
	m := cfg.Multiplier
	if m < 1 {
		m = 1
	}
	d := time.Duration(float64(cfg.InitialDelay) * math.Pow(m, float64(attempt)))
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}
