// Package restclient is the shared outbound JSON transport: client-side rate
// limiting, retries on 429/5xx for retryable calls, and per-call metrics.
package restclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
)

const maxAttempts = 4

// StatusError is a non-success response that was not retried (or ran out of retries).
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.Code, strings.TrimSpace(string(e.Body)))
}

type Client struct {
	service string
	hc      *http.Client
	rl      *rate.Limiter
}

func New(service string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		service: service,
		hc:      &http.Client{Timeout: timeout},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Call performs one request and decodes a JSON response into out (if non-nil).
// endpoint labels metrics. Only retryable calls are repeated, and only on
// network errors, 429 and transient 5xx, honoring Retry-After.
func (c *Client) Call(ctx context.Context, method, url, endpoint string, in, out any, retryable bool) error {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		payload = b
	}

	attempts := 1
	if retryable {
		attempts = maxAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		// build a fresh request each attempt
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-booking/1.0")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(c.service, endpoint, 0, time.Since(start))
			// network error or context canceled
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(c.service, endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil || resp.StatusCode == http.StatusNoContent {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response")

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &StatusError{Code: resp.StatusCode, Body: b}
			if i < attempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// read a small error body for the caller to decode
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return &StatusError{Code: resp.StatusCode, Body: b}
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
