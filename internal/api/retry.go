package api

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// retryTransport is a RoundTripper decorator that retries idempotent
// requests on transport errors and 5xx/429 responses with exponential
// backoff and jitter. Other 4xx responses are final.
type retryTransport struct {
	inner  http.RoundTripper
	config RetryConfig
}

// WithRetry wraps a RoundTripper with retry logic. A nil inner uses
// http.DefaultTransport.
func WithRetry(inner http.RoundTripper, cfg RetryConfig) http.RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retryTransport{inner: inner, config: cfg}
}

func (r *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !idempotent(req) {
		return r.inner.RoundTrip(req)
	}

	ctx := req.Context()
	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := range r.config.MaxAttempts {
		resp, lastErr = r.inner.RoundTrip(req)
		if !r.shouldRetry(ctx, resp, lastErr) {
			return resp, lastErr
		}

		// Last attempt: hand back whatever we got.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, resp)
		if resp != nil {
			drain(resp)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return resp, lastErr
}

func idempotent(req *http.Request) bool {
	if req.Body != nil && req.Body != http.NoBody {
		return false
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (r *retryTransport) shouldRetry(ctx context.Context, resp *http.Response, err error) bool {
	if err != nil {
		// Context errors are never retried.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return false
		}
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

func (r *retryTransport) backoff(attempt int, resp *http.Response) time.Duration {
	// Respect Retry-After (seconds) on 429/503.
	if resp != nil {
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
				d := time.Duration(secs) * time.Second
				if d > r.config.MaxWait {
					d = r.config.MaxWait
				}
				return d
			}
		}
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
