package llm

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// GuardedClient wraps a Client so that every call runs under a hard timeout and,
// optionally, a shared request rate limit. A blank response is reported as an error.
// It never retries.
type GuardedClient struct {
	inner   Client
	timeout time.Duration
	limiter *rate.Limiter
}

// GuardOptions configures NewGuardedClient.
type GuardOptions struct {
	Timeout time.Duration
	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}

// NewGuardedClient wraps inner with the given timeout and rate limit.
func NewGuardedClient(inner Client, opts GuardOptions) *GuardedClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	g := &GuardedClient{inner: inner, timeout: opts.Timeout}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return g
}

// Complete forwards to the wrapped client within the timeout budget.
// Time spent waiting on the rate limiter counts against the same budget.
func (g *GuardedClient) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", &APICallError{Message: "rate limit wait aborted", Cause: err}
		}
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := g.inner.Complete(ctx, prompt, params)
		done <- result{text: text, err: err}
	}()

	// The inner client may ignore ctx; the select keeps the caller from blocking past the deadline.
	select {
	case <-ctx.Done():
		return "", &APICallError{Message: "generation timed out", Cause: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if strings.TrimSpace(r.text) == "" {
			return "", &APICallError{Message: "empty response"}
		}
		return r.text, nil
	}
}

// Close closes the wrapped client.
func (g *GuardedClient) Close() error {
	return g.inner.Close()
}
