package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardedClient_PassesThrough(t *testing.T) {
	var got Params
	inner := ClientFunc(func(_ context.Context, prompt string, params Params) (string, error) {
		got = params
		return "hello " + prompt, nil
	})

	g := NewGuardedClient(inner, GuardOptions{Timeout: time.Second})
	text, err := g.Complete(context.Background(), "world", Params{Model: "m", Temperature: 0.5})

	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "m", got.Model)
}

func TestGuardedClient_Timeout(t *testing.T) {
	inner := ClientFunc(func(ctx context.Context, _ string, _ Params) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	g := NewGuardedClient(inner, GuardOptions{Timeout: 20 * time.Millisecond})
	start := time.Now()
	_, err := g.Complete(context.Background(), "p", Params{Model: "m"})

	require.Error(t, err)
	var apiErr *APICallError
	assert.True(t, errors.As(err, &apiErr))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGuardedClient_TimeoutWhenInnerIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	inner := ClientFunc(func(context.Context, string, Params) (string, error) {
		<-release
		return "late", nil
	})

	g := NewGuardedClient(inner, GuardOptions{Timeout: 20 * time.Millisecond})
	_, err := g.Complete(context.Background(), "p", Params{Model: "m"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGuardedClient_EmptyResponseIsError(t *testing.T) {
	inner := ClientFunc(func(context.Context, string, Params) (string, error) {
		return "   \n", nil
	})

	g := NewGuardedClient(inner, GuardOptions{})
	_, err := g.Complete(context.Background(), "p", Params{Model: "m"})
	assert.Error(t, err)
}

func TestGuardedClient_PropagatesInnerError(t *testing.T) {
	boom := errors.New("401 unauthorized")
	inner := ClientFunc(func(context.Context, string, Params) (string, error) {
		return "", boom
	})

	g := NewGuardedClient(inner, GuardOptions{})
	_, err := g.Complete(context.Background(), "p", Params{Model: "m"})
	assert.ErrorIs(t, err, boom)
}

func TestGuardedClient_RateLimitRespectsDeadline(t *testing.T) {
	calls := 0
	inner := ClientFunc(func(context.Context, string, Params) (string, error) {
		calls++
		return "ok", nil
	})

	// One token per 10s: the second call cannot get a token before its timeout.
	g := NewGuardedClient(inner, GuardOptions{Timeout: 50 * time.Millisecond, RequestsPerSecond: 0.1, Burst: 1})

	_, err := g.Complete(context.Background(), "p", Params{Model: "m"})
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "p", Params{Model: "m"})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable.Complete(context.Background(), "p", Params{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, Unavailable.Close())
}
