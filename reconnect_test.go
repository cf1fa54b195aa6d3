package client

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestReconnectPolicyBound(t *testing.T) {
	policy := DefaultReconnectPolicy()

	// the first ten failures each get a delayed retry
	for failureCount := 1; failureCount < 10; failureCount += 1 {
		delay, retry := policy.Next(failureCount)
		assert.Equal(t, true, retry)
		assert.Equal(t, DefaultReconnectTimeout, delay)
	}

	// the tenth failure exhausts the policy: no eleventh attempt
	_, retry := policy.Next(10)
	assert.Equal(t, false, retry)
	_, retry = policy.Next(11)
	assert.Equal(t, false, retry)
}

func TestReconnectAfterElapsed(t *testing.T) {
	reconnect := NewReconnect(10 * time.Millisecond)
	select {
	case <-reconnect.After():
	case <-time.After(1 * time.Second):
		t.Fatalf("reconnect timer never fired")
	}
}

func TestSessionRetryExhaustion(t *testing.T) {
	// nothing listens on port 9; every dial fails fast
	settings := DefaultSessionSettings()
	settings.ReconnectPolicy = &ReconnectPolicy{
		ReconnectTimeout:  1 * time.Millisecond,
		MaxReconnectCount: 3,
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := NewSession(cancelCtx, "ws://127.0.0.1:9/ws", NewDispatcher(), settings)
	session.Open()

	select {
	case <-session.Done():
	case <-time.After(15 * time.Second):
		t.Fatalf("session did not give up")
	}

	assert.Equal(t, 3, session.FailureCount())
	assert.Equal(t, false, session.Connected())
}
