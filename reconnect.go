package client

import (
	"time"
)

// Reconnect behavior observed by the session run loop: a fixed delay between
// attempts and a hard cap on the total number of transport failures. The
// failure count is cumulative for the life of the session. A short backend
// restart must not discard filter/page state or force a reload, so the
// session trades missed pushes during the gap for continuity.

const DefaultReconnectTimeout = 3000 * time.Millisecond
const DefaultMaxReconnectCount = 10

type ReconnectPolicy struct {
	ReconnectTimeout  time.Duration
	MaxReconnectCount int
}

func DefaultReconnectPolicy() *ReconnectPolicy {
	return &ReconnectPolicy{
		ReconnectTimeout:  DefaultReconnectTimeout,
		MaxReconnectCount: DefaultMaxReconnectCount,
	}
}

// Next reports whether another attempt should be made after `failureCount`
// observed transport failures, and the delay before it.
func (self *ReconnectPolicy) Next(failureCount int) (time.Duration, bool) {
	if self.MaxReconnectCount <= failureCount {
		return 0, false
	}
	return self.ReconnectTimeout, true
}

type Reconnect struct {
	timeout time.Duration
	start   time.Time
}

func NewReconnect(timeout time.Duration) *Reconnect {
	return &Reconnect{
		timeout: timeout,
		start:   time.Now(),
	}
}

func (self *Reconnect) After() <-chan time.Time {
	remaining := self.timeout - time.Since(self.start)
	return time.After(remaining)
}
