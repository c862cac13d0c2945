// Package ratelimit gates inbound commands with a per-user sliding
// window.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// exempt commands always pass: a user mid-flow must be able to bail
// out or finish even while throttled.
var exempt = map[string]bool{
	"/cancel": true,
	"/help":   true,
	"/done":   true,
	"/skip":   true,
}

// Limiter admits up to limit commands per user within window.
// Conversation continuations bypass the limiter entirely.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[int64][]time.Time
	now    func() time.Time
}

// New creates a limiter admitting limit commands per window per user.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		hits:   make(map[int64][]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether the user's command may proceed and records it
// against the window when it counts. hasSession marks an active
// conversation: its continuations are never throttled.
func (l *Limiter) Allow(userID int64, command string, hasSession bool) bool {
	cmd := strings.ToLower(strings.TrimSpace(command))
	if exempt[cmd] {
		return true
	}
	if hasSession {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.hits[userID][:0]
	for _, ts := range l.hits[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.hits[userID] = recent
		return false
	}

	l.hits[userID] = append(recent, now)
	return true
}

// Reset clears the window for a user. Used in tests.
func (l *Limiter) Reset(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, userID)
}
