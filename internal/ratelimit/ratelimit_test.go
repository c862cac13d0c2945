package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(1, "/status", false))
	}
	assert.False(t, l.Allow(1, "/status", false))
}

func TestWindowSlides(t *testing.T) {
	l := New(2, time.Minute)
	base := time.Date(2026, time.August, 24, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	assert.True(t, l.Allow(1, "/status", false))
	assert.True(t, l.Allow(1, "/status", false))
	assert.False(t, l.Allow(1, "/status", false))

	// first hit ages out
	l.now = func() time.Time { return base.Add(61 * time.Second) }
	assert.True(t, l.Allow(1, "/status", false))
}

func TestExemptCommandsAlwaysPass(t *testing.T) {
	l := New(1, time.Minute)
	assert.True(t, l.Allow(1, "/status", false))
	assert.False(t, l.Allow(1, "/status", false))

	assert.True(t, l.Allow(1, "/cancel", false))
	assert.True(t, l.Allow(1, "/help", false))
	assert.True(t, l.Allow(1, "/done", false))
	assert.True(t, l.Allow(1, "/skip", false))
}

func TestActiveSessionBypassesLimit(t *testing.T) {
	l := New(1, time.Minute)
	assert.True(t, l.Allow(1, "/status", false))
	assert.False(t, l.Allow(1, "/status", false))

	assert.True(t, l.Allow(1, "5.5", true))
	assert.True(t, l.Allow(1, "5.5", true))
}

func TestUsersAreIndependent(t *testing.T) {
	l := New(1, time.Minute)
	assert.True(t, l.Allow(1, "/status", false))
	assert.False(t, l.Allow(1, "/status", false))
	assert.True(t, l.Allow(2, "/status", false))
}

func TestExemptDoesNotConsumeBudget(t *testing.T) {
	l := New(1, time.Minute)
	assert.True(t, l.Allow(1, "/help", false))
	assert.True(t, l.Allow(1, "/status", false))
}
