package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladiossato/k2-inventory/internal/model"
)

var base = time.Date(2026, time.August, 24, 10, 0, 0, 0, time.UTC)

func newSession(userID int64, lastActive time.Time) *model.Session {
	return &model.Session{
		UserID:     userID,
		ChatID:     userID,
		Step:       model.StepChooseLocation,
		StartedAt:  lastActive,
		LastActive: lastActive,
	}
}

func TestPutGet(t *testing.T) {
	s := NewStore(DefaultTTL)
	s.Put(newSession(1, base))

	got, ok := s.Get(1, base.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, int64(1), got.UserID)

	_, ok = s.Get(2, base)
	assert.False(t, ok)
}

func TestPutReplacesExisting(t *testing.T) {
	s := NewStore(DefaultTTL)
	first := newSession(1, base)
	first.Step = model.StepReview
	s.Put(first)
	s.Put(newSession(1, base))

	got, ok := s.Get(1, base)
	require.True(t, ok)
	assert.Equal(t, model.StepChooseLocation, got.Step)
	assert.Equal(t, 1, s.Len())
}

func TestGetExpiredRemoves(t *testing.T) {
	s := NewStore(30 * time.Minute)
	s.Put(newSession(1, base))

	// 31 minutes idle: expired
	_, ok := s.Get(1, base.Add(31*time.Minute))
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestGetNotExpiredAt29Minutes(t *testing.T) {
	s := NewStore(30 * time.Minute)
	s.Put(newSession(1, base))

	_, ok := s.Get(1, base.Add(29*time.Minute))
	assert.True(t, ok)
}

func TestSweep(t *testing.T) {
	s := NewStore(30 * time.Minute)
	s.Put(newSession(1, base))
	s.Put(newSession(2, base.Add(20*time.Minute)))

	removed := s.Sweep(base.Add(31 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get(2, base.Add(31*time.Minute))
	assert.True(t, ok)
}

func TestTouchExtendsLifetime(t *testing.T) {
	s := NewStore(30 * time.Minute)
	sess := newSession(1, base)
	s.Put(sess)

	sess.Touch(base.Add(25 * time.Minute))

	_, ok := s.Get(1, base.Add(45*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 0, s.Sweep(base.Add(45*time.Minute)))
}

func TestDelete(t *testing.T) {
	s := NewStore(DefaultTTL)
	s.Put(newSession(1, base))
	s.Delete(1)
	_, ok := s.Get(1, base)
	assert.False(t, ok)
	s.Delete(1)
}
