// Package session holds in-flight conversation state keyed by user.
package session

import (
	"sync"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/pkg/metrics"
)

// DefaultTTL is the inactivity window after which a session is
// eligible for the sweep.
const DefaultTTL = 30 * time.Minute

// Store is a concurrent in-memory session registry. One session per
// user: Put replaces any existing entry.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*model.Session
	ttl      time.Duration
}

// NewStore creates a session store with the given inactivity TTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[int64]*model.Session),
		ttl:      ttl,
	}
}

// Get returns the user's session if present and not expired. An
// expired entry is removed on access.
func (s *Store) Get(userID int64, now time.Time) (*model.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if sess.Expired(now, s.ttl) {
		s.Delete(userID)
		return nil, false
	}
	return sess, true
}

// Put stores the session, replacing any existing one for the user.
func (s *Store) Put(sess *model.Session) {
	s.mu.Lock()
	s.sessions[sess.UserID] = sess
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()
}

// Delete removes the user's session if present.
func (s *Store) Delete(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()
}

// Sweep removes every session idle past the TTL and returns how many
// were dropped.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now, s.ttl) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.SessionsExpired.Add(float64(removed))
		metrics.SessionsActive.Set(float64(len(s.sessions)))
	}
	return removed
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
