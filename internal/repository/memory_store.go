// Package repository holds conversation sessions for the lifetime of the
// process. Nothing is persisted: a session exists from StartSession until
// it is ended or pruned, which is all the dialogue engine requires.
package repository

import (
	"errors"
	"strings"
	"sync"
	"time"

	"dialogue-agent/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("repository: session not found")
	ErrSessionExists   = errors.New("repository: session already exists")
)

// Session is one live conversation and its context.
type Session struct {
	ID        string
	ClientID  string
	Context   *domain.ConversationContext
	CreatedAt time.Time
	LastSeen  time.Time

	// TurnMu serializes turns within the session. The orchestrator holds it
	// for the whole turn, including the simulated typing delay.
	TurnMu sync.Mutex
}

// MemoryStore is an in-memory session registry safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session.
func (s *MemoryStore) Create(sess *Session) error {
	if sess == nil {
		return errors.New("repository: session must not be nil")
	}
	if strings.TrimSpace(sess.ID) == "" {
		return errors.New("repository: session id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; ok {
		return ErrSessionExists
	}
	now := s.now()
	sess.CreatedAt = now
	sess.LastSeen = now
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the session with the given ID.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Touch refreshes the session's last-activity timestamp.
func (s *MemoryStore) Touch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastSeen = s.now()
	return nil
}

// Delete discards a session and its context.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PruneIdle removes sessions whose last activity is older than maxIdle and
// returns how many were removed.
func (s *MemoryStore) PruneIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
