package memory

import (
	"context"
	"sync"

	"kapebot/internal/domain"
)

// SessionStore keeps sessions in a process-local map. This is the
// default backend; sessions are transient by design.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionStore creates an empty in-memory session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.Session)}
}

// Get returns the session for userID, or (nil, nil) if none exists
func (s *SessionStore) Get(_ context.Context, userID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

// Set stores a copy of the session for userID
func (s *SessionStore) Set(_ context.Context, userID string, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sess
	s.sessions[userID] = &cp
	return nil
}

// Delete removes the session for userID; deleting a missing session is a no-op
func (s *SessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

// GreetedStore is an in-memory set of users that already got the menu
type GreetedStore struct {
	mu      sync.RWMutex
	greeted map[string]struct{}
}

// NewGreetedStore creates an empty greeted set
func NewGreetedStore() *GreetedStore {
	return &GreetedStore{greeted: make(map[string]struct{})}
}

// MarkGreeted records that userID has seen the welcome menu
func (s *GreetedStore) MarkGreeted(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.greeted[userID] = struct{}{}
	return nil
}

// WasGreeted reports whether userID has seen the welcome menu
func (s *GreetedStore) WasGreeted(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.greeted[userID]
	return ok, nil
}
