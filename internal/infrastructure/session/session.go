package session

import "sync"

// Store holds the signed-in user's bearer token and identity. Everything
// outside the auth flow reads it; only SignIn/SignOut write it.
type Store struct {
	mu     sync.RWMutex
	token  string
	userID string
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Set(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
}

func (s *Store) Clear() {
	s.Set("", "")
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.userID != ""
}
