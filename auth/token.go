// Package auth caches the tenant access token the message client sends as
// its bearer credential.
package auth

import (
	"context"
	"sync"
	"time"
)

// Token is a tenant access token with its expiry
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used at the given time.
// An empty token is never valid.
func (t Token) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// Store persists the token between sends. Implementations return a zero
// Token (not an error) when nothing is cached.
type Store interface {
	Load(ctx context.Context) (Token, error)
	Save(ctx context.Context, token Token) error
}

// MemoryStore keeps the token in process memory. This is the default
// store; one process equals one token cache.
type MemoryStore struct {
	mu    sync.Mutex
	token Token
}

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the cached token
func (s *MemoryStore) Load(ctx context.Context) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save replaces the cached token
func (s *MemoryStore) Save(ctx context.Context, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}
