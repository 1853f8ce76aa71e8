package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/session"
)

// ErrUnknownToken is returned for access tokens that were never issued.
var ErrUnknownToken = errors.New("unknown access token")

// Sessions maps access tokens to users.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewSessions creates an empty session table.
func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]string)}
}

// Add registers token for userID.
func (s *Sessions) Add(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
}

// Remove forgets token.
func (s *Sessions) Remove(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *Sessions) CurrentUser(ctx context.Context) (*memento.User, error) {
	token := session.AccessTokenFromContext(ctx)
	if token == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	return &memento.User{ID: id}, nil
}
