package database

import (
	"context"
	"sync"

	"personal_assistant_bot/internal/domain/credential"

	"golang.org/x/oauth2"
)

// MemoryTokenRepository keeps tokens for the lifetime of the process. It is
// used when no DATABASE_URL is configured.
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]oauth2.Token
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{tokens: make(map[string]oauth2.Token)}
}

func (r *MemoryTokenRepository) GetToken(_ context.Context, name string) (*oauth2.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tok, ok := r.tokens[name]
	if !ok {
		return nil, credential.ErrTokenNotFound
	}
	return &tok, nil
}

func (r *MemoryTokenRepository) SaveToken(_ context.Context, name string, tok *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := oauth2.Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if prev, ok := r.tokens[name]; ok && stored.RefreshToken == "" {
		stored.RefreshToken = prev.RefreshToken
	}
	r.tokens[name] = stored
	return nil
}
