package services

import (
	"sync"
	"time"
)

// TokenBlacklist holds tokens revoked by logout, keyed to their expiry so
// entries can be dropped once the token would no longer validate anyway.
// In-process only.
type TokenBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{tokens: make(map[string]time.Time)}
}

// Add revokes a token until expiresAt. Expired entries are pruned on the same
// pass, keeping the map bounded by the number of logouts per token lifetime.
func (b *TokenBlacklist) Add(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	for t, exp := range b.tokens {
		if exp.Before(now) {
			delete(b.tokens, t)
		}
	}
	b.tokens[token] = expiresAt
}

func (b *TokenBlacklist) IsBlacklisted(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	exp, ok := b.tokens[token]
	return ok && !exp.Before(time.Now())
}
