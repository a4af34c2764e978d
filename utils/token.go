package utils

import (
	"strings"
	"sync"
	"time"
)

// TokenBlacklist remembers logged-out tokens until they would have expired.
type TokenBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{tokens: make(map[string]time.Time)}
}

func (b *TokenBlacklist) Add(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = expiresAt
	b.purgeLocked(time.Now())
}

func (b *TokenBlacklist) Contains(token string) bool {
	b.mu.RLock()
	expiry, ok := b.tokens[token]
	b.mu.RUnlock()
	return ok && time.Now().Before(expiry)
}

// purgeLocked drops entries whose token has expired anyway.
func (b *TokenBlacklist) purgeLocked(now time.Time) {
	for token, expiry := range b.tokens {
		if now.After(expiry) {
			delete(b.tokens, token)
		}
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header has another form.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
