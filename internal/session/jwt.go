package session

import (
	"context"
	"sync"
	"time"

	"github.com/sakif/kanban-board/internal/auth"
)

// DefaultJWTTTL is used when the jwt backend is configured without a TTL.
// Signed tokens always carry an expiry.
const DefaultJWTTTL = 24 * time.Hour

// JWTStore issues stateless signed tokens. Nothing is stored per session
// except revocations, which are kept in process memory until the revoked
// token would have expired anyway.
type JWTStore struct {
	tokens *auth.TokenService

	mu      sync.Mutex
	revoked map[string]time.Time // token ID -> expiry
	now     func() time.Time
}

func NewJWTStore(secret string, ttl time.Duration) (*JWTStore, error) {
	ts, err := auth.NewTokenService(secret, ttl)
	if err != nil {
		return nil, err
	}
	return &JWTStore{
		tokens:  ts,
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}, nil
}

func (j *JWTStore) Issue(_ context.Context, userID string) (string, error) {
	return j.tokens.Generate(userID)
}

func (j *JWTStore) Resolve(_ context.Context, token string) (string, bool, error) {
	claims, err := j.tokens.Validate(token)
	if err != nil {
		// Bad signatures and expired tokens are simply not sessions.
		return "", false, nil
	}

	j.mu.Lock()
	_, revoked := j.revoked[claims.TokenID]
	j.mu.Unlock()
	if revoked {
		return "", false, nil
	}
	return claims.UserID, true, nil
}

func (j *JWTStore) Revoke(_ context.Context, token string) error {
	claims, err := j.tokens.Validate(token)
	if err != nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.revoked[claims.TokenID] = claims.ExpiresAt
	j.prune()
	return nil
}

// prune drops deny-list entries whose tokens have expired. Caller holds mu.
func (j *JWTStore) prune() {
	now := j.now()
	for id, exp := range j.revoked {
		if now.After(exp) {
			delete(j.revoked, id)
		}
	}
}
