// Package session maps opaque bearer tokens to user IDs.
//
// Three backends implement Store: an in-process map (the default), Redis, and
// stateless signed JWTs. HTTP handlers only ever see the interface.
package session

import (
	"context"
	"fmt"
	"time"
)

// Store issues and resolves session tokens. Implementations are safe for
// concurrent use.
type Store interface {
	// Issue creates a new token bound to userID.
	Issue(ctx context.Context, userID string) (string, error)
	// Resolve returns the user bound to token. ok is false for unknown,
	// expired or revoked tokens; err is reserved for backend failures.
	Resolve(ctx context.Context, token string) (userID string, ok bool, err error)
	// Revoke invalidates token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error
}

// Backend names accepted by the SESSION_BACKEND setting.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendJWT    = "jwt"
)

// Options configures New.
type Options struct {
	Backend string
	TTL     time.Duration

	Redis     RedisOptions
	JWTSecret string
}

// New builds the Store selected by opts.Backend. The returned close func
// releases backend connections and is never nil.
func New(opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(opts.TTL), noop, nil
	case BackendRedis:
		s, err := NewRedisStore(opts.Redis, opts.TTL)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendJWT:
		ttl := opts.TTL
		if ttl <= 0 {
			ttl = DefaultJWTTTL
		}
		s, err := NewJWTStore(opts.JWTSecret, ttl)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return nil, noop, fmt.Errorf("session: unknown backend %q", opts.Backend)
	}
}
