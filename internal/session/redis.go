package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisOptions holds the connection settings for RedisStore.
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisOptions returns the settings used for zero-valued fields.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Addr:         "localhost:6379",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisStore keeps each session under session:<token>. Sessions survive
// restarts and are shared between server processes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and pings it. ttl <= 0 means keys never
// expire.
func NewRedisStore(opts RedisOptions, ttl time.Duration) (*RedisStore, error) {
	def := DefaultRedisOptions()
	if opts.Addr == "" {
		opts.Addr = def.Addr
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = def.PoolSize
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = def.WriteTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("session: connecting to redis at %s: %w", opts.Addr, err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	// A zero expiration tells go-redis to SET without EX.
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, keyPrefix+token, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("session: storing token: %w", err)
	}
	return token, nil
}

func (r *RedisStore) Resolve(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	userID, err := r.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: resolving token: %w", err)
	}
	return userID, true, nil
}

func (r *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session: revoking token: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
