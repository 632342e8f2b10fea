package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions holds Redis connection options for the token store
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore shares one tenant access token between processes running the
// same app, so each process does not burn the app's token quota on its
// own refreshes.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed token store for the given app ID
func NewRedisStore(opts *RedisOptions, appID string) (*RedisStore, error) {
	if opts == nil {
		return nil, errors.New("redis options cannot be nil")
	}
	if appID == "" {
		return nil, errors.New("app id cannot be empty")
	}

	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "feishubot:token:"
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	return &RedisStore{
		client: client,
		key:    opts.KeyPrefix + appID,
	}, nil
}

// NewRedisStoreWithClient wraps an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, appID string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    "feishubot:token:" + appID,
	}
}

// Load returns the shared token, or a zero Token when the key is absent
// or already expired out of Redis.
func (s *RedisStore) Load(ctx context.Context) (Token, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return Token{}, nil
	}
	if err != nil {
		return Token{}, err
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		// stale or foreign value under our key, treat as a miss
		return Token{}, nil
	}
	return token, nil
}

// Save stores the token with a TTL matching its expiry
func (s *RedisStore) Save(ctx context.Context, token Token) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return s.client.Del(ctx, s.key).Err()
	}

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, ttl).Err()
}

// Close releases the underlying Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
