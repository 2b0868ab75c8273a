// Package session provides persistent token stores for hospital.Session.
package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/hospital-booking/internal/hospital"
)

const defaultKeyPrefix = "hospital-booking:"

// RedisTokenStore keeps the access token in Redis so separate CLI runs share
// one login.
type RedisTokenStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisOption configures a RedisTokenStore.
type RedisOption func(*RedisTokenStore)

// WithTTL expires the stored token after ttl. Zero keeps it until logout.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisTokenStore) {
		s.ttl = ttl
	}
}

// WithKeyPrefix namespaces the fixed token key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisTokenStore) {
		s.key = prefix + hospital.TokenKey
	}
}

// NewRedisTokenStore wraps an existing client.
func NewRedisTokenStore(client *redis.Client, opts ...RedisOption) *RedisTokenStore {
	s := &RedisTokenStore{client: client, key: defaultKeyPrefix + hospital.TokenKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisClient builds a client from connection settings.
func NewRedisClient(addr, password string, useTLS bool) *redis.Client {
	opts := &redis.Options{Addr: addr, Password: password}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

func (s *RedisTokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: redis get: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

var _ hospital.TokenStore = (*RedisTokenStore)(nil)
