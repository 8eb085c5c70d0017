package redisstorage

import (
	"context"
	"errors"

	"github.com/jrsteele09/agro-console/sessions"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces session keys when no prefix is configured.
const DefaultPrefix = "agroctl:session:"

// Storage keeps session keys in Redis so several consoles on a host (or a
// shared jump box) can reuse one login.
type Storage struct {
	client redis.UniversalClient
	prefix string
}

var _ sessions.Storage = (*Storage)(nil)

// New creates a Storage over client. An empty prefix falls back to DefaultPrefix.
func New(client redis.UniversalClient, prefix string) *Storage {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Storage{
		client: client,
		prefix: prefix,
	}
}

// Get reads key. A missing key is reported as absent, not as an error.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set writes key without expiry; the API decides when tokens stop working.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *Storage) key(key string) string {
	return s.prefix + key
}
