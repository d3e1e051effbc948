package dictionary

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "dictionary:"

// RedisStore keeps each dictionary as a Redis list under "<prefix><name>".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to redisURL (redis://[:password@]host:port/db) and
// verifies the connection.
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Load(ctx context.Context, name string) (Dictionary, error) {
	key := s.key(name)

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load dictionary %q: %w", name, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("load dictionary %q: %w", name, ErrNotFound)
	}

	lines, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load dictionary %q: %w", name, err)
	}

	words := make(Dictionary, 0, len(lines))
	for _, line := range lines {
		if word := normalizeWord(line); word != "" {
			words = append(words, word)
		}
	}
	return words, nil
}

// Seed replaces the named dictionary with words.
func (s *RedisStore) Seed(ctx context.Context, name string, words Dictionary) error {
	key := s.key(name)
	values := make([]interface{}, len(words))
	for i, w := range words {
		values[i] = w
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed dictionary %q: %w", name, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
