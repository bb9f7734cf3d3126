package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultConnectTimeout = 5 * time.Second

	// DefaultRedisTTL is how long an untouched browser session lives in Redis.
	DefaultRedisTTL = 30 * 24 * time.Hour
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// ConnectRedis initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisStore implements Store with one Redis hash per browser session.
// Key format: eventdesk:session:<session id>
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. ttl <= 0 selects DefaultRedisTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the value stored under key, or ErrNotFound. Reads slide the
// expiry forward like writes, so the TTL counts from the last use.
func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	hash := s.hash(sessionID)
	var get *redis.StringCmd
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.HGet(ctx, hash, key)
		p.Expire(ctx, hash, s.ttl)
		return nil
	})
	v, getErr := get.Result()
	if errors.Is(getErr, redis.Nil) {
		return "", ErrNotFound
	}
	if getErr != nil {
		return "", fmt.Errorf("redis hget: %w", getErr)
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return v, nil
}

// Put writes the value and slides the session's expiry forward.
func (s *RedisStore) Put(ctx context.Context, sessionID, key, value string) error {
	hash := s.hash(sessionID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, hash, key, value)
		p.Expire(ctx, hash, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Delete removes the value under key.
func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.client.HDel(ctx, s.hash(sessionID), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (s *RedisStore) hash(sessionID string) string {
	return "eventdesk:session:" + sessionID
}
