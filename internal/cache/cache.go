// Package cache keeps rendered drafts in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "sloper:draft:"

// Cache stores rendered output by key. A failing cache behaves as an empty
// one: read errors are logged and reported as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key derives a cache key from the canonical JSON of every part, in order.
// Anything the cached value depends on, such as the drafting rules, goes in
// as a part.
func Key(parts ...interface{}) (string, error) {
	h := sha256.New()
	for i, v := range parts {
		b, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrapf(err, "cache key part %d", i)
		}
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Redis implements Cache using Redis.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedis connects to url and checks the server answers.
func NewRedis(ctx context.Context, url string, ttl time.Duration, logger *zap.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}

	logger.Info("connected to redis cache", zap.Duration("ttl", ttl))
	return &Redis{client: client, logger: logger, ttl: ttl}, nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		c.logger.Warn("failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	c.logger.Debug("cache hit", zap.String("key", key))
	return data, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to set cache", zap.String("key", key), zap.Error(err))
		return errors.Wrap(err, "set cache")
	}
	return nil
}

func (c *Redis) Close() error {
	c.logger.Info("closing redis connection")
	return c.client.Close()
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error         { return nil }
func (Nop) Close() error                                      { return nil }
