package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every stored key, e.g. "biketag:memo:".
	Prefix string
	// TTL of written entries. Zero keeps entries until evicted by Redis.
	TTL time.Duration
	// Timeout bounds each Get/Put round trip. Zero means 2s.
	Timeout time.Duration
}

// RedisCache shares memoized extraction results between processes. Remote
// failures are logged at debug level and treated as misses.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache connects and pings the server.
func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	log.Debug().Str("addr", opts.Addr).Msg("redis memo cache connected")
	return &RedisCache{client: client, prefix: opts.Prefix, ttl: opts.TTL, timeout: timeout}, nil
}

// storeKey hashes the memo key so arbitrarily long post bodies map to bounded
// Redis keys.
func (c *RedisCache) storeKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return c.prefix + hex.EncodeToString(h[:])
}

// Fetch returns the stored value or ErrKeyNotFound.
func (c *RedisCache) Fetch(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.storeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

// Store writes value under key with the configured TTL.
func (c *RedisCache) Store(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, c.storeKey(key), value, c.ttl).Err()
}

func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	v, err := c.Fetch(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Debug().Err(err).Msg("redis memo get failed")
		}
		return nil, false
	}
	return v, true
}

func (c *RedisCache) Put(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.Store(ctx, key, value); err != nil {
		log.Debug().Err(err).Msg("redis memo put failed")
	}
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
