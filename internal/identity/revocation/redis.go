package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "kelas:revoked:"

// RedisConfig configures the redis backed cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// DialTimeout bounds connection setup (default 5s).
	DialTimeout time.Duration
}

// Redis stores one key per revoked jti with the token's remaining lifetime
// as expiry, so the set never outgrows the live tokens.
type Redis struct {
	rdb *goredis.Client

	mu     sync.Mutex
	closed bool
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to redis and pings it once.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("revocation: redis addr is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	c := &Redis{rdb: rdb}
	if err := c.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return c, nil
}

func (c *Redis) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, keyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revocation: mark %s: %w", jti, err)
	}
	return nil
}

func (c *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("revocation: lookup %s: %w", jti, err)
	}
	return n > 0, nil
}

// Ping verifies the redis connection within 5 seconds.
func (c *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pong, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("revocation: redis ping failed: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("revocation: unexpected redis ping response: %s", pong)
	}
	return nil
}

// Close closes the client. Safe to call more than once.
func (c *Redis) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.rdb.Close()
}
