package middleware

import (
	"context"
	"sync"
	"time"

	pkgredis "github.com/grandslambert/backend-cms/pkg/redis"
)

// BlacklistConfig holds token blacklist configuration
type BlacklistConfig struct {
	// CleanupInterval is how often expired entries are swept
	CleanupInterval time.Duration
	// KeyPrefix for Redis-backed entries
	KeyPrefix string
}

// DefaultBlacklistConfig returns sensible defaults
func DefaultBlacklistConfig() BlacklistConfig {
	return BlacklistConfig{
		CleanupInterval: time.Minute,
		KeyPrefix:       "token_blacklist:",
	}
}

// MemoryBlacklist is an in-process token blacklist. Entries expire with the
// token they revoke and are removed by a periodic sweep. Constructed once at
// process start and passed to the components that need it.
type MemoryBlacklist struct {
	config  BlacklistConfig
	entries sync.Map // jti -> expiry time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryBlacklist creates a blacklist and starts its sweep loop
func NewMemoryBlacklist(config BlacklistConfig) *MemoryBlacklist {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	bl := &MemoryBlacklist{
		config: config,
		stop:   make(chan struct{}),
	}
	go bl.sweep()
	return bl
}

// Revoke marks a token id as revoked until its expiry
func (bl *MemoryBlacklist) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	bl.entries.Store(jti, expiresAt)
}

// IsRevoked reports whether a token id has been revoked and not yet expired
func (bl *MemoryBlacklist) IsRevoked(jti string) bool {
	v, ok := bl.entries.Load(jti)
	if !ok {
		return false
	}
	expiresAt := v.(time.Time)
	if time.Now().After(expiresAt) {
		bl.entries.Delete(jti)
		return false
	}
	return true
}

// Close stops the sweep loop
func (bl *MemoryBlacklist) Close() {
	bl.once.Do(func() {
		close(bl.stop)
	})
}

// sweep periodically removes expired entries
func (bl *MemoryBlacklist) sweep() {
	ticker := time.NewTicker(bl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			bl.entries.Range(func(key, value any) bool {
				if expiresAt, ok := value.(time.Time); ok && now.After(expiresAt) {
					bl.entries.Delete(key)
				}
				return true
			})
		case <-bl.stop:
			return
		}
	}
}

// RedisBlacklist is a distributed token blacklist backed by Redis. Expiry is
// delegated to Redis key TTLs, so no sweep loop is needed.
type RedisBlacklist struct {
	client *pkgredis.Client
	config BlacklistConfig
}

// NewRedisBlacklist creates a Redis-backed blacklist
func NewRedisBlacklist(client *pkgredis.Client, config BlacklistConfig) *RedisBlacklist {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "token_blacklist:"
	}
	return &RedisBlacklist{client: client, config: config}
}

// Revoke marks a token id as revoked until its expiry
func (bl *RedisBlacklist) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	bl.client.RDB().Set(ctx, bl.config.KeyPrefix+jti, "1", ttl)
}

// IsRevoked reports whether a token id has been revoked. Redis errors fail
// open: a token is treated as valid rather than locking every caller out.
func (bl *RedisBlacklist) IsRevoked(jti string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	n, err := bl.client.RDB().Exists(ctx, bl.config.KeyPrefix+jti).Result()
	if err != nil {
		return false
	}
	return n > 0
}
