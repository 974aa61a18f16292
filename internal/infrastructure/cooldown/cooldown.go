// Package cooldown enforces a minimum gap between actions of the same key.
package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis arms a key with SET NX PX; the key expiring ends the cooldown
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (c *Redis) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, 1, window).Result()
}

// Memory keeps cooldowns in process, for single-instance deployments
type Memory struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{until: map[string]time.Time{}, now: time.Now}
}

func (c *Memory) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if t, ok := c.until[key]; ok && now.Before(t) {
		return false, nil
	}
	c.until[key] = now.Add(window)
	// prune expired entries once the map grows
	if len(c.until) > 1024 {
		for k, t := range c.until {
			if !now.Before(t) {
				delete(c.until, k)
			}
		}
	}
	return true, nil
}
