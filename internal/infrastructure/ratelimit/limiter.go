package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RateLimitInfo captures limiter response metadata.
type RateLimitInfo struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter defines common interface.
type Limiter interface {
	Allow(ctx context.Context, key string) (RateLimitInfo, error)
}

// MemoryLimiter is a per-key token bucket refilled at limit tokens per minute.
// Buckets idle long enough to be full again are dropped, since a full bucket
// behaves exactly like a missing one.
type MemoryLimiter struct {
	limit int
	burst int
	now   func() time.Time

	mu        sync.Mutex
	store     map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewMemoryLimiter builds RAM limiter.
func NewMemoryLimiter(limit, burst int) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	if burst < 0 {
		burst = 0
	}
	return &MemoryLimiter{
		limit: limit,
		burst: burst,
		now:   time.Now,
		store: make(map[string]*bucket),
	}
}

// Allow implements limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (RateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	capacity := float64(m.limit + m.burst)
	m.sweepLocked(now, capacity)
	b, ok := m.store[key]
	if !ok {
		b = &bucket{tokens: capacity, last: now}
		m.store[key] = b
	}
	b.tokens = min(capacity, b.tokens+now.Sub(b.last).Minutes()*float64(m.limit))
	b.last = now
	info := RateLimitInfo{Limit: m.limit, Reset: now.Add(time.Minute)}
	if b.tokens >= 1 {
		b.tokens--
		info.Allowed = true
		info.Remaining = int(b.tokens)
	}
	return info, nil
}

func (m *MemoryLimiter) sweepLocked(now time.Time, capacity float64) {
	if now.Sub(m.lastSweep) < time.Minute {
		return
	}
	m.lastSweep = now
	refill := time.Duration(capacity / float64(m.limit) * float64(time.Minute))
	for key, b := range m.store {
		if now.Sub(b.last) >= refill {
			delete(m.store, key)
		}
	}
}

// RedisLimiter shares a fixed one-minute window across viewer instances.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	prefix string
}

// NewRedisLimiter builds redis limiter.
func NewRedisLimiter(client *redis.Client, limit int, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, prefix: prefix}
}

// Allow implements limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (RateLimitInfo, error) {
	redisKey := r.prefix + ":" + key
	pipe := r.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return RateLimitInfo{}, err
	}
	ttl, err := r.client.PTTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = time.Minute
	}
	used := int(count.Val())
	info := RateLimitInfo{Limit: r.limit, Reset: time.Now().Add(ttl)}
	if used <= r.limit {
		info.Allowed = true
		info.Remaining = r.limit - used
	}
	return info, nil
}
