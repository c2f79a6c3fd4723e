package ratelimit

import (
	"context"
	"math"
	"time"

	"log/slog"

	redis "github.com/redis/go-redis/v9"
)

// RedisRegistry is a Redis-backed alternative for deployments running
// more than one process, where per-process buckets would let a client
// exceed the global limit. It approximates each bucket with a fixed
// window sized to the bucket's full refill time and fails open when
// Redis is unreachable.
type RedisRegistry struct {
	client   *redis.Client
	logger   *slog.Logger
	policies *Policies
	prefix   string
	timeout  time.Duration
}

// NewRedisRegistry connects to Redis and verifies the connection.
func NewRedisRegistry(addr, password string, db int, policies *Policies, logger *slog.Logger) (*RedisRegistry, error) {
	if policies == nil {
		policies = NewPolicies()
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisRegistry{
		client:   client,
		logger:   logger,
		policies: policies,
		prefix:   "teamstack:ratelimit:",
		timeout:  250 * time.Millisecond,
	}, nil
}

// Check counts the request against the identity's window for this
// (route, method) pair.
func (r *RedisRegistry) Check(identity, route, method string) Decision {
	policy, ok := r.policies.Lookup(route, method)
	if !ok {
		return Decision{Allowed: true}
	}
	window := time.Duration(float64(policy.Capacity) / policy.RefillRate * float64(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	key := r.prefix + identity + "|" + route + "|" + method
	counter, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logRedisError("incr", err)
		return Decision{Allowed: true, Limit: policy.Capacity, Remaining: policy.Capacity, ResetAt: time.Now().Add(window)}
	}
	if counter == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			r.logRedisError("expire", err)
		}
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}

	remaining := policy.Capacity - int(counter)
	if remaining < 0 {
		remaining = 0
	}
	decision := Decision{
		Allowed:   int(counter) <= policy.Capacity,
		Limit:     policy.Capacity,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}
	if !decision.Allowed {
		decision.RetryAfter = time.Duration(math.Ceil(1/policy.RefillRate)) * time.Second
	}
	return decision
}

// Close releases the Redis connection.
func (r *RedisRegistry) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}

func (r *RedisRegistry) logRedisError(op string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Error("redis rate limit registry error", "op", op, "error", err)
}
