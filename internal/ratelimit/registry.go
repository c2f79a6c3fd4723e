package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Decision is the outcome of one rate-limit check. Limit, Remaining and
// ResetAt feed the X-RateLimit response headers; RetryAfter is only
// meaningful when the request is denied.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Registry decides whether a request identified by a client key may pass
// the (route, method) it targets.
type Registry interface {
	Check(identity, route, method string) Decision
	Close()
}

// MemoryRegistry keeps one token bucket per (identity, route, method).
// Buckets are created lazily and retained for the process lifetime; there
// is no TTL eviction. Reset exists so tests can start from a clean map.
type MemoryRegistry struct {
	mu       sync.Mutex
	buckets  map[string]*Bucket
	policies *Policies
	now      func() time.Time
}

// NewMemoryRegistry constructs a registry over the given policy table.
func NewMemoryRegistry(policies *Policies) *MemoryRegistry {
	if policies == nil {
		policies = NewPolicies()
	}
	return &MemoryRegistry{
		buckets:  make(map[string]*Bucket),
		policies: policies,
		now:      time.Now,
	}
}

// Check consumes one token from the bucket for the identity on this
// (route, method), creating the bucket on first observation.
func (r *MemoryRegistry) Check(identity, route, method string) Decision {
	policy, ok := r.policies.Lookup(route, method)
	if !ok {
		return Decision{Allowed: true}
	}
	now := r.now()
	key := identity + "|" + route + "|" + method

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[key]
	if !ok {
		bucket = NewBucket(policy.Capacity, policy.RefillRate, now)
		r.buckets[key] = bucket
	}
	allowed := bucket.Consume(now)
	decision := Decision{
		Allowed:   allowed,
		Limit:     policy.Capacity,
		Remaining: bucket.Remaining(now),
		ResetAt:   bucket.ResetAt(now),
	}
	if !allowed {
		decision.Remaining = 0
		decision.RetryAfter = time.Duration(math.Ceil(1/policy.RefillRate)) * time.Second
	}
	return decision
}

// Reset drops every bucket.
func (r *MemoryRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = make(map[string]*Bucket)
}

// Close releases nothing for the memory registry; it satisfies Registry.
func (r *MemoryRegistry) Close() {}

// WithNow overrides the clock, for tests.
func (r *MemoryRegistry) WithNow(now func() time.Time) *MemoryRegistry {
	r.now = now
	return r
}
