package ratelimit

import (
	"math"
	"time"
)

// Bucket is a continuously refilling token bucket. It is not safe for
// concurrent use on its own; the owning registry serializes access.
type Bucket struct {
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
}

// NewBucket returns a full bucket refilling at refillRate tokens per second.
func NewBucket(capacity int, refillRate float64, now time.Time) *Bucket {
	return &Bucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now,
	}
}

func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refillRate)
	}
	b.lastRefill = now
}

// Consume refills the bucket and takes one token if available.
func (b *Bucket) Consume(now time.Time) bool {
	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Remaining reports the whole tokens left after refilling.
func (b *Bucket) Remaining(now time.Time) int {
	b.refill(now)
	return int(math.Floor(b.tokens))
}

// ResetAt reports when the bucket will be full again, not when the next
// single token arrives.
func (b *Bucket) ResetAt(now time.Time) time.Time {
	secondsToFull := (b.capacity - b.tokens) / b.refillRate
	return now.Add(time.Duration(secondsToFull * float64(time.Second)))
}
