package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketExhaustsAfterCapacity(t *testing.T) {
	now := time.Unix(1000, 0)
	b := NewBucket(5, 1, now)

	for i := 0; i < 5; i++ {
		require.True(t, b.Consume(now), "consumption %d should be allowed", i+1)
	}
	assert.False(t, b.Consume(now), "consumption past capacity must be denied")
	assert.Equal(t, 0, b.Remaining(now))
}

func TestBucketRefillsOneTokenAfterInverseRate(t *testing.T) {
	now := time.Unix(1000, 0)
	b := NewBucket(4, 2, now)

	for i := 0; i < 4; i++ {
		require.True(t, b.Consume(now))
	}
	require.False(t, b.Consume(now))

	// refill rate 2/s: one full token after 500ms
	later := now.Add(500 * time.Millisecond)
	assert.True(t, b.Consume(later))
	assert.False(t, b.Consume(later))
}

func TestBucketRefillCapsAtCapacity(t *testing.T) {
	now := time.Unix(1000, 0)
	b := NewBucket(3, 10, now)
	require.True(t, b.Consume(now))

	later := now.Add(time.Hour)
	assert.Equal(t, 3, b.Remaining(later))
}

func TestBucketResetAtIsTimeUntilFull(t *testing.T) {
	now := time.Unix(1000, 0)
	b := NewBucket(10, 2, now)

	for i := 0; i < 6; i++ {
		require.True(t, b.Consume(now))
	}
	// 6 tokens missing at 2/s -> full again in 3s
	assert.Equal(t, now.Add(3*time.Second), b.ResetAt(now))
}
