package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestRegistryDeniesWhenBucketExhausted(t *testing.T) {
	policies := NewPolicies().Override("/team/create", http.MethodPost, Policy{Capacity: 3, RefillRate: 1})
	reg := NewMemoryRegistry(policies).WithNow(fixedClock(time.Unix(2000, 0)))

	for i := 0; i < 3; i++ {
		d := reg.Check("ip:10.0.0.1", "/team/create", http.MethodPost)
		require.True(t, d.Allowed)
		assert.Equal(t, 3, d.Limit)
	}
	d := reg.Check("ip:10.0.0.1", "/team/create", http.MethodPost)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Second, d.RetryAfter)
}

func TestRegistryRetryAfterIsCeilOfInverseRate(t *testing.T) {
	policies := NewPolicies().Override("/x", http.MethodPost, Policy{Capacity: 1, RefillRate: 0.4})
	reg := NewMemoryRegistry(policies).WithNow(fixedClock(time.Unix(2000, 0)))

	require.True(t, reg.Check("ip:1.2.3.4", "/x", http.MethodPost).Allowed)
	d := reg.Check("ip:1.2.3.4", "/x", http.MethodPost)
	require.False(t, d.Allowed)
	// ceil(1/0.4) = 3 seconds
	assert.Equal(t, 3*time.Second, d.RetryAfter)
}

func TestRegistryBucketsAreIndependentPerIdentityRouteAndMethod(t *testing.T) {
	policies := NewPolicies().
		Override("/a", http.MethodPost, Policy{Capacity: 1, RefillRate: 1}).
		Override("/b", http.MethodPost, Policy{Capacity: 1, RefillRate: 1})
	reg := NewMemoryRegistry(policies).WithNow(fixedClock(time.Unix(2000, 0)))

	require.True(t, reg.Check("ip:1.1.1.1", "/a", http.MethodPost).Allowed)
	require.False(t, reg.Check("ip:1.1.1.1", "/a", http.MethodPost).Allowed)

	// different identity, same route
	assert.True(t, reg.Check("ip:2.2.2.2", "/a", http.MethodPost).Allowed)
	// same identity, different route
	assert.True(t, reg.Check("ip:1.1.1.1", "/b", http.MethodPost).Allowed)
	// same identity and route, unconfigured method falls back to defaults
	assert.True(t, reg.Check("ip:1.1.1.1", "/a", http.MethodGet).Allowed)
}

func TestRegistryUsesMethodDefaults(t *testing.T) {
	reg := NewMemoryRegistry(NewPolicies()).WithNow(fixedClock(time.Unix(2000, 0)))

	d := reg.Check("ip:9.9.9.9", "/anything", http.MethodDelete)
	require.True(t, d.Allowed)
	assert.Equal(t, 100, d.Limit)
	assert.Equal(t, 99, d.Remaining)
}

func TestRegistryResetDropsBuckets(t *testing.T) {
	policies := NewPolicies().Override("/a", http.MethodPost, Policy{Capacity: 1, RefillRate: 1})
	reg := NewMemoryRegistry(policies).WithNow(fixedClock(time.Unix(2000, 0)))

	require.True(t, reg.Check("ip:1.1.1.1", "/a", http.MethodPost).Allowed)
	require.False(t, reg.Check("ip:1.1.1.1", "/a", http.MethodPost).Allowed)

	reg.Reset()
	assert.True(t, reg.Check("ip:1.1.1.1", "/a", http.MethodPost).Allowed)
}
