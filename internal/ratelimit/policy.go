package ratelimit

import "net/http"

// Policy pairs a bucket capacity with its refill rate in tokens per second.
type Policy struct {
	Capacity   int
	RefillRate float64
}

// DefaultPolicies are the per-method limits applied to every route that
// does not override them.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		http.MethodGet:    {Capacity: 2000, RefillRate: 200},
		http.MethodPost:   {Capacity: 500, RefillRate: 50},
		http.MethodPut:    {Capacity: 200, RefillRate: 20},
		http.MethodDelete: {Capacity: 100, RefillRate: 10},
	}
}

// Policies maps routes to per-method overrides on top of the defaults.
type Policies struct {
	defaults  map[string]Policy
	overrides map[string]map[string]Policy
}

// NewPolicies builds a policy table with the standard per-method defaults.
func NewPolicies() *Policies {
	return &Policies{
		defaults:  DefaultPolicies(),
		overrides: make(map[string]map[string]Policy),
	}
}

// Override replaces the policy for one (route, method) pair.
func (p *Policies) Override(route, method string, policy Policy) *Policies {
	byMethod, ok := p.overrides[route]
	if !ok {
		byMethod = make(map[string]Policy)
		p.overrides[route] = byMethod
	}
	byMethod[method] = policy
	return p
}

// Lookup resolves the policy for a (route, method) pair. Methods without
// any configured policy are unlimited.
func (p *Policies) Lookup(route, method string) (Policy, bool) {
	if byMethod, ok := p.overrides[route]; ok {
		if policy, ok := byMethod[method]; ok {
			return policy, true
		}
	}
	policy, ok := p.defaults[method]
	return policy, ok
}
