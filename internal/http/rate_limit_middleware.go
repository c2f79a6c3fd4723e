package httpx

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// rateLimit applies the per-identity token bucket for the given route
// label. The label names the route pattern, not the concrete path, so
// "/team/update/:id" shares one bucket per client across all team ids.
func (r *Router) rateLimit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		identity := clientIdentity(req)
		if identity == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success":    false,
				"statusCode": http.StatusBadRequest,
				"message":    "Missing identifier for rate limiting!",
			})
			return
		}

		decision := r.limits.Check(identity, route, req.Method)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", decision.ResetAt.UTC().Format(time.RFC3339))
		if decision.Allowed {
			next(w, req)
			return
		}

		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
		r.recordRateLimitHit(route, identity)
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"success":    false,
			"statusCode": http.StatusTooManyRequests,
			"message":    "Too many requests. Please try again later!",
		})
	}
}

// clientIdentity picks the bucket key for a request: the peer IP when the
// remote address parses, then the X-API-Key header, then the first
// X-Forwarded-For entry. Empty means the request cannot be attributed.
func clientIdentity(req *http.Request) string {
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil && host != "" {
		return "ip:" + host
	}
	if key := strings.TrimSpace(req.Header.Get("X-API-Key")); key != "" {
		return "key:" + key
	}
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return "fwd:" + ip
		}
	}
	return ""
}
