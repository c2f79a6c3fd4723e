package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/ratelimit"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/auth"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/backup"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/project"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/service/team"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	base     string
	auth     auth.Service
	team     team.Service
	project  project.Service
	backup   backup.Service
	limits   ratelimit.Registry
	dbHealth func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const healthCheckTimeout = 2 * time.Second

// RoutePolicies is the bucket policy table for the API surface: method
// defaults plus the per-route overrides for the endpoints that share the
// small write burst.
func RoutePolicies() *ratelimit.Policies {
	writeBurst := ratelimit.Policy{Capacity: 100, RefillRate: 10}
	return ratelimit.NewPolicies().
		Override("/signup", http.MethodPost, writeBurst).
		Override("/login", http.MethodPost, writeBurst).
		Override("/team/create", http.MethodPost, writeBurst).
		Override("/team/add-member", http.MethodPost, writeBurst).
		Override("/project/create", http.MethodPost, writeBurst).
		Override("/project/update/:id", http.MethodPut, writeBurst).
		Override("/restore-collection", http.MethodPut, ratelimit.Policy{Capacity: 2000, RefillRate: 200}).
		Override("/restore-collection", http.MethodGet, ratelimit.Policy{Capacity: 500, RefillRate: 50})
}

// NewRouter assembles routes with dependencies. basePath prefixes every
// API route; health and metrics stay at the root.
func NewRouter(logger *slog.Logger, basePath string, authSvc auth.Service, teamSvc team.Service, projectSvc project.Service, backupSvc backup.Service, limits ratelimit.Registry, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		logger:   logger,
		base:     strings.TrimSuffix(basePath, "/"),
		auth:     authSvc,
		team:     teamSvc,
		project:  projectSvc,
		backup:   backupSvc,
		limits:   limits,
		dbHealth: dbHealth,
	}
	if r.limits == nil {
		r.limits = ratelimit.NewMemoryRegistry(RoutePolicies())
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to the underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limits != nil {
		r.limits.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit("/healthz", r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())

	r.handle("/signup", r.handleSignup)
	r.handle("/login", r.handleLogin)
	r.handle("/create", r.requireAuth(r.handleCreateUser))
	r.handle("/all-users", r.handleListUsers)

	r.handle("/team", r.requireAuth(r.handleTeamList))
	r.handle("/team/create", r.requireAuth(r.handleTeamCreate))
	r.handleParam("/team/update/", "/team/update/:id", r.requireAuth(r.handleTeamUpdate))
	r.handleParam("/team/delete/", "/team/delete/:id", r.requireAuth(r.handleTeamDelete))
	r.handle("/team/add-member", r.requireAuth(r.handleTeamAddMember))
	r.handle("/team/remove-member", r.requireAuth(r.handleTeamRemoveMember))

	r.handle("/project", r.requireAuth(r.handleProjectList))
	r.handle("/project/create", r.requireAuth(r.handleProjectCreate))
	r.handleParam("/project/update/", "/project/update/:id", r.requireAuth(r.handleProjectUpdate))
	r.handle("/project/delete", r.requireAuth(r.handleProjectDelete))

	r.handle("/restore-collection", r.handleRestoreCollection)
}

// handle registers an exact-path route under the base path with the
// standard middleware chain: audit, rate limit, then the handler.
func (r *Router) handle(route string, handler http.HandlerFunc) {
	r.mux.HandleFunc(r.base+route, r.audit(route, r.rateLimit(route, handler)))
}

// handleParam registers a prefix route whose trailing segment is a path
// parameter. The label carries the :id placeholder so rate buckets and
// metrics aggregate per route, not per resource id.
func (r *Router) handleParam(prefix, label string, handler http.HandlerFunc) {
	r.mux.HandleFunc(r.base+prefix, r.audit(label, r.rateLimit(label, handler)))
}

// pathParam returns the trailing path segment after the given route
// prefix, e.g. the team id in /team/update/{id}.
func (r *Router) pathParam(req *http.Request, prefix string) string {
	rest := strings.TrimPrefix(req.URL.Path, r.base+prefix)
	rest = strings.Trim(rest, "/")
	if strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w, req)
		return
	}
	status := "ok"
	code := http.StatusOK
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			r.logger.Error("health check failed", "error", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := strings.TrimSpace(req.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
			req.Header.Set("X-Request-ID", reqID)
		}
		w.Header().Set("X-Request-ID", reqID)

		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)

		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if identity := clientIdentity(req); identity != "" {
			fields = append(fields, "client", identity)
		}
		fields = append(fields, "request_id", reqID)
		if user, ok := userFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", user.ID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (sr *statusRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := sr.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func decodeBody(req *http.Request, payload any) error {
	if req.Body == nil {
		return errors.New("empty request body")
	}
	return json.NewDecoder(req.Body).Decode(payload)
}

func queryInt(req *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(req.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
