package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
)

type authContextKey string

const contextKeyUser authContextKey = "teamstack-auth-user"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth ensures the request carries a valid bearer token and loads
// the authenticated user into the request context before invoking the
// handler.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, err := bearerToken(req.Header.Get("Authorization"))
		if err != nil {
			r.respondError(w, req, err)
			return
		}
		user, _, authErr := r.auth.Authorize(req.Context(), raw)
		if authErr != nil {
			r.respondError(w, req, authErr)
			return
		}
		ctx := context.WithValue(req.Context(), contextKeyUser, user)
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// userFromContext extracts the authenticated user from context.
func userFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(contextKeyUser).(*domain.User)
	return user, ok
}

func bearerToken(header string) (string, *apierror.Error) {
	if strings.TrimSpace(header) == "" {
		return "", apierror.Unauthorized(
			"Unauthorized!",
			"Missing or invalid authorization header!",
			"Provide a valid 'Bearer <token>' header!",
		)
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", apierror.Unauthorized(
			"Unauthorized!",
			"Invalid authorization header format!",
			"Use 'Bearer <token>' format!",
		)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", apierror.Unauthorized(
			"Unauthorized!",
			"Empty token provided!",
			"Include a valid Bearer token!",
		)
	}
	return token, nil
}
