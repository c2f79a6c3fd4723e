package httpx

import (
	"net/http"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
)

var errInvalidBody = apierror.BadRequest(
	"Invalid request body!",
	"The request body is not valid JSON!",
	"Send a well-formed JSON object!",
)

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w, req)
		return
	}
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	user, accessToken, err := r.auth.Signup(req.Context(), payload.Name, payload.Email, payload.Password, domain.Role(payload.Role))
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User registered successfully!", map[string]any{
		"user":        user,
		"accessToken": accessToken,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w, req)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	user, accessToken, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Login successful!", map[string]any{
		"user":        user,
		"accessToken": accessToken,
	})
}

func (r *Router) handleCreateUser(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w, req)
		return
	}
	actor, ok := userFromContext(req.Context())
	if !ok {
		r.respondError(w, req, apierror.Unauthorized("Unauthorized!", "Missing authenticated user!", "Login and retry with a valid token!"))
		return
	}
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		TeamID   string `json:"teamId"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	user, err := r.auth.CreateUser(req.Context(), actor, payload.Name, payload.Email, payload.Password, domain.Role(payload.Role), payload.TeamID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User created successfully!", user)
}

func (r *Router) handleListUsers(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w, req)
		return
	}
	users, err := r.auth.ListUsers(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Users fetched successfully!", map[string]any{
		"users": users,
	})
}
