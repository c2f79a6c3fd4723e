package httpx

import (
	"net/http"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
)

func (r *Router) handleProjectCreate(w http.ResponseWriter, req *http.Request) {
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
		Name        string `json:"name"`
		Description string `json:"description"`
		TeamID      string `json:"teamId"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	created, err := r.project.Create(req.Context(), actor, payload.Name, payload.Description, payload.TeamID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Project created successfully!", created)
}

func (r *Router) handleProjectUpdate(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPut {
		r.methodNotAllowed(w, req)
		return
	}
	actor, ok := userFromContext(req.Context())
	if !ok {
		r.respondError(w, req, apierror.Unauthorized("Unauthorized!", "Missing authenticated user!", "Login and retry with a valid token!"))
		return
	}
	projectID := r.pathParam(req, "/project/update/")
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	updated, err := r.project.Update(req.Context(), actor, projectID, payload.Name, payload.Description)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Project updated successfully", updated)
}

func (r *Router) handleProjectDelete(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w, req)
		return
	}
	actor, ok := userFromContext(req.Context())
	if !ok {
		r.respondError(w, req, apierror.Unauthorized("Unauthorized!", "Missing authenticated user!", "Login and retry with a valid token!"))
		return
	}
	var payload struct {
		ProjectID string `json:"projectId"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	if err := r.project.Delete(req.Context(), actor, payload.ProjectID); err != nil {
		r.respondError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Project deleted successfully!",
	})
}

func (r *Router) handleProjectList(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w, req)
		return
	}
	actor, ok := userFromContext(req.Context())
	if !ok {
		r.respondError(w, req, apierror.Unauthorized("Unauthorized!", "Missing authenticated user!", "Login and retry with a valid token!"))
		return
	}
	page := queryInt(req, "page", 1)
	limit := queryInt(req, "limit", 10)
	result, err := r.project.List(req.Context(), actor, page, limit)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"statusCode": http.StatusOK,
		"message":    "Projects retrieved successfully",
		"data": map[string]any{
			"pagination": map[string]any{
				"page":        result.Page,
				"limit":       result.Limit,
				"total":       result.Total,
				"totalPages":  result.TotalPages,
				"hasNextPage": result.Page*result.Limit < result.Total,
			},
			"projects": result.Projects,
		},
	})
}
