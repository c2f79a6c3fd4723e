package httpx

import (
	"net/http"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/domain"
)

func (r *Router) handleTeamCreate(w http.ResponseWriter, req *http.Request) {
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
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	created, err := r.team.Create(req.Context(), actor, payload.Name, payload.Description)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Team created successfully!", created)
}

func (r *Router) handleTeamList(w http.ResponseWriter, req *http.Request) {
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
	result, err := r.team.List(req.Context(), actor, page, limit)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Teams retrieved successfully!", map[string]any{
		"pagination": map[string]any{
			"page":       result.Page,
			"limit":      result.Limit,
			"total":      result.Total,
			"totalPages": result.TotalPages,
		},
		"teams": result.Teams,
	})
}

func (r *Router) handleTeamUpdate(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPut {
		r.methodNotAllowed(w, req)
		return
	}
	actor, ok := userFromContext(req.Context())
	if !ok {
		r.respondError(w, req, apierror.Unauthorized("Unauthorized!", "Missing authenticated user!", "Login and retry with a valid token!"))
		return
	}
	teamID := r.pathParam(req, "/team/update/")
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	updated, err := r.team.Update(req.Context(), actor, teamID, payload.Name, payload.Description)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Team updated successfully!", updated)
}

func (r *Router) handleTeamDelete(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w, req)
		return
	}
	actor, ok := userFromContext(req.Context())
	if !ok {
		r.respondError(w, req, apierror.Unauthorized("Unauthorized!", "Missing authenticated user!", "Login and retry with a valid token!"))
		return
	}
	teamID := r.pathParam(req, "/team/delete/")
	if err := r.team.Delete(req.Context(), actor, teamID); err != nil {
		r.respondError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"statusCode":    http.StatusOK,
		"message":       "Team deleted successfully!",
		"deletedTeamId": teamID,
	})
}

func (r *Router) handleTeamAddMember(w http.ResponseWriter, req *http.Request) {
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
		TeamID string `json:"teamId"`
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	if err := r.team.AddMember(req.Context(), actor, payload.TeamID, payload.UserID, domain.Role(payload.Role)); err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Member added to team successfully!", map[string]any{
		"teamId": payload.TeamID,
		"userId": payload.UserID,
		"role":   payload.Role,
	})
}

func (r *Router) handleTeamRemoveMember(w http.ResponseWriter, req *http.Request) {
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
		TeamID string `json:"teamId"`
		UserID string `json:"userId"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	if err := r.team.RemoveMember(req.Context(), actor, payload.TeamID, payload.UserID); err != nil {
		r.respondError(w, req, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Member removed from team successfully!", map[string]any{
		"teamId": payload.TeamID,
		"userId": payload.UserID,
	})
}
