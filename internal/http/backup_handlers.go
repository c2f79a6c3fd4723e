package httpx

import (
	"fmt"
	"net/http"
	"strings"
)

// handleRestoreCollection serves the backup maintenance route: PUT
// restores a backup into its live collection, GET pages through the
// stored backup records.
func (r *Router) handleRestoreCollection(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPut:
		r.handleRestore(w, req)
	case http.MethodGet:
		r.handleListBackups(w, req)
	default:
		r.methodNotAllowed(w, req)
	}
}

func (r *Router) handleRestore(w http.ResponseWriter, req *http.Request) {
	var payload struct {
		CollectionName string `json:"collectionName"`
		BackupID       string `json:"backupId"`
	}
	if err := decodeBody(req, &payload); err != nil {
		r.respondError(w, req, errInvalidBody)
		return
	}
	restored, err := r.backup.Restore(req.Context(), payload.CollectionName, payload.BackupID)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"restoredCount": len(restored),
		"message":       fmt.Sprintf("%d docs restored to %s", len(restored), payload.CollectionName),
		"data":          restored,
	})
}

func (r *Router) handleListBackups(w http.ResponseWriter, req *http.Request) {
	page := queryInt(req, "page", 1)
	limit := queryInt(req, "limit", 10)
	collectionName := strings.TrimSpace(req.URL.Query().Get("collectionName"))

	result, err := r.backup.List(req.Context(), page, limit, collectionName)
	if err != nil {
		r.respondError(w, req, err)
		return
	}

	message := fmt.Sprintf("Retrieved %d records successfully!", len(result.Records))
	if collectionName != "" {
		message = fmt.Sprintf("Retrieved %d records filtered by collection: %s", len(result.Records), collectionName)
	}
	body := map[string]any{
		"success":    true,
		"statusCode": http.StatusOK,
		"message":    message,
		"pagination": map[string]any{
			"totalRecords":    result.TotalRecords,
			"currentPage":     result.CurrentPage,
			"totalPages":      result.TotalPages,
			"recordsPerPage":  result.PerPage,
			"hasNextPage":     result.CurrentPage < result.TotalPages,
			"hasPreviousPage": result.CurrentPage > 1,
		},
		"data": result.Records,
	}
	if collectionName != "" {
		body["filteredBy"] = map[string]string{"collectionName": collectionName}
	}
	writeJSON(w, http.StatusOK, body)
}
