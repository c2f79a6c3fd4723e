package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/amrendra-chaudhry-21/TaskManagementSystem/internal/apierror"
)

// writeJSON writes a JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeSuccess wraps data in the standard success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	body := map[string]any{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	writeJSON(w, status, body)
}

// respondError converts any error into the error envelope. An
// *apierror.Error keeps its status, type, reason and solution; everything
// else becomes a generic 500 carrying the first line of the error text as
// diagnostic metadata.
func (r *Router) respondError(w http.ResponseWriter, req *http.Request, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		message := err.Error()
		if message == "" {
			message = "Internal Server Error"
		}
		apiErr = apierror.Internal(
			"Internal Server Error",
			"An unexpected error occurred!",
			"Please try again later!",
		).WithMetadata(map[string]any{
			"stack": firstLine(message),
		})
	}

	fields := []any{
		"status", apiErr.Status,
		"type", apiErr.Type(),
		"message", apiErr.Message,
		"reason", apiErr.Reason,
		"path", req.URL.Path,
		"method", req.Method,
	}
	if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
		fields = append(fields, "request_id", reqID)
	}
	if apiErr.Status >= http.StatusInternalServerError {
		r.logger.Error("request_failed", fields...)
	} else {
		r.logger.Warn("request_failed", fields...)
	}

	writeJSON(w, apiErr.Status, apiErr.Envelope())
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func (r *Router) methodNotAllowed(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, apierror.Envelope{
		Success: false,
		Message: "Method not allowed!",
		Error: apierror.Detail{
			Type:      "MethodNotAllowed",
			Reason:    "The HTTP method is not supported on this route",
			Solution:  "Check the API documentation for the supported methods",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}
