package apierror

import (
	"fmt"
	"net/http"
	"time"
)

// Error is a status-coded domain error carrying a machine type tag plus a
// human-readable reason and suggested remedy. Handlers convert it into the
// standard error envelope; anything that is not an *Error becomes a
// generic 500.
type Error struct {
	Status   int
	Message  string
	Reason   string
	Solution string
	Metadata map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Reason)
}

// Type returns the machine tag for the status code.
func (e *Error) Type() string {
	if t, ok := typeByStatus[e.Status]; ok {
		return t
	}
	return "UnknownError"
}

var typeByStatus = map[int]string{
	http.StatusBadRequest:          "BadRequest",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "NotFound",
	http.StatusConflict:            "Conflict",
	http.StatusTooManyRequests:     "TooManyRequests",
	http.StatusInternalServerError: "InternalServerError",
}

// Envelope is the wire form of an error response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   Detail `json:"error"`
}

// Detail describes the failure inside an Envelope.
type Detail struct {
	Type      string         `json:"type"`
	Reason    string         `json:"reason"`
	Solution  string         `json:"solution"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Envelope renders the error into its response body.
func (e *Error) Envelope() Envelope {
	return Envelope{
		Success: false,
		Message: e.Message,
		Error: Detail{
			Type:      e.Type(),
			Reason:    e.Reason,
			Solution:  e.Solution,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Metadata:  e.Metadata,
		},
	}
}

// WithMetadata attaches diagnostic metadata and returns the error.
func (e *Error) WithMetadata(meta map[string]any) *Error {
	e.Metadata = meta
	return e
}

func newError(status int, message, reason, solution string) *Error {
	return &Error{Status: status, Message: message, Reason: reason, Solution: solution}
}

// BadRequest signals missing or invalid client input.
func BadRequest(message, reason, solution string) *Error {
	return newError(http.StatusBadRequest, message, reason, solution)
}

// Unauthorized signals missing or failed authentication.
func Unauthorized(message, reason, solution string) *Error {
	return newError(http.StatusUnauthorized, message, reason, solution)
}

// Forbidden signals a failed role or ownership check.
func Forbidden(message, reason, solution string) *Error {
	return newError(http.StatusForbidden, message, reason, solution)
}

// NotFound signals an absent entity or empty result set.
func NotFound(message, reason, solution string) *Error {
	return newError(http.StatusNotFound, message, reason, solution)
}

// Conflict signals a uniqueness or duplication violation.
func Conflict(message, reason, solution string) *Error {
	return newError(http.StatusConflict, message, reason, solution)
}

// TooManyRequests signals rate-limit exhaustion.
func TooManyRequests(message, reason, solution string) *Error {
	return newError(http.StatusTooManyRequests, message, reason, solution)
}

// Internal signals transaction or unexpected persistence failure.
func Internal(message, reason, solution string) *Error {
	return newError(http.StatusInternalServerError, message, reason, solution)
}
