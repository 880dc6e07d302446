// Package utils provides shared helpers for the HTTP handlers: RFC 9457
// problem responses, request binding and pagination.
package utils

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TraceIDKey is the gin context key holding the request trace ID.
const TraceIDKey = "trace_id"

// ProblemDetail is an RFC 9457 problem body.
// See: https://datatracker.ietf.org/doc/html/rfc9457
type ProblemDetail struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail,omitempty"`
	Instance  string            `json:"instance,omitempty"`
	Timestamp string            `json:"timestamp"`
	Errors    []ValidationError `json:"errors,omitempty"`

	// Code is the application error code of a typed service error,
	// e.g. "configuration".
	Code string `json:"code,omitempty"`

	// Hint names the request parameter to change, e.g. "frame_size".
	Hint string `json:"hint,omitempty"`

	TraceID string `json:"trace_id,omitempty"`
}

// ValidationError represents a single validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const problemTypeBase = "https://lnkgen.api/problems/"

// problemType is one class of problem; its URI is problemTypeBase + slug.
type problemType struct {
	slug   string
	title  string
	status int
}

var (
	typeValidation      = problemType{"validation-error", "Validation Error", http.StatusUnprocessableEntity}
	typeNotFound        = problemType{"resource-not-found", "Resource Not Found", http.StatusNotFound}
	typeDuplicate       = problemType{"duplicate-resource", "Duplicate Resource", http.StatusConflict}
	typeUnauthenticated = problemType{"authentication-required", "Authentication Required", http.StatusUnauthorized}
	typeForbidden       = problemType{"insufficient-permissions", "Insufficient Permissions", http.StatusForbidden}
	typeInternal        = problemType{"internal-server-error", "Internal Server Error", http.StatusInternalServerError}
	typeBadRequest      = problemType{"bad-request", "Bad Request", http.StatusBadRequest}
)

// codeType derives the problem type of a typed service error code.
func codeType(code string, status int) problemType {
	return problemType{strings.ReplaceAll(code, "_", "-"), http.StatusText(status), status}
}

// ProblemTypeFor returns the problem type URI for an application error code.
// Underscores become dashes: "missing_input" maps to .../missing-input.
func ProblemTypeFor(code string) string {
	return problemTypeBase + codeType(code, 0).slug
}

func (t problemType) uri() string {
	return problemTypeBase + t.slug
}

// problem creates a problem of type t. Instance is filled in by SendProblem.
func (t problemType) problem(detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:      t.uri(),
		Title:     t.title,
		Status:    t.status,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SendProblem writes problem as application/problem+json. An empty Instance
// becomes the request path.
func SendProblem(c *gin.Context, problem *ProblemDetail) {
	c.Header("Content-Type", "application/problem+json")
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.JSON(problem.Status, problem)
}

func traceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
