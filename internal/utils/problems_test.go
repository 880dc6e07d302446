package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProblemContext(method, path, trace string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	if trace != "" {
		c.Set(TraceIDKey, trace)
	}
	return c, w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestProblemTypeFor(t *testing.T) {
	assert.Equal(t, "https://lnkgen.api/problems/configuration", ProblemTypeFor("configuration"))
	assert.Equal(t, "https://lnkgen.api/problems/missing-input", ProblemTypeFor("missing_input"))
}

func TestProblemExtendedCarriesCodeAndHint(t *testing.T) {
	tests := []struct {
		code string
		hint string
	}{
		{"configuration", "frame_size"},
		{"missing_input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, w := newProblemContext(http.MethodPost, "/api/v1/scripts", "bench-7")
			ProblemExtended(c, http.StatusUnprocessableEntity, "invalid frame size: frame_size=70000", tt.code, tt.hint)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			p := decodeProblem(t, w)
			assert.Equal(t, ProblemTypeFor(tt.code), p.Type)
			assert.Equal(t, "Unprocessable Entity", p.Title)
			assert.Equal(t, tt.code, p.Code)
			assert.Equal(t, tt.hint, p.Hint)
			assert.Equal(t, "/api/v1/scripts", p.Instance)
			assert.Equal(t, "bench-7", p.TraceID)

			_, err := time.Parse(time.RFC3339, p.Timestamp)
			assert.NoError(t, err)
		})
	}
}

func TestProblemResponsesStampTraceID(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*gin.Context)
		status int
		slug   string
	}{
		{"not found", func(c *gin.Context) { ProblemNotFound(c, "script") }, http.StatusNotFound, "resource-not-found"},
		{"forbidden", func(c *gin.Context) { ProblemForbidden(c, `role "viewer" may not generate scripts`) }, http.StatusForbidden, "insufficient-permissions"},
		{"bad request", func(c *gin.Context) { ProblemBadRequest(c, "route must be a positive integer") }, http.StatusBadRequest, "bad-request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newProblemContext(http.MethodGet, "/api/v1/scripts/x", "trace-42")
			tt.send(c)

			assert.Equal(t, tt.status, w.Code)
			p := decodeProblem(t, w)
			assert.Equal(t, problemTypeBase+tt.slug, p.Type)
			assert.Equal(t, "trace-42", p.TraceID)
		})
	}

	c, w := newProblemContext(http.MethodGet, "/api/v1/scripts/x", "")
	ProblemNotFound(c, "script")
	p := decodeProblem(t, w)
	assert.Empty(t, p.TraceID)
	assert.Equal(t, "script not found", p.Detail)
}

func TestProblemValidationErrorListsFields(t *testing.T) {
	c, w := newProblemContext(http.MethodPost, "/api/v1/batches", "")
	ProblemValidationError(c, "The request contains invalid data", []ValidationError{
		{Field: "jobs[0].frame_size", Message: "frame_size must be at most 65535"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	p := decodeProblem(t, w)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "jobs[0].frame_size", p.Errors[0].Field)
}

func TestProblemAuthenticationSetsChallenge(t *testing.T) {
	c, w := newProblemContext(http.MethodGet, "/api/v1/routes", "")
	ProblemAuthentication(c, "Authentication required")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "X-API-Key")
}

func TestRespondIgnoresNilContext(t *testing.T) {
	assert.NotPanics(t, func() { ProblemForbidden(nil, "no context") })
}
