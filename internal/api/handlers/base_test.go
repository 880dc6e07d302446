package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-lnkgen/internal/apperrors"
	"github.com/oszuidwest/zwfm-lnkgen/internal/bin2lnk"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
)

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, utils.ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/scripts", nil)
	c.Set(utils.TraceIDKey, "trace-9")

	handleServiceError(c, err, "script")

	var p utils.ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return w, p
}

func TestHandleServiceErrorConfiguration(t *testing.T) {
	_, cause := swire.FrameSizeCode(70000)
	require.Error(t, cause)

	w, p := serveError(t, apperrors.TranslateGenerationError("ScriptService.Render", cause))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, utils.ProblemTypeFor("configuration"), p.Type)
	assert.Equal(t, "configuration", p.Code)
	assert.Equal(t, "frame_size", p.Hint)
	assert.Contains(t, p.Detail, "70000")
	assert.Equal(t, "trace-9", p.TraceID)
}

func TestHandleServiceErrorMissingInput(t *testing.T) {
	cause := &bin2lnk.ConversionError{Op: bin2lnk.OpDataPort, FilePath: "fw.bin", Underlying: bin2lnk.ErrMissingInput}

	w, p := serveError(t, apperrors.TranslateGenerationError("op", cause))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, utils.ProblemTypeFor("missing_input"), p.Type)
	assert.Equal(t, "missing_input", p.Code)
}

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NotFound("script not found"), http.StatusNotFound},
		{"invalid input", apperrors.InvalidInput("bad id"), http.StatusBadRequest},
		{"database", apperrors.Database("database error").Wrap(errors.New("refused")), http.StatusInternalServerError},
		{"untyped", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, p := serveError(t, tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.want, p.Status)
			assert.NotContains(t, p.Detail, "refused")
		})
	}
}
