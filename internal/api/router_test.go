package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oszuidwest/zwfm-lnkgen/internal/auth"
	"github.com/oszuidwest/zwfm-lnkgen/internal/batch"
	"github.com/oszuidwest/zwfm-lnkgen/internal/config"
	"github.com/oszuidwest/zwfm-lnkgen/internal/lnkscript"
	"github.com/oszuidwest/zwfm-lnkgen/internal/models"
	"github.com/oszuidwest/zwfm-lnkgen/internal/repository"
	"github.com/oszuidwest/zwfm-lnkgen/internal/services"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
	"github.com/oszuidwest/zwfm-lnkgen/internal/utils"
)

type memoryRepo struct {
	scripts []models.RouteScript
}

func (r *memoryRepo) Create(_ context.Context, s *models.RouteScript) error {
	s.ID = int64(len(r.scripts) + 1)
	r.scripts = append(r.scripts, *s)
	return nil
}

func (r *memoryRepo) GetByUUID(_ context.Context, id string) (*models.RouteScript, error) {
	for _, s := range r.scripts {
		if s.UUID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryRepo) List(_ context.Context, f repository.ScriptFilter) ([]models.RouteScript, int64, error) {
	var out []models.RouteScript
	for _, s := range r.scripts {
		if f.Route == 0 || s.Route == f.Route {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	kept := r.scripts[:0]
	for _, s := range r.scripts {
		if s.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.scripts = kept
	return n, nil
}

type directTx struct{}

func (directTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	engineerKey = "bench-key"
	viewerKey   = "viewer-key"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitializeValidators()

	hash := func(k string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(k), bcrypt.MinCost)
		require.NoError(t, err)
		return string(h)
	}
	authSvc, err := auth.NewService([]config.APIKey{
		{Role: auth.RoleEngineer, Hash: hash(engineerKey)},
		{Role: auth.RoleViewer, Hash: hash(viewerKey)},
	}, config.EnvDevelopment)
	require.NoError(t, err)

	repo := &memoryRepo{}
	svc := services.NewScriptService(
		swire.NewEngine(swire.WithDebugLogger(t.Logf)),
		lnkscript.NewBuilder(nil),
		directTx{},
		repo,
	)
	cfg := &config.Config{Environment: config.EnvDevelopment}
	return SetupRouter(cfg, svc, authSvc), repo
}

func do(r *gin.Engine, method, path, key, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if key != "" {
		req.Header.Set(auth.HeaderAPIKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const route3Body = `{"route":3,"rx_rate":48,"rx_word_length":16,"tx_rate":48,"tx_word_length":16,"frame_size":2}`

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRoutesEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/routes", viewerKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []services.RouteInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, len(swire.DefaultRoutes().Numbers()))

	w = do(r, http.MethodGet, "/api/v1/routes/3", viewerKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"clock_source":"rx"`)

	w = do(r, http.MethodGet, "/api/v1/routes/99", viewerKey, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var problem utils.ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "configuration", problem.Code)
	assert.Equal(t, "route", problem.Hint)
	assert.Contains(t, problem.Detail, "route=99")

	w = do(r, http.MethodGet, "/api/v1/routes/abc", viewerKey, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAndFetchScript(t *testing.T) {
	r, repo := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/scripts", engineerKey, route3Body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID        string `json:"id"`
		FileName  string `json:"file_name"`
		Rows      int    `json:"rows"`
		CreatedBy string `json:"created_by"`
		XML       string `json:"xml"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "/api/v1/scripts/"+created.ID, w.Header().Get("Location"))
	assert.Equal(t, "setup_route3_48K_16bit_48K_16bit_2ms.xml", created.FileName)
	assert.Equal(t, 64, created.Rows)
	assert.Equal(t, "engineer-key", created.CreatedBy)
	assert.Contains(t, created.XML, "<Loop ")
	require.Len(t, repo.scripts, 1)

	w = do(r, http.MethodGet, "/api/v1/scripts/"+created.ID, viewerKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<Loop ")

	w = do(r, http.MethodGet, "/api/v1/scripts/"+created.ID+"/xml", viewerKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.XML, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), created.FileName)

	w = do(r, http.MethodGet, "/api/v1/scripts?route=3", viewerKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestCreateScriptErrors(t *testing.T) {
	r, repo := newTestRouter(t)

	tests := []struct {
		name string
		key  string
		body string
		want int
	}{
		{"no key", "", route3Body, http.StatusUnauthorized},
		{"viewer", viewerKey, route3Body, http.StatusForbidden},
		{"malformed", engineerKey, `{"route":`, http.StatusBadRequest},
		{"unsupported rate", engineerKey, `{"route":3,"rx_rate":44,"rx_word_length":16,"tx_rate":48,"tx_word_length":16,"frame_size":2}`, http.StatusUnprocessableEntity},
		{"unknown route", engineerKey, strings.Replace(route3Body, `"route":3`, `"route":7`, 1), http.StatusUnprocessableEntity},
		{"frame size beyond register", engineerKey, strings.Replace(route3Body, `"frame_size":2`, `"frame_size":70000`, 1), http.StatusUnprocessableEntity},
		{"fractional frame size", engineerKey, strings.Replace(route3Body, `"frame_size":2`, `"frame_size":1.5`, 1), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/scripts", tt.key, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, repo.scripts)
}

func TestGetScriptErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/scripts/not-a-uuid", viewerKey, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/scripts/6f1c2b1e-8d4a-4c35-9a8e-0f2f6b1d2c3e", viewerKey, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var problem utils.ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.NotEmpty(t, problem.TraceID)
	assert.Equal(t, w.Header().Get(HeaderRequestID), problem.TraceID)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "bench-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "bench-42", w.Header().Get(HeaderRequestID))
}

func TestProblemsCarryRequestID(t *testing.T) {
	r, _ := newTestRouter(t)

	send := func(key, body string) (*httptest.ResponseRecorder, utils.ProblemDetail) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scripts", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(auth.HeaderAPIKey, key)
		req.Header.Set(HeaderRequestID, "bench-run-3")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var p utils.ProblemDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		return w, p
	}

	w, p := send(viewerKey, route3Body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "bench-run-3", p.TraceID)
	assert.Contains(t, p.Detail, "viewer")

	w, p = send(engineerKey, strings.Replace(route3Body, `"frame_size":2`, `"frame_size":1.5`, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "configuration", p.Code)
	assert.Equal(t, "frame_size", p.Hint)
	assert.Equal(t, "bench-run-3", p.TraceID)
}

func TestCreateBatch(t *testing.T) {
	r, repo := newTestRouter(t)

	body := `{"jobs":[` + route3Body + `,` + strings.Replace(route3Body, `"route":3`, `"route":99`, 1) + `]}`
	w := do(r, http.MethodPost, "/api/v1/batches", engineerKey, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result batch.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Jobs, 2)
	assert.NotEmpty(t, result.Jobs[0].FileName)
	assert.Empty(t, result.Jobs[0].Error)
	assert.Equal(t, "unknown route: route=99", result.Jobs[1].Error)
	assert.Len(t, repo.scripts, 1)

	w = do(r, http.MethodPost, "/api/v1/batches", engineerKey, `{"jobs":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPurgeRequiresAdmin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodDelete, "/api/v1/scripts?older_than=24h", engineerKey, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionReportsCaller(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/session", viewerKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"principal":"viewer-key","role":"viewer"}`, w.Body.String())
}

func TestIsAllowedOrigin(t *testing.T) {
	assert.True(t, isAllowedOrigin("https://bench.local", "https://a.local, https://bench.local"))
	assert.False(t, isAllowedOrigin("https://evil.local", "https://bench.local"))
	assert.False(t, isAllowedOrigin("", "https://bench.local"))
}
