// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	err error
}

func (s stubChecker) Ping(ctx context.Context) error {
	return s.err
}

func testInfo() Info {
	return Info{
		Environment: "development",
		APIVersion:  "v1",
		Supported:   []string{"v1"},
		Prefix:      "/api",
	}
}

func probe(t *testing.T, h *Handler, path string) (int, map[string]any) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestLiveness_ReportsDeploymentInfo(t *testing.T) {
	t.Parallel()

	h := NewHandler(stubChecker{}, stubChecker{}, testInfo())

	code, body := probe(t, h, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "development", body["environment"])
	assert.Equal(t, "v1", body["apiVersion"])
	assert.Equal(t, []any{"v1"}, body["supportedVersions"])
	assert.Equal(t, "/api", body["prefix"])
}

func TestLiveness_NoPrefixOmitted(t *testing.T) {
	t.Parallel()

	info := testInfo()
	info.Prefix = ""
	h := NewHandler(stubChecker{}, stubChecker{}, info)

	_, body := probe(t, h, "/healthz")
	_, present := body["prefix"]
	assert.False(t, present)
}

func TestReadiness_AllHealthy(t *testing.T) {
	t.Parallel()

	h := NewHandler(stubChecker{}, stubChecker{}, testInfo())

	code, body := probe(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "development", body["environment"])
	assert.Len(t, body["checks"], 2)
}

func TestReadiness_DegradedOnDatabaseFailure(t *testing.T) {
	t.Parallel()

	h := NewHandler(
		stubChecker{err: errors.New("connection refused")},
		stubChecker{},
		testInfo(),
	)

	code, body := probe(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
}

func TestReadiness_ShuttingDown(t *testing.T) {
	t.Parallel()

	h := NewHandler(stubChecker{}, stubChecker{}, testInfo())
	h.SetShutdown(true)

	code, body := probe(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "shutting_down", body["status"])
	assert.Equal(t, "v1", body["apiVersion"])
}
