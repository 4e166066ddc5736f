// AngelaMos | 2026
// main_test.go

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/identity-api/internal/config"
)

func TestVersionHandler(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.App.Version = "1.4.0"
	cfg.API.Version = "v1"
	cfg.API.Supported = []string{"v1"}
	cfg.API.PrefixEnabled = true

	rec := httptest.NewRecorder()
	versionHandler(cfg)(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, "v1", body.Data["version"])
	assert.Equal(t, []any{"v1"}, body.Data["supported"])
	assert.Equal(t, "/api", body.Data["prefix"])
	assert.Equal(t, "1.4.0", body.Data["app"])
}
