package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edipulse/internal/config"
	"edipulse/internal/services"
)

func TestHealthHandler(t *testing.T) {
	analysis := services.NewAnalysisService(config.Default().Pipeline, nil)
	h := NewHealthHandler(services.NewHealthService(analysis, nil, nil), testLogger(t))

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body services.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Contains(t, body.Services, "analysis")
	})

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, config.AppVersion, body["version"])
	})
}
