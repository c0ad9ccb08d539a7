package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/services"
	"github.com/urbanflow/urbanflow-backend/types"
)

func setupHealthRouter(pingErr error) *gin.Engine {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)

	db, mock := redismock.NewClientMock()
	if pingErr != nil {
		mock.ExpectPing().SetErr(pingErr)
	} else {
		mock.ExpectPing().SetVal("PONG")
	}

	handler := NewHealthHandler(services.NewHealthService(db, "test"))

	r := gin.New()
	r.GET("/health", handler.DetailedHealth)
	r.GET("/health/liveness", handler.LivenessCheck)
	r.GET("/health/readiness", handler.ReadinessCheck)
	return r
}

func TestHealthHandler_Liveness(t *testing.T) {
	router := setupHealthRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_DetailedHealthUp(t *testing.T) {
	router := setupHealthRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var health types.HealthCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, types.HealthStatusUp, health.Status)
	assert.Equal(t, types.HealthStatusUp, health.Components["redis"].Status)
	assert.Equal(t, "test", health.Version)
	assert.NotEmpty(t, health.Uptime)
}

func TestHealthHandler_RedisOutageDegradesOnly(t *testing.T) {
	router := setupHealthRouter(assert.AnError)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))

	// The cache is best-effort, so a Redis outage must not fail readiness.
	assert.Equal(t, http.StatusOK, w.Code)

	var health types.HealthCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, types.HealthStatusDegraded, health.Status)
	assert.Equal(t, types.HealthStatusDown, health.Components["redis"].Status)
}
