package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/middleware"
)

func setupPlanRouter() *gin.Engine {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.ErrorHandler())

	handler := NewTripHandler(nil)
	r.POST("/v1/routes/plan", handler.PlanRoutes)
	return r
}

func TestPlanRoutes_RequestValidation(t *testing.T) {
	router := setupPlanRouter()

	testCases := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"text": `},
		{name: "missing text", body: `{"filter": "fastest"}`},
		{name: "unknown filter", body: `{"text": "Paulista", "filter": "prettiest"}`},
		{name: "origin latitude out of range", body: `{"text": "Paulista", "origin": {"lat": 120, "lng": 0}}`},
		{name: "origin longitude out of range", body: `{"text": "Paulista", "origin": {"lat": 0, "lng": -200}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/routes/plan", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "VALIDATION_ERROR", response["type"])
		})
	}
}
