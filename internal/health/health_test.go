package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		probes         map[string]Probe
		expectedStatus int
		expectedHealth Status
	}{
		{
			name:           "all healthy",
			probes:         map[string]Probe{"redis": ok, "mongodb": ok},
			expectedStatus: http.StatusOK,
			expectedHealth: StatusHealthy,
		},
		{
			name:           "mongodb down",
			probes:         map[string]Probe{"redis": ok, "mongodb": down},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: StatusUnhealthy,
		},
		{
			name:           "no dependencies",
			probes:         nil,
			expectedStatus: http.StatusOK,
			expectedHealth: StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker("test", tt.probes)

			r := gin.New()
			r.GET("/health/ready", checker.ReadyHandler())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedHealth, body.Status)
			assert.Equal(t, "test", body.Version)
			assert.Len(t, body.Checks, len(tt.probes))
		})
	}
}

func TestCheckReportsFailingProbe(t *testing.T) {
	checker := NewChecker("test", map[string]Probe{
		"mongodb": func(context.Context) error { return errors.New("timeout") },
	})

	status := checker.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, status.Checks["mongodb"].Status)
	assert.Equal(t, "timeout", status.Checks["mongodb"].Error)
}

func TestLiveHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health/live", NewChecker("test", nil).LiveHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
