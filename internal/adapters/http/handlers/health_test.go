package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-keeper/internal/app"
	"github.com/jsamuelsen/quote-keeper/internal/mocks"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// getHealth mounts h under /- and performs one GET.
func getHealth(t *testing.T, h *HealthHandler, path string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	h.RegisterHealthRoutes(router.Group("/-"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	return w
}

// registryReturning is a health registry whose CheckAll yields result.
func registryReturning(t *testing.T, result *ports.HealthResult) *mocks.MockHealthRegistry {
	t.Helper()

	registry := mocks.NewMockHealthRegistry(t)
	registry.EXPECT().CheckAll(mock.Anything).Return(result)

	return registry
}

func TestHealthHandler_LivenessSkipsChecks(t *testing.T) {
	// The mock fails the test if CheckAll is called.
	w := getHealth(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/live")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	storageOK := &ports.CheckResult{Status: ports.HealthStatusHealthy}
	remoteOK := &ports.CheckResult{Status: ports.HealthStatusHealthy, Optional: true}

	tests := []struct {
		name       string
		result     *ports.HealthResult
		wantCode   int
		wantStatus string
	}{
		{
			name: "storage and remote up",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{"storage": storageOK, "quote-service": remoteOK},
			},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name: "remote down degrades but stays ready",
			result: &ports.HealthResult{
				Status: ports.HealthStatusDegraded,
				Checks: map[string]*ports.CheckResult{
					"storage":       storageOK,
					"quote-service": {Status: ports.HealthStatusUnhealthy, Optional: true, Message: "circuit breaker is open"},
				},
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name: "storage down is not ready",
			result: &ports.HealthResult{
				Status: ports.HealthStatusUnhealthy,
				Checks: map[string]*ports.CheckResult{
					"storage":       {Status: ports.HealthStatusUnhealthy, Message: "database is locked"},
					"quote-service": remoteOK,
				},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
		{
			name:       "nothing registered",
			result:     &ports.HealthResult{Status: ports.HealthStatusHealthy},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getHealth(t, NewHealthHandler(registryReturning(t, tt.result), BuildInfo{}), "/-/ready")

			require.Equal(t, tt.wantCode, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.result.Checks))
			assert.Nil(t, resp.LastSync)
		})
	}
}

type stubSyncReporter struct {
	report app.CycleReport
	ok     bool
}

func (s stubSyncReporter) LastReport() (app.CycleReport, bool) {
	return s.report, s.ok
}

func TestHealthHandler_ReadinessReportsLastSync(t *testing.T) {
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		reporter stubSyncReporter
		want     *lastSync
	}{
		{name: "no cycle yet", reporter: stubSyncReporter{}},
		{
			name:     "failed cycle",
			reporter: stubSyncReporter{ok: true, report: app.CycleReport{ID: 3, Finished: finished, Err: errors.New("timeout")}},
			want:     &lastSync{ID: 3, Outcome: app.OutcomeFailure, Finished: finished, Error: "timeout"},
		},
		{
			name:     "successful cycle",
			reporter: stubSyncReporter{ok: true, report: app.CycleReport{ID: 4, Finished: finished, Added: 2}},
			want:     &lastSync{ID: 4, Outcome: app.OutcomeSuccess, Finished: finished},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := registryReturning(t, &ports.HealthResult{Status: ports.HealthStatusHealthy})

			w := getHealth(t, NewHealthHandler(registry, BuildInfo{}, WithSyncReporter(tt.reporter)), "/-/ready")

			require.Equal(t, http.StatusOK, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.LastSync)
		})
	}
}

func TestHealthHandler_Build(t *testing.T) {
	info := NewBuildInfo("1.4.0", "9f3c2ab", "2026-10-01T08:30:00Z")
	assert.Equal(t, runtime.Version(), info.GoVersion)

	w := getHealth(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), info), "/-/build")

	require.Equal(t, http.StatusOK, w.Code)

	var got BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, info, got)
}

func TestHealthHandler_MetricsFromGatherer(t *testing.T) {
	reg := prometheus.NewRegistry()
	size := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quotes", Name: "collection_size", Help: "quotes held"})
	reg.MustRegister(size)
	size.Set(7)

	w := getHealth(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, WithGatherer(reg)), "/-/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "quotes_collection_size 7")
	assert.NotContains(t, w.Body.String(), "go_goroutines", "default registry must not leak in")
}

func TestHealthHandler_UnknownProbe(t *testing.T) {
	w := getHealth(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/startup")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
