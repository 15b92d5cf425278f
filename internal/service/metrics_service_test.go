package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/cases", http.StatusOK, 20*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveUpstreamFetch("stats", "success", 100*time.Millisecond)
	m.IncUpstreamRetry("stats")
	m.ObserveRefresh(RefreshOutcomeSuccess, 42)
	m.ObserveRefresh(RefreshOutcomeCasesFail, 42)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 20, snap.AverageRequestDurationMs, 0.001)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.001)
	assert.Equal(t, uint64(1), snap.UpstreamFetches)
	assert.Equal(t, uint64(1), snap.UpstreamRetries)
	assert.InDelta(t, 100, snap.AverageUpstreamDurationMs, 0.001)
	assert.Equal(t, uint64(1), snap.RefreshSuccesses)
	assert.Equal(t, uint64(1), snap.RefreshFailures)
	assert.Equal(t, 42, snap.CasesLoaded)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dashboard_refresh_total{outcome="cases_failed"} 1`)
	assert.Contains(t, rec.Body.String(), "dashboard_cases_loaded 42")
	assert.Contains(t, rec.Body.String(), `upstream_retries_total{action="stats"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveUpstreamFetch("data", "failure", time.Millisecond)
	m.IncUpstreamRetry("data")
	m.ObserveRefresh(RefreshOutcomeStatsFail, 0)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveCacheWrite(time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, m.Snapshot().RequestsTotal)
}
