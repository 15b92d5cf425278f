package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/case-dashboard-api/internal/service"
)

type readyFlag bool

func (r readyFlag) Ready() bool { return bool(r) }

func TestMetricsHandlerReady(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/ready")
	NewMetricsHandler(nil, readyFlag(false)).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/ready")
	NewMetricsHandler(nil, readyFlag(true)).Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandlerSystemAndPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveRefresh(service.RefreshOutcomeSuccess, 7)
	metrics.ObserveHTTPRequest(http.MethodGet, "/cases", http.StatusOK, 5*time.Millisecond)
	handler := NewMetricsHandler(metrics, readyFlag(true))

	c, rec := newTestContext(http.MethodGet, "/system/metrics")
	handler.System(c)
	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, float64(7), envelope.Data["cases_loaded"])
	assert.Equal(t, float64(1), envelope.Data["requests_total"])

	c, rec = newTestContext(http.MethodGet, "/metrics")
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_cases_loaded 7")

	c, rec = newTestContext(http.MethodGet, "/metrics")
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
