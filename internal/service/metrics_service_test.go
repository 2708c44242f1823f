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
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/courses", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/student/enroll", http.StatusCreated, 40*time.Millisecond)
	m.ObserveDBQuery("tx", 5*time.Millisecond)
	m.ObserveTx(true)

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.RequestsTotal)
	assert.InDelta(t, 30, snap.AverageRequestDurationMs, 0.001)
	assert.EqualValues(t, 1, snap.DBQueryCount)
	assert.InDelta(t, 5, snap.AverageDBQueryDurationMs, 0.001)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)
	m.ObserveTx(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/healthz",status="200"} 1`)
	assert.Contains(t, body, `db_transactions_total{outcome="rollback"} 1`)
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveTx(true)
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
