package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m := New(func() float64 { return 42 })
	m.RefreshTotal.WithLabelValues("ok").Inc()
	m.SnapshotBars.Set(120)
	m.RequestsTotal.WithLabelValues("/health", "200").Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshTotal.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/health", "200")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.SnapshotAge))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "taflagger_snapshot_bars 120")
	assert.Contains(t, string(body), `taflagger_refresh_total{result="ok"} 1`)
}

func TestMetrics_NilAge(t *testing.T) {
	m := New(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SnapshotAge))
}
