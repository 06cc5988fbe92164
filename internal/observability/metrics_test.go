package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveDraw(t *testing.T) {
	m := NewMetrics()
	m.ObserveDraw(OutcomeOK, 2, 1)
	m.ObserveDraw(OutcomeOK, 1, 0)
	m.ObserveDraw(OutcomeEmpty, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Draws.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Draws.WithLabelValues(OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Passes))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveDraw(OutcomeDepthExceeded, 32, 0)
	m.Since("Draw", time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `deckdraw_draws_total{outcome="depth_exceeded"} 1`)
	assert.Contains(t, string(body), `deckdraw_rpc_seconds_count{method="Draw"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveDraw(OutcomeOK, 1, 0)
	assert.Zero(t, testutil.ToFloat64(b.Draws.WithLabelValues(OutcomeOK)))
}
