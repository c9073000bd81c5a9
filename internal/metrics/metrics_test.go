package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe(OutcomeOK, 2*time.Second, 3)
	m.Observe(OutcomeOK, time.Second, 0)
	m.Observe(OutcomeNoNight, time.Millisecond, 0)

	tests := []struct {
		outcome string
		want    float64
	}{
		{OutcomeOK, 2},
		{OutcomeNoNight, 1},
		{OutcomeTimeout, 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.computations.WithLabelValues(tt.outcome)); got != tt.want {
			t.Errorf("computations{%s} = %v, want %v", tt.outcome, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.visibleWindows); n != 1 {
		t.Errorf("visible_windows series = %d, want 1", n)
	}
	if n, err := testutil.GatherAndCount(reg, "lsvis_computation_seconds"); err != nil || n != 1 {
		t.Errorf("GatherAndCount() = %d, %v", n, err)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Observe(OutcomeError, time.Second, 0)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).Observe(OutcomeTimeout, time.Minute, 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `lsvis_computations_total{outcome="timeout"} 1`) {
		t.Errorf("metrics output lacks the timeout counter:\n%s", rec.Body.String())
	}
}
