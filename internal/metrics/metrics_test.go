package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("GET", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", 204, time.Millisecond)
	m.ObserveRequest("POST", 403, time.Millisecond)
	m.ObserveRequest("POST", 0, time.Millisecond)

	tests := []struct {
		method, class string
		want          float64
	}{
		{"GET", "2xx", 2},
		{"POST", "4xx", 1},
		{"POST", "error", 1},
		{"GET", "5xx", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.APIRequests.WithLabelValues(tt.method, tt.class))
		if got != tt.want {
			t.Errorf("requests{%s,%s} = %v, want %v", tt.method, tt.class, got, tt.want)
		}
	}
}

func TestImportFinished(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ImportFinished("members", "success", 12)
	m.ImportFinished("members", "error", 0)

	if got := testutil.ToFloat64(m.ImportSessions.WithLabelValues("members", "success")); got != 1 {
		t.Errorf("success sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ImportRows.WithLabelValues("members")); got != 12 {
		t.Errorf("rows = %v, want 12", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", 200, time.Second)
	m.CSRFFetched()
	m.ImportFinished("members", "success", 1)
	m.UploadStarted()
	m.UploadDone()
	m.ObserveHTTP("/", "GET", 200, time.Second)
	m.SetSessions(3)
}

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("/entities/{key}", "GET", 200, time.Millisecond)
	m.ObserveHTTP("/entities/{key}", "GET", 200, time.Millisecond)
	m.ObserveHTTP("", "GET", 404, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/entities/{key}", "GET", "2xx")); got != 2 {
		t.Errorf("entity requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "GET", "4xx")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}
