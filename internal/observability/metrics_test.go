package observability

import (
	"testing"
	"time"
)

func TestMetricsCounts(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/v4/users", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/api/v4/users", "POST", 201, 5*time.Millisecond)
	m.RecordRequest("/api/v4/info", "GET", 200, time.Millisecond)
	m.RecordError("/api/v4/teams", "POST", "transport")

	reqs := m.Requests()
	if len(reqs) != 2 {
		t.Fatalf("Requests() len = %d, want 2", len(reqs))
	}
	if reqs[0].Key != "/api/v4/info|GET|200" || reqs[1].Count != 2 {
		t.Errorf("unexpected request counters: %+v", reqs)
	}
	if errs := m.Errors(); len(errs) != 1 || errs[0].Key != "/api/v4/teams|POST|transport" {
		t.Errorf("unexpected error counters: %+v", errs)
	}
	if m.TotalLatency() != 16*time.Millisecond {
		t.Errorf("TotalLatency() = %v, want 16ms", m.TotalLatency())
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Second)
	m.RecordError("/x", "GET", "transport")
	if m.Requests() != nil || m.Errors() != nil || m.TotalLatency() != 0 {
		t.Error("nil metrics should report nothing")
	}
}
