package prom

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExporterCounters(t *testing.T) {
	e := New()

	e.IncrementRequests(map[string]string{"intent": "symptom"})
	e.IncrementRequests(map[string]string{"intent": "symptom"})
	e.IncrementRequests(map[string]string{"intent": "diet"})

	if got := testutil.ToFloat64(e.requests.WithLabelValues("symptom")); got != 2 {
		t.Errorf("symptom requests = %v", got)
	}
	if got := testutil.ToFloat64(e.requests.WithLabelValues("diet")); got != 1 {
		t.Errorf("diet requests = %v", got)
	}
}

func TestExporterTokensAndErrors(t *testing.T) {
	e := New()

	e.IncrementTokensUsed(130, map[string]string{"agent": "Fitness Coach"})
	e.IncrementTokensUsed(70, map[string]string{"agent": "Fitness Coach"})
	e.RecordError("agent_failure", map[string]string{"agent": "Nutrition Guide"})

	if got := testutil.ToFloat64(e.tokens.WithLabelValues("Fitness Coach")); got != 200 {
		t.Errorf("tokens = %v", got)
	}
	if got := testutil.ToFloat64(e.errors.WithLabelValues("agent_failure", "Nutrition Guide")); got != 1 {
		t.Errorf("errors = %v", got)
	}
}

func TestExporterNilLabels(t *testing.T) {
	e := New()

	// Emergency short-circuits record errors with no agent label
	e.RecordError("emergency", nil)
	if got := testutil.ToFloat64(e.errors.WithLabelValues("emergency", "")); got != 1 {
		t.Errorf("errors = %v", got)
	}
}

func TestExporterGauge(t *testing.T) {
	e := New()
	e.SetActiveAgents(4)
	if got := testutil.ToFloat64(e.active); got != 4 {
		t.Errorf("gauge = %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	e := New()
	e.IncrementRequests(map[string]string{"intent": "general"})
	e.RecordLatency(120*time.Millisecond, map[string]string{"intent": "general"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	e.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"wellness_requests_total", "wellness_request_duration_seconds"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
