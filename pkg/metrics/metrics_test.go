package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterRender(t *testing.T) {
	r := New()
	c := r.Counter("questions_total", "Questions answered")
	c.Inc()
	c.Add(2)

	out := r.Render()
	if !strings.Contains(out, "# TYPE questions_total counter") {
		t.Errorf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, "questions_total 3") {
		t.Errorf("missing value line:\n%s", out)
	}
}

func TestLabelledCounters(t *testing.T) {
	r := New()
	r.Counter(WithLabels("questions_total", "strategy", "brand_list"), "Questions").Inc()
	r.Counter(WithLabels("questions_total", "strategy", "general"), "Questions").Add(5)

	out := r.Render()
	if !strings.Contains(out, `questions_total{strategy="brand_list"} 1`) {
		t.Errorf("missing brand_list line:\n%s", out)
	}
	if !strings.Contains(out, `questions_total{strategy="general"} 5`) {
		t.Errorf("missing general line:\n%s", out)
	}
	// One TYPE line per base name.
	if strings.Count(out, "# TYPE questions_total counter") != 1 {
		t.Errorf("expected one TYPE line:\n%s", out)
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("index_units", "Units in the index")
	g.Set(42)
	g.Inc()
	g.Dec()
	if g.Value() != 42 {
		t.Errorf("expected 42, got %d", g.Value())
	}
}

func TestHistogramCumulative(t *testing.T) {
	r := New()
	h := r.Histogram("answer_seconds", "Answer latency", []float64{1, 5})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(100)

	out := r.Render()
	for _, want := range []string{
		`answer_seconds_bucket{le="1"} 1`,
		`answer_seconds_bucket{le="5"} 2`,
		`answer_seconds_bucket{le="+Inf"} 3`,
		`answer_seconds_count 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("c_total", "c").Inc()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "c_total 1") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
