package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStatusBucket(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{101, "1xx"},
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		if got := statusBucket(tt.code); got != tt.want {
			t.Errorf("statusBucket(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/assess-risk", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/assess-risk", nil)
	router.ServeHTTP(w, req)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var found *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "railsafety_http_requests_total" {
			found = mf
			break
		}
	}
	if found == nil {
		t.Fatal("railsafety_http_requests_total not gathered")
	}

	matched := false
	for _, m := range found.GetMetric() {
		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["method"] == "GET" && labels["path"] == "/assess-risk" && labels["status"] == "2xx" {
			matched = true
			if m.GetCounter().GetValue() < 1 {
				t.Errorf("counter value = %v, want >= 1", m.GetCounter().GetValue())
			}
		}
	}
	if !matched {
		t.Error("no counter sample with expected method/path/status labels")
	}
}

func TestDomainMetricsRegistered(t *testing.T) {
	AssessmentsTotal.WithLabelValues("High").Inc()
	ClarificationsTotal.Inc()
	ModelTrainingAccuracy.Set(0.95)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	want := map[string]bool{
		"railsafety_assessments_total":       false,
		"railsafety_clarifications_total":    false,
		"railsafety_model_training_accuracy": false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric family %s not gathered", name)
		}
	}
}
