// Package metrics provides Prometheus instrumentation for the assessment
// service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railsafety",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "railsafety",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AssessmentsTotal counts completed assessments by resulting risk level.
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railsafety",
			Name:      "assessments_total",
			Help:      "Total completed risk assessments by risk level.",
		},
		[]string{"risk_level"},
	)

	// ClarificationsTotal counts assessments rejected for missing inputs.
	ClarificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "railsafety",
		Name:      "clarifications_total",
		Help:      "Total assessments that stopped on missing inputs.",
	})

	// ValidationFailuresTotal counts out-of-range input rejections.
	ValidationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "railsafety",
		Name:      "validation_failures_total",
		Help:      "Total assessments rejected for out-of-range inputs.",
	})

	// InferenceFailuresTotal counts unexpected statistical-path failures.
	InferenceFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "railsafety",
		Name:      "inference_failures_total",
		Help:      "Total unexpected failures inside the statistical classifier.",
	})

	// DegradedAssessmentsTotal counts fallback results served after an
	// inference failure (only possible when the fallback policy is enabled).
	DegradedAssessmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "railsafety",
		Name:      "degraded_assessments_total",
		Help:      "Total degraded Medium-risk results served after inference failures.",
	})

	// ModelTrainingSeconds records the duration of the one-time model fit.
	ModelTrainingSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "railsafety",
		Name:      "model_training_seconds",
		Help:      "Wall-clock duration of the one-time model training.",
	})

	// ModelTrainingAccuracy records the fitted model's training-set accuracy.
	ModelTrainingAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "railsafety",
		Name:      "model_training_accuracy",
		Help:      "Accuracy of the fitted model on its synthetic training set.",
	})

	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "railsafety",
		Name:      "goroutines",
		Help:      "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AssessmentsTotal,
		ClarificationsTotal,
		ValidationFailuresTotal,
		InferenceFailuresTotal,
		DegradedAssessmentsTotal,
		ModelTrainingSeconds,
		ModelTrainingAccuracy,
		GoroutineCount,
	)
}

// StartRuntimeCollector periodically samples the goroutine count into its
// gauge. Call in a goroutine; exits when ctx is done.
func StartRuntimeCollector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
