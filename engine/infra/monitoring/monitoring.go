// Package monitoring exposes the service's prometheus surface: HTTP request
// counters and latencies plus encode batch measurements.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service owns a private registry so tests can construct isolated instances.
type Service struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	embeddedTexts   prometheus.Counter
	embedDuration   prometheus.Histogram
}

// NewService creates a monitoring service with all collectors registered.
func NewService() *Service {
	registry := prometheus.NewRegistry()
	s := &Service{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "embedd",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "embedd",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		embeddedTexts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "embedd",
			Name:      "embedded_texts_total",
			Help:      "Total texts encoded into vectors.",
		}),
		embedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "embedd",
			Name:      "embed_batch_duration_seconds",
			Help:      "Encode latency per /embed batch.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.requestsTotal,
		s.requestDuration,
		s.embeddedTexts,
		s.embedDuration,
	)
	return s
}

// GinMiddleware records request counts and latencies.
func (s *Service) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		s.requestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		s.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordEmbedBatch records one encode batch.
func (s *Service) RecordEmbedBatch(texts int, duration time.Duration) {
	s.embeddedTexts.Add(float64(texts))
	s.embedDuration.Observe(duration.Seconds())
}

// ExporterHandler returns the /metrics handler for this service's registry.
func (s *Service) ExporterHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
