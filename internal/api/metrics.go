package api

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskd_requests_total",
		Help: "Total number of HTTP requests handled, by endpoint.",
	}, []string{"endpoint", "method", "status"})

	errorCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskd_errors_total",
		Help: "Total number of error responses, by endpoint.",
	}, []string{"endpoint"})
)

// metricsEndpoint collapses per-record paths and unknown URLs so the
// endpoint label stays low-cardinality. Requests for unrouted paths
// (each still counted, as a 404) must not mint new label values.
func metricsEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/tasks/"):
		return "/api/tasks/{id}"
	case strings.HasPrefix(path, "/api/items/"):
		return "/api/items/{id}"
	}
	switch path {
	case "/health", "/api/hello", "/api/greet", "/api/tasks", "/api/items", "/metrics":
		return path
	}
	return "other"
}
