// Package api implements the HTTP surface of the service: health,
// hello, greet, task CRUD and item CRUD endpoints plus the middleware
// chain around them.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"taskd/internal/models"
	"taskd/internal/store"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Options carries the server settings that are not dependencies.
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	APIKeys        []string
	RatePerSecond  float64
	RateBurst      int
}

// Server handles HTTP requests and holds the handler dependencies.
type Server struct {
	tasks    store.TaskRepository
	items    *store.ItemStore
	logger   *logrus.Logger
	validate *validator.Validate

	service string
	origins []string
	apiKeys map[string]struct{}
	limiter *rate.Limiter
}

// New creates a Server with dependencies.
func New(tasks store.TaskRepository, items *store.ItemStore, logger *logrus.Logger, opts Options) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "taskd"
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 50
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 100
	}
	return &Server{
		tasks:    tasks,
		items:    items,
		logger:   logger,
		validate: newValidator(),
		service:  opts.ServiceName,
		origins:  opts.AllowedOrigins,
		apiKeys:  keySet(opts.APIKeys),
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RateBurst),
	}
}

// newValidator builds the request validator with the custom rules the
// payload structs reference in their tags. Registration can only fail
// on an empty tag name, so a failure here is a programmer error.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("registering notblank validator: %v", err))
	}
	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.ValidCategory(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("registering category validator: %v", err))
	}
	return v
}

// Routes assembles the mux and wraps it in the middleware chain:
// logging > metrics > rate limit > CORS > optional auth > handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/hello", s.handleHello)
	mux.HandleFunc("/api/greet", s.handleGreet)
	mux.HandleFunc("/api/tasks", s.tasksHandler)
	mux.HandleFunc("/api/tasks/", s.taskHandler)
	mux.HandleFunc("/api/items", s.itemsHandler)
	mux.HandleFunc("/api/items/", s.itemHandler)
	mux.Handle("/metrics", promhttp.Handler())

	var h http.Handler = mux
	if len(s.apiKeys) > 0 {
		h = s.authMiddleware(h)
	}
	h = s.corsMiddleware(h)
	h = s.rateLimitMiddleware(h)
	h = s.metricsMiddleware(h)
	h = s.loggingMiddleware(h)
	return h
}

// keySet parses a list of API keys into a set.
func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, k := range keys {
		if v := strings.TrimSpace(k); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
