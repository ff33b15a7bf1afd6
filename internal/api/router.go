// Package api exposes the intake endpoints over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "grant-intake/internal/common/errors"
	"grant-intake/internal/common/logger"
	"grant-intake/internal/common/observability"
	"grant-intake/internal/models"
	"grant-intake/internal/store"
	"grant-intake/internal/validator"
)

// Dispatcher hands accepted records to the notifier without blocking.
type Dispatcher interface {
	DispatchApplication(app models.Application)
	DispatchContact(c models.Contact)
}

// TestSender backs the notification self-test endpoint.
type TestSender interface {
	SendTest(ctx context.Context) error
}

type Deps struct {
	Store          store.Store
	Validator      *validator.Validator
	Dispatcher     Dispatcher
	Notifier       TestSender
	Logger         logger.Logger
	Observability  *observability.Observability
	AdminToken     string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
}

// NewRouter mounts every route with the shared middleware stack.
func NewRouter(deps Deps) http.Handler {
	log := deps.Logger
	errs := apperrors.NewErrorHandler(log)

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverer(log, errs))
	r.Use(instrument)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	health := NewHealthHandler(deps.Store)
	r.Get("/health", health.Live)
	r.Get("/ready", health.Ready)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	h := NewHandler(deps, errs)
	r.Route("/api", func(r chi.Router) {
		h.Register(r, RequireAdminToken(deps.AdminToken, log, errs))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.Handle(w, r, apperrors.NewNotFoundError("route", r.URL.Path), "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.Response{Error: "method not allowed"})
	})

	return r
}
