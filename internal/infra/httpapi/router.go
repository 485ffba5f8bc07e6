package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the job trigger, the lookup route, health probes and metrics.
func NewRouter(jobs *JobHandler, health *HealthHandler, auth Authenticator, logger *logrus.Entry, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(auth))
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/jobs/absence-notifications", jobs.Trigger)
		r.Post("/jobs/absence-notifications", jobs.Trigger)
		r.Get("/reconciliations/{date}", jobs.GetReconciliation)
	})

	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
