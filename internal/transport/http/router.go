// Package httptransport assembles the public HTTP surface: middleware, the
// plugin routes, record lookup, health and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"voterweight/pkg/platform/httputil"
	"voterweight/pkg/platform/middleware/auth"
	"voterweight/pkg/platform/middleware/metadata"
	"voterweight/pkg/platform/middleware/request"
	"voterweight/pkg/platform/middleware/requesttime"
)

// Routes is implemented by every plugin handler.
type Routes interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Logger    *slog.Logger
	Tokens    auth.TokenValidator
	Records   RecordReader
	Metrics   http.Handler
	Health    map[string]HealthCheck
	Plugins   []Routes
	// RateLimit wraps the authenticated routes when set.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter wires all public endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.Recover(deps.Logger))

	r.Get("/healthz", healthHandler(deps.Health))
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.Signer(deps.Tokens, deps.Logger))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit)
		}
		r.Get("/v1/records/{address}", recordHandler(deps.Records, deps.Logger))
		for _, p := range deps.Plugins {
			p.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
