// Package middleware limits how often one client may call the API. Signed
// requests are counted per signer, unsigned ones per client IP.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"voterweight/internal/ratelimit/models"
	"voterweight/pkg/platform/httputil"
	"voterweight/pkg/requestcontext"
)

// BucketStore is a sliding window counter.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Limits is the budget per class within Window.
type Limits struct {
	Read   int
	Write  int
	Window time.Duration
}

type Middleware struct {
	store    BucketStore
	limits   Limits
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(store BucketStore, limits Limits, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: limits,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit must run after the signer and client metadata are in the context.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		class, limit := models.ClassWrite, m.limits.Write
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			class, limit = models.ClassRead, m.limits.Read
		}
		client := "ip:" + requestcontext.ClientIP(ctx)
		if signer, ok := requestcontext.Signer(ctx); ok {
			client = "signer:" + signer.String()
		}

		result, err := m.store.Allow(ctx, models.Key(class, client), limit, m.limits.Window)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit", "error", err, "class", class)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded", "class", class, "client", client)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests. Please try again later.",
				RetryAfter: result.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
