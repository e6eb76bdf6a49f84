package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"voterweight/internal/fixtures"
	jwttoken "voterweight/internal/jwt_token"
	"voterweight/internal/ledger"
	"voterweight/internal/platform/config"
	"voterweight/internal/platform/httpserver"
	"voterweight/internal/platform/logger"
	"voterweight/internal/platform/metrics"
	"voterweight/internal/platform/redis"
	"voterweight/internal/platform/tracing"
	httptransport "voterweight/internal/transport/http"
)

const tokenAudience = "voterweight"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the ledger, the event sink and the plugins behind one HTTP
// server and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("flush traces", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	health := map[string]httptransport.HealthCheck{}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		health["redis"] = redisClient.Health
	}

	store, closeStore, err := openStore(ctx, cfg, redisClient, health)
	if err != nil {
		return err
	}
	defer closeStore()

	l, err := ledger.New(store, ledger.NewWallClock(cfg.Ledger.Genesis, cfg.Ledger.SlotDuration), ledger.WithLogger(log))
	if err != nil {
		return err
	}
	if cfg.Ledger.SeedFile != "" {
		accounts, err := fixtures.LoadFile(cfg.Ledger.SeedFile)
		if err != nil {
			return err
		}
		if err := l.Seed(ctx, accounts...); err != nil {
			return fmt.Errorf("seed ledger: %w", err)
		}
		log.Info("ledger seeded", "accounts", len(accounts), "file", cfg.Ledger.SeedFile)
	}

	publisher, err := openPublisher(ctx, cfg.Kafka, health, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close publisher", "error", err)
		}
	}()

	plugins, err := buildPlugins(cfg.Plugins, l, log, m, publisher)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Tokens:    jwttoken.NewJWTService(tokenAudience, cfg.Server.MaxTokenAge),
		Records:   l,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Health:    health,
		Plugins:   plugins,
		RateLimit: rateLimiter(cfg.RateLimit, redisClient, log).RateLimit,
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting voterweight", "addr", cfg.Server.Addr, "backend", cfg.Ledger.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
