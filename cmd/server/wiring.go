package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voterweight/internal/events"
	"voterweight/internal/ledger"
	"voterweight/internal/ledger/store/memory"
	redisstore "voterweight/internal/ledger/store/redis"
	"voterweight/internal/ledger/store/sqlstore"
	"voterweight/internal/platform/config"
	"voterweight/internal/platform/database"
	"voterweight/internal/platform/metrics"
	"voterweight/internal/platform/redis"
	gatewayhandler "voterweight/internal/plugins/gateway/handler"
	gatewayservice "voterweight/internal/plugins/gateway/service"
	nfthandler "voterweight/internal/plugins/nft/handler"
	nftservice "voterweight/internal/plugins/nft/service"
	quadratichandler "voterweight/internal/plugins/quadratic/handler"
	quadraticservice "voterweight/internal/plugins/quadratic/service"
	realmvoterhandler "voterweight/internal/plugins/realmvoter/handler"
	realmvoterservice "voterweight/internal/plugins/realmvoter/service"
	stakehandler "voterweight/internal/plugins/stake/handler"
	stakeservice "voterweight/internal/plugins/stake/service"
	tokenhaverhandler "voterweight/internal/plugins/tokenhaver/handler"
	tokenhaverservice "voterweight/internal/plugins/tokenhaver/service"
	tokenvoterhandler "voterweight/internal/plugins/tokenvoter/handler"
	tokenvoterservice "voterweight/internal/plugins/tokenvoter/service"
	ratelimit "voterweight/internal/ratelimit/middleware"
	"voterweight/internal/ratelimit/store/bucket"
	httptransport "voterweight/internal/transport/http"
	"voterweight/internal/voterweight/core"
	"voterweight/pkg/domain"
)

// openStore builds the configured ledger backend and registers its health
// check. The returned func releases the connection it opened.
func openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, health map[string]httptransport.HealthCheck) (ledger.Store, func(), error) {
	switch cfg.Ledger.Backend {
	case config.BackendPostgres:
		db, err := database.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return sqlStore(ctx, db, sqlstore.Postgres, health)
	case config.BackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return sqlStore(ctx, db, sqlstore.SQLite, health)
	case config.BackendRedis:
		if redisClient == nil {
			return nil, nil, errors.New("redis backend needs REDIS_URL")
		}
		return redisstore.New(redisClient.Client), func() {}, nil
	default:
		return memory.New(), func() {}, nil
	}
}

func sqlStore(ctx context.Context, db *sql.DB, dialect sqlstore.Dialect, health map[string]httptransport.HealthCheck) (ledger.Store, func(), error) {
	if err := sqlstore.ApplyMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	health["database"] = db.PingContext
	return sqlstore.New(db, dialect), func() { _ = db.Close() }, nil
}

// openPublisher returns the Kafka sink behind a circuit breaker, or an
// in-process sink when Kafka is off.
func openPublisher(ctx context.Context, cfg config.Kafka, health map[string]httptransport.HealthCheck, log *slog.Logger) (events.Publisher, error) {
	if !cfg.Enabled {
		return events.NewMemoryPublisher(), nil
	}
	kp, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic,
		events.WithClientID(cfg.ClientID),
		events.WithLinger(5*time.Millisecond),
		events.WithKafkaLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if err := kp.EnsureTopic(ctx, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		_ = kp.Close()
		return nil, err
	}
	health["kafka"] = kp.Ping
	return events.NewBreakerPublisher(kp, cfg.BreakerThreshold, cfg.BreakerCooldown, log), nil
}

type plugin struct {
	name    string
	program domain.Pubkey
	routes  func(rt *core.Runtime, log *slog.Logger) httptransport.Routes
}

func buildPlugins(cfg config.Plugins, l *ledger.Ledger, log *slog.Logger, m *metrics.Metrics, publisher events.Publisher) ([]httptransport.Routes, error) {
	all := []plugin{
		{stakeservice.PluginName, cfg.Stake, func(rt *core.Runtime, log *slog.Logger) httptransport.Routes {
			return stakehandler.New(stakeservice.New(rt), log)
		}},
		{nftservice.PluginName, cfg.NFT, func(rt *core.Runtime, log *slog.Logger) httptransport.Routes {
			return nfthandler.New(nftservice.New(rt), log)
		}},
		{quadraticservice.PluginName, cfg.Quadratic, func(rt *core.Runtime, log *slog.Logger) httptransport.Routes {
			return quadratichandler.New(quadraticservice.New(rt), log)
		}},
		{realmvoterservice.PluginName, cfg.RealmVoter, func(rt *core.Runtime, log *slog.Logger) httptransport.Routes {
			return realmvoterhandler.New(realmvoterservice.New(rt), log)
		}},
		{tokenhaverservice.PluginName, cfg.TokenHaver, func(rt *core.Runtime, log *slog.Logger) httptransport.Routes {
			return tokenhaverhandler.New(tokenhaverservice.New(rt), log)
		}},
		{tokenvoterservice.PluginName, cfg.TokenVoter, func(rt *core.Runtime, log *slog.Logger) httptransport.Routes {
			return tokenvoterhandler.New(tokenvoterservice.New(rt), log)
		}},
		{gatewayservice.PluginName, cfg.Gateway, func(rt *core.Runtime, log *slog.Logger) httptransport.Routes {
			return gatewayhandler.New(gatewayservice.New(rt), log)
		}},
	}

	routes := make([]httptransport.Routes, 0, len(all))
	for _, p := range all {
		plog := log.With("plugin", p.name)
		rt, err := core.NewRuntime(core.Plugin{Name: p.name, ProgramID: p.program}, l,
			core.WithLogger(plog),
			core.WithMetrics(m),
			core.WithPublisher(publisher),
		)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", p.name, err)
		}
		routes = append(routes, p.routes(rt, plog))
	}
	return routes, nil
}

// rateLimiter shares buckets across instances through Redis when it is
// configured and keeps them in process otherwise.
func rateLimiter(cfg config.RateLimit, redisClient *redis.Client, log *slog.Logger) *ratelimit.Middleware {
	limits := ratelimit.Limits{Read: cfg.Read, Write: cfg.Write, Window: cfg.Window}
	disabled := ratelimit.WithDisabled(!cfg.Enabled)
	if redisClient != nil {
		return ratelimit.New(bucket.NewRedis(redisClient.Client), limits, log, disabled)
	}
	return ratelimit.New(bucket.New(), limits, log, disabled)
}
