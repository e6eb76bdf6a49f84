// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"voterweight/pkg/domain"
)

// Ledger backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

type Config struct {
	Server    Server    `envPrefix:"SERVER_"`
	Log       Log       `envPrefix:"LOG_"`
	Ledger    Ledger    `envPrefix:"LEDGER_"`
	Postgres  Postgres  `envPrefix:"POSTGRES_"`
	SQLite    SQLite    `envPrefix:"SQLITE_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
	Tracing   Tracing   `envPrefix:"OTEL_"`
	Plugins   Plugins   `envPrefix:"PLUGIN_"`
	RateLimit RateLimit `envPrefix:"RATELIMIT_"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `env:"ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// Tokens older than this are rejected even when unexpired.
	MaxTokenAge time.Duration `env:"MAX_TOKEN_AGE" envDefault:"5m"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Ledger selects the account store and the slot clock.
type Ledger struct {
	Backend      string        `env:"BACKEND" envDefault:"memory"`
	SlotDuration time.Duration `env:"SLOT_DURATION" envDefault:"400ms"`
	Genesis      time.Time     `env:"GENESIS" envDefault:"2024-01-01T00:00:00Z"`
	// YAML file of external accounts written before serving.
	SeedFile string `env:"SEED_FILE"`
}

type Postgres struct {
	URL string `env:"URL"`
	// Driver is "postgres" (lib/pq) or "pgx".
	Driver       string        `env:"DRIVER" envDefault:"postgres"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

type SQLite struct {
	Path string `env:"PATH" envDefault:"voterweight.db"`
}

// Redis is left unconfigured when URL is empty.
type Redis struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

type Kafka struct {
	Enabled           bool          `env:"ENABLED" envDefault:"false"`
	Brokers           []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic             string        `env:"TOPIC" envDefault:"voterweight.weight-updated"`
	ClientID          string        `env:"CLIENT_ID" envDefault:"voterweight"`
	Partitions        int32         `env:"PARTITIONS" envDefault:"3"`
	ReplicationFactor int16         `env:"REPLICATION_FACTOR" envDefault:"1"`
	BreakerThreshold  int           `env:"BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown   time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// Tracing is off when Endpoint is empty.
type Tracing struct {
	Endpoint    string  `env:"ENDPOINT"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"voterweight"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// Plugins holds the program id each plugin owns its accounts under.
type Plugins struct {
	Stake      domain.Pubkey `env:"STAKE" envDefault:"7yJT49ajgYyuhWYzQMzwEt9u9Zbbt7r8Ft2wq1bhhfyy"`
	NFT        domain.Pubkey `env:"NFT" envDefault:"GnftV5kLjd67tvHpNGyodwWveEKivz3ZWvvE3Z4xi2iw"`
	Quadratic  domain.Pubkey `env:"QUADRATIC" envDefault:"quadCSapU8nTdLg73KHDnmdxKnJQsh7GUbu5tZfnRRr"`
	RealmVoter domain.Pubkey `env:"REALM_VOTER" envDefault:"GRmVtfLq2BPeWs5EDoQoZc787VYkhdkA11k63QM1Xemz"`
	TokenHaver domain.Pubkey `env:"TOKEN_HAVER" envDefault:"7gobfUihgoxA14RUnVaseoah89ggCgYAzgz1JoaPAXam"`
	TokenVoter domain.Pubkey `env:"TOKEN_VOTER" envDefault:"3JhBg9bSPcfWGFa3t8LH7ooVtrjm45yCkHpxYXMXstUM"`
	Gateway    domain.Pubkey `env:"GATEWAY" envDefault:"GgathUhdrCWRHowoRKACjgWhYHfxCEdBi5ViqYN6HVxk"`
}

// RateLimit budgets requests per signer, or per client IP when unsigned.
// Buckets live in Redis whenever REDIS_URL is set.
type RateLimit struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Read    int           `env:"READ" envDefault:"300"`
	Write   int           `env:"WRITE" envDefault:"60"`
	Window  time.Duration `env:"WINDOW" envDefault:"1m"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return errors.New("POSTGRES_URL is required for the postgres ledger")
		}
		if c.Postgres.Driver != "postgres" && c.Postgres.Driver != "pgx" {
			return fmt.Errorf("unsupported postgres driver %q", c.Postgres.Driver)
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required for the redis ledger")
		}
	default:
		return fmt.Errorf("unsupported ledger backend %q", c.Ledger.Backend)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Read <= 0 || c.RateLimit.Write <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("RATELIMIT_READ, RATELIMIT_WRITE and RATELIMIT_WINDOW must be positive")
	}
	if c.Ledger.SlotDuration <= 0 {
		return errors.New("LEDGER_SLOT_DURATION must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when events are enabled")
	}
	return nil
}
