package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	minSecretLen = 16
)

type Config struct {
	Port      string `env:"PORT,       default=5001"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// StoreDriver selects the persistence backend: mongo or memory.
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`

	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Dispatch  DispatchConfig

	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:3000"`
}

type JWTConfig struct {
	Secret string `env:"JWT_SECRET, required"`
	Issuer string `env:"JWT_ISSUER, default=dispatch-system"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=waste_dispatch"`
}

// RedisConfig is optional: an empty Addr keeps rate limiting in-process.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS, default=100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW,   default=15m"`
}

type DispatchConfig struct {
	AuditWorkers  int  `env:"AUDIT_WORKERS,            default=4"`
	ScopeToDriver bool `env:"DISPATCH_SCOPE_TO_DRIVER, default=false"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver))
	}
	if c.StoreDriver == StoreMongo && c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
	}
	if c.RateLimit.Requests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Dispatch.AuditWorkers <= 0 {
		errs = append(errs, errors.New("AUDIT_WORKERS must be positive"))
	}
	if !c.IsDevelopment() && len(c.JWT.Secret) < minSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes outside development", minSecretLen))
	}

	return errors.Join(errs...)
}
