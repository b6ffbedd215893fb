package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenroute/dispatch-system/internal/infrastructure/config"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "dev",
	}))
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, config.StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "waste_dispatch", cfg.Mongo.Database)
	assert.Equal(t, "dispatch-system", cfg.JWT.Issuer)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.Dispatch.AuditWorkers)
	assert.False(t, cfg.Dispatch.ScopeToDriver)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":               "a-very-long-production-secret",
		"ENV":                      "production",
		"STORE_DRIVER":             "memory",
		"REDIS_ADDR":               "redis:6379",
		"RATE_LIMIT_REQUESTS":      "10",
		"RATE_LIMIT_WINDOW":        "1m",
		"CORS_ORIGINS":             "https://a.example,https://b.example",
		"DISPATCH_SCOPE_TO_DRIVER": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Dispatch.ScopeToDriver)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadFrom_SecretRequired(t *testing.T) {
	_, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			Env:         "production",
			StoreDriver: config.StoreMemory,
			JWT:         config.JWTConfig{Secret: "0123456789abcdef"},
			RateLimit:   config.RateLimitConfig{Requests: 1, Window: time.Second},
			Dispatch:    config.DispatchConfig{AuditWorkers: 1},
		}
	}

	valid := base()
	require.NoError(t, valid.Validate())

	cases := map[string]func(*config.Config){
		"unknown driver":  func(c *config.Config) { c.StoreDriver = "postgres" },
		"short secret":    func(c *config.Config) { c.JWT.Secret = "short" },
		"zero requests":   func(c *config.Config) { c.RateLimit.Requests = 0 },
		"negative window": func(c *config.Config) { c.RateLimit.Window = -time.Second },
		"no workers":      func(c *config.Config) { c.Dispatch.AuditWorkers = 0 },
		"mongo no uri":    func(c *config.Config) { c.StoreDriver = config.StoreMongo },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	dev := base()
	dev.Env = "development"
	dev.JWT.Secret = "short"
	require.NoError(t, dev.Validate())
}
