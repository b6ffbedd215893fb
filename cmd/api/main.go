// @title                       Waste Management Dispatch API
// @version                     1.0
// @description                 Authorization-gated dispatch job lifecycle for waste collection.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/greenroute/dispatch-system/internal/api"
	"github.com/greenroute/dispatch-system/internal/api/middleware"
	"github.com/greenroute/dispatch-system/internal/core/ports"
	"github.com/greenroute/dispatch-system/internal/core/service"
	"github.com/greenroute/dispatch-system/internal/infrastructure/config"
	"github.com/greenroute/dispatch-system/internal/infrastructure/db/memory"
	mongodb "github.com/greenroute/dispatch-system/internal/infrastructure/db/mongo"
	redisdb "github.com/greenroute/dispatch-system/internal/infrastructure/db/redis"
	"github.com/greenroute/dispatch-system/internal/infrastructure/http/handlers"
	"github.com/greenroute/dispatch-system/internal/infrastructure/queue"
	"github.com/greenroute/dispatch-system/pkg/logger"
)

const (
	serviceName     = "dispatch-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// a missing .env is fine: the process environment is used as-is
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fatalLog := zerolog.New(os.Stderr)
		fatalLog.Fatal().Err(err).Str("service", serviceName).Msg("dispatch api stopped")
	}
}

type stores struct {
	users  ports.AuthRepository
	jobs   ports.JobRepository
	events ports.EventRepository
	ready  map[string]handlers.Pinger
	close  func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		users := memory.NewUserStore()
		return &stores{
			users:  users,
			jobs:   memory.NewJobStore(),
			events: memory.NewEventStore(),
			ready:  map[string]handlers.Pinger{"store": users},
			close:  func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return nil, err
	}

	users := mongodb.NewUserRepository(db)
	jobs := mongodb.NewJobRepository(db)
	events := mongodb.NewEventRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, jobs, events); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	return &stores{
		users:  users,
		jobs:   jobs,
		events: events,
		ready:  map[string]handlers.Pinger{"mongodb": mongodb.ClientPinger{Client: client}},
		close:  client.Disconnect,
	}, nil
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Env:     cfg.Env,
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("store disconnect failed")
		}
	}()

	// --- Rate limiting: shared through Redis when configured ---
	var (
		limitStore   echomiddleware.RateLimiterStore
		limitBackend string
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		limitStore = redisdb.NewRateLimitStore(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger.Component("ratelimit"))
		limitBackend = "redis"
		st.ready["redis"] = redisdb.ClientPinger{Client: rdb}
	} else {
		limitStore = middleware.NewMemoryRateLimitStore(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limitBackend = "memory"
	}

	// --- Core services ---
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	authService, err := service.NewAuthService(st.users, tokens, logger.Component("auth"))
	if err != nil {
		return err
	}

	eventService := service.NewEventService(st.events, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.Dispatch.AuditWorkers, eventService, logger.Component("audit"))
	dispatcher.Start(ctx)

	jobService := service.NewJobService(st.jobs, st.events, dispatcher, logger.Component("dispatch"),
		service.WithDriverScope(cfg.Dispatch.ScopeToDriver))

	e := api.NewRouter(api.Dependencies{
		Log:              log,
		Auth:             authService,
		Tokens:           tokens,
		Jobs:             jobService,
		RateLimitStore:   limitStore,
		RateLimitBackend: limitBackend,
		CORSOrigins:      cfg.CORSOrigins,
		Readiness:        st.ready,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Str("rate_limit", limitBackend).Msg("dispatch api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit queue not fully drained")
	}
	log.Info().Msg("dispatch api stopped")
	return nil
}
