package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aayus49/spiritual-wellness/internal/api"
	"github.com/aayus49/spiritual-wellness/internal/api/handler"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/core/service"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/config"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/accounts"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/memory"
	mongodb "github.com/aayus49/spiritual-wellness/internal/infrastructure/db/mongo"
	redisdb "github.com/aayus49/spiritual-wellness/internal/infrastructure/db/redis"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/sqlite"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/identity"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/queue"
	"github.com/aayus49/spiritual-wellness/internal/seed"
	"github.com/aayus49/spiritual-wellness/pkg/logger"
)

const devJWTSecret = "dev-only-secret"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.New(logger.Options{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "spiritual-wellness",
	})

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	backend, checks, opts, cleanup, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("failed to open backend")
	}
	defer cleanup()

	opts = append(opts, service.WithActivityLimit(cfg.ActivityLimit))

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		opts = append(opts, service.WithIdempotency(redisdb.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Info().Msg("REDIS_ADDR not set, booking idempotency disabled")
	}

	stores := service.NewStoreFactory(backend, log, opts...)
	tokens := identity.NewJWT(cfg.JWTSecret)
	repo := accounts.NewRepository(backend)
	accountSvc := service.NewAccountService(repo, tokens, stores, cfg.TokenTTL, log)

	if cfg.SeedDemo {
		if err := seed.New(accountSvc, repo, stores, log).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	e := api.NewRouter(api.Deps{
		Stores:   stores,
		Accounts: accountSvc,
		Tokens:   tokens,
		Checks:   checks,
		Logger:   log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openBackend returns the configured persistence backend with its readiness
// checks and the store options it needs.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Backend, map[string]handler.Check, []service.Option, func(), error) {
	checks := make(map[string]handler.Check)

	switch cfg.Backend {
	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, nil, err
		}
		mb := mongodb.NewBackend(db)
		if err := mb.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, nil, err
		}
		checks["mongodb"] = mb.Ping

		// Writes to the shared database go through per-record lanes, and
		// every session reloads after writing to pick up other users' changes.
		dispatcher := queue.NewDispatcher(cfg.WriteWorkers, mb, log)
		dispatchCtx, cancel := context.WithCancel(context.Background())
		dispatcher.Start(dispatchCtx)

		cleanup := func() {
			cancel()
			_ = client.Disconnect(context.Background())
		}
		return dispatcher, checks, []service.Option{service.WithRefreshAfterWrite(true)}, cleanup, nil

	case config.BackendMemory:
		log.Warn().Msg("memory backend selected, data is lost on restart")
		return memory.New(true), checks, nil, func() {}, nil

	default:
		sb, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		checks["sqlite"] = sb.Ping
		cleanup := func() {
			if err := sb.Close(); err != nil {
				log.Error().Err(err).Msg("closing sqlite")
			}
		}
		return sb, checks, nil, cleanup, nil
	}
}
