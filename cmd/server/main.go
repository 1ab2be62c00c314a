package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/fintrack/internal/adapter/http"
	"github.com/iho/fintrack/internal/adapter/http/handler"
	"github.com/iho/fintrack/internal/adapter/http/middleware"
	"github.com/iho/fintrack/internal/adapter/live"
	"github.com/iho/fintrack/internal/adapter/messaging/amqp"
	postgresRepo "github.com/iho/fintrack/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fintrack/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/fintrack/internal/adapter/repository/sqlite"
	"github.com/iho/fintrack/internal/infrastructure/auth"
	"github.com/iho/fintrack/internal/infrastructure/config"
	"github.com/iho/fintrack/internal/infrastructure/eventpublisher"
	"github.com/iho/fintrack/internal/infrastructure/idgen"
	"github.com/iho/fintrack/internal/infrastructure/logger"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/infrastructure/redis"
	"github.com/iho/fintrack/internal/infrastructure/retry"
	"github.com/iho/fintrack/internal/usecase"
)

// rateLimiterSweep is how often idle client limiters are evicted.
const rateLimiterSweep = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

// store bundles the repositories of the selected backend.
type store struct {
	transactions usecase.TransactionRepository
	users        usecase.UserRepository
	ping         handler.PingFunc
	close        func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		retrier := retry.New(retry.DefaultConfig(), postgresRepo.IsRetryable, log)
		log.Info().Msg("connected to postgres")
		return &store{
			transactions: postgresRepo.NewTransactionRepository(pool, retrier),
			users:        postgresRepo.NewUserRepository(pool),
			ping:         pool.Ping,
			close:        pool.Close,
		}, nil

	case config.BackendSQLite:
		db, err := sqliteRepo.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		retrier := retry.New(retry.DefaultConfig(), sqliteRepo.IsRetryable, log)
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")
		return &store{
			transactions: sqliteRepo.NewTransactionRepository(db, retrier),
			users:        sqliteRepo.NewUserRepository(db),
			ping:         db.PingContext,
			close:        func() { _ = db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// newEventSink returns the publisher the dispatcher delivers to. Events are
// always logged; with AMQP_URL set they also go to the broker.
func newEventSink(cfg *config.Config, log zerolog.Logger) (usecase.EventPublisher, func() error, error) {
	logSink := eventpublisher.NewLogPublisher(log)
	if cfg.AMQPURL == "" {
		return logSink, func() error { return nil }, nil
	}

	broker, err := amqp.Dial(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect amqp: %w", err)
	}
	return eventpublisher.MultiPublisher{broker, logSink}, broker.Close, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.close()

	checks := []handler.HealthCheck{{Name: cfg.StorageBackend, Ping: db.ping}}

	var (
		feed        usecase.ChangeFeed = live.NewMemoryFeed()
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
	)
	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, redis.DefaultConfig(cfg.RedisURL), log)
		if err != nil {
			return err
		}
		defer client.Close()

		feed = redisRepo.NewChangeFeed(client, log)
		cache = redisRepo.NewCache(client)
		idempotency = redisRepo.NewIdempotencyStore(client)
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: redisPing(client)})
	}

	sink, closeSink, err := newEventSink(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Warn().Err(err).Msg("failed to close event sink")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	dispatcher := eventpublisher.NewDispatcher(eventpublisher.Config{
		Sink:       sink,
		Logger:     log,
		MaxRetries: 3,
	})

	ids := idgen.NewULIDGenerator()
	transactions := usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		Repo:      db.transactions,
		IDGen:     ids,
		Feed:      feed,
		Publisher: dispatcher,
		Metrics:   m,
		Logger:    log,
	})
	users := usecase.NewUserUseCase(usecase.UserUseCaseConfig{
		Repo:     db.users,
		IDGen:    ids,
		Cache:    cache,
		CacheTTL: cfg.ProfileCacheTTL,
		Metrics:  m,
		Logger:   log,
	})
	dashboard := usecase.NewDashboardUseCase(db.transactions, m, loc)
	hub := live.NewHub(db.transactions, feed, log)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(users, tokens, m, log),
		TransactionHandler: handler.NewTransactionHandler(transactions, loc),
		CategoryHandler:    handler.NewCategoryHandler(dashboard),
		DashboardHandler:   handler.NewDashboardHandler(dashboard, log),
		LiveHandler: handler.NewLiveHandler(func(ownerID string) handler.LiveDashboard {
			return usecase.NewDashboard(usecase.DashboardConfig{
				OwnerID:  ownerID,
				Source:   hub,
				Writer:   transactions,
				Metrics:  m,
				Location: loc,
			})
		}, loc, log),
		HealthHandler:    handler.NewHealthHandler(checks...),
		TokenVerifier:    tokens,
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      limiter,
		HTTPMetrics:      m,
		MetricsGatherer:  registry,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Start(gctx) })
	g.Go(func() error { return limiter.Run(gctx, rateLimiterSweep) })
	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StorageBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func redisPing(client *goredis.Client) handler.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
