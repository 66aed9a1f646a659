package lastexercise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/last-exercise/internal/cache"
	"github.com/magabrotheeeer/last-exercise/internal/config"
	"github.com/magabrotheeeer/last-exercise/internal/grpc/client"
	"github.com/magabrotheeeer/last-exercise/internal/lib/jwt"
	"github.com/magabrotheeeer/last-exercise/internal/lib/metrics"
	"github.com/magabrotheeeer/last-exercise/internal/lib/password"
	"github.com/magabrotheeeer/last-exercise/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/migrations"
	"github.com/magabrotheeeer/last-exercise/internal/services/exercises"
	"github.com/magabrotheeeer/last-exercise/internal/services/tracker"
	"github.com/magabrotheeeer/last-exercise/internal/services/users"
	"github.com/magabrotheeeer/last-exercise/internal/storage"
	"github.com/magabrotheeeer/last-exercise/internal/storage/memory"
	"github.com/magabrotheeeer/last-exercise/internal/storage/postgres"
)

type userCache interface {
	users.Cache
	io.Closer
}

type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []io.Closer
}

// New собирает приложение по конфигу: хранилище, кэш, брокер, сервисы и маршруты.
// Redis и RabbitMQ необязательны: без адреса используются заглушки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "lastexercise.New"

	app := &App{logger: logger}
	fail := func(err error) (*App, error) {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, store)

	var c userCache = cache.Nop{}
	if cfg.RedisConnection.Address != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return fail(err)
		}
		c = redisCache
		app.closers = append(app.closers, redisCache)
	} else {
		logger.Info("redis address is not set, cache disabled")
	}

	var publisher interface {
		tracker.Publisher
		io.Closer
	} = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.Delay)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, conn)
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.ExerciseQueues(cfg.RabbitMQ.RoutingKey))
		if err != nil {
			return fail(err)
		}
		publisher = rabbitmq.NewPublisher(ch, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
		app.closers = append([]io.Closer{publisher}, app.closers...)
	} else {
		logger.Info("rabbitmq url is not set, events disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	hasher, err := password.NewHasher(cfg.Password.Cost)
	if err != nil {
		return fail(err)
	}
	tokens, err := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	if err != nil {
		return fail(err)
	}

	trackerService := tracker.New(store, hasher, tokens, logger,
		tracker.WithCache(c),
		tracker.WithPublisher(publisher),
		tracker.WithMetrics(m),
		tracker.WithStrictOwnership(cfg.Tracker.StrictOwnership),
	)

	deps := Deps{
		Tracker:         trackerService,
		Users:           users.New(store, c, logger),
		Exercises:       exercises.New(store, c, logger),
		Pinger:          store,
		Metrics:         m,
		Gatherer:        reg,
		RateLimit:       cfg.RateLimit,
		CORS:            cfg.CORS,
		StrictOwnership: cfg.Tracker.StrictOwnership,
	}

	if cfg.GRPCAuthAddress != "" {
		tokenClient, err := client.NewTokenClient(cfg.GRPCAuthAddress)
		if err != nil {
			return fail(err)
		}
		deps.Validator = tokenClient
		app.closers = append([]io.Closer{tokenClient}, app.closers...)
		logger.Info("tokens are validated by auth service", slog.String("address", cfg.GRPCAuthAddress))
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

type pingStore interface {
	storage.Store
	Ping(ctx context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pingStore, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		db, err := postgres.New(ctx, cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		if err = migrations.Run(db.DB(), cfg.MigrationsPath); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}

// Handler возвращает корневой HTTP-обработчик.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}
