package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/cache"
	"github.com/aussiebroadwan/invitegate/internal/gate/chain"
	httpapi "github.com/aussiebroadwan/invitegate/internal/gate/http"
	"github.com/aussiebroadwan/invitegate/internal/gate/lock"
	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/internal/gate/ratelimit"
	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/internal/gate/store/drivers/postgres"
	"github.com/aussiebroadwan/invitegate/internal/gate/store/drivers/sqlite"
	"github.com/aussiebroadwan/invitegate/pkg/jwtx"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application owns the gate's dependencies and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	redis    *redis.Client // nil in single instance mode
	ledger   *chain.Client
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	cache        *cache.CacheAside
	locker       lock.Locker
	limiters     map[string]ratelimit.Limiter
	verifier     jwtx.Verifier
	inviteSvc    *service.InviteService
	oracle       *service.EligibilityOracle
	coordinator  *service.ReservationCoordinator
	statsService *service.StatsService

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "invitegate",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New validates cfg and initialises every dependency.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initBackends(ctx); err != nil {
		app.closeBackends()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.closeBackends()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.statsService.Start()

	app.logger.Info("invite gate starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
		slog.String("store", app.cfg.StoreDriver),
		slog.Bool("shared_state", app.redis != nil),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.statsService.Stop()
		app.closeBackends()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops the stats refresher and closes
// the backends.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down invite gate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	app.statsService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("invite gate stopped")
	return nil
}

// Handler exposes the router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// OpenStore opens the configured store without migrating it.
func OpenStore(cfg Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		return postgres.NewStore(postgres.DSN(
			cfg.PostgresHost, cfg.PostgresPort,
			cfg.PostgresUser, cfg.PostgresPassword,
			cfg.PostgresDB, cfg.PostgresSSLMode,
		))
	case DriverSQLite:
		return sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// NewCreatorSigner returns the HS256 signer for creator tokens, or nil when no
// secret is configured.
func NewCreatorSigner(cfg Config) (*jwtx.HS256, error) {
	if cfg.CreatorJWTSecret == "" {
		return nil, nil
	}
	return jwtx.NewHS256([]byte(cfg.CreatorJWTSecret), cfg.CreatorJWTIssuer)
}

func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", slog.String("driver", app.cfg.StoreDriver))
	return nil
}

// initBackends picks shared (redis) or in-process state, dials the chain and
// prepares the metrics registry.
func (app *Application) initBackends(ctx context.Context) error {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	limiterCfg := func(scope string) ratelimit.Config {
		return ratelimit.Config{Prefix: scope, Points: app.cfg.RateLimitPoints, Window: app.cfg.RateLimitWindow}
	}
	scopes := []string{ratelimit.ScopeCreateCode, ratelimit.ScopeReserveCode, ratelimit.ScopeRegisterNFT}
	app.limiters = make(map[string]ratelimit.Limiter, len(scopes))

	if app.cfg.RedisURL != "" {
		opts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid GATE_REDIS_URL: %w", err)
		}
		app.redis = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}

		app.cache = cache.New(cache.NewRedisBackend(app.redis), app.metrics)
		app.locker = lock.NewRedisLocker(app.redis, app.cfg.LockTimeout)
		for _, s := range scopes {
			app.limiters[s] = ratelimit.NewRedisLimiter(app.redis, limiterCfg(s))
		}
		app.logger.Info("shared state on redis", slog.String("addr", opts.Addr))
	} else {
		app.cache = cache.New(cache.NewMemoryBackend(10*time.Minute), app.metrics)
		app.locker = lock.NewMemoryLocker(app.cfg.LockTimeout)
		for _, s := range scopes {
			app.limiters[s] = ratelimit.NewMemoryLimiter(limiterCfg(s))
		}
		app.logger.Warn("GATE_REDIS_URL not set, keeping cache, locks and rate limits in process")
	}

	ledger, err := chain.Dial(ctx, app.cfg.RPCURL, common.HexToAddress(app.cfg.StakingContract), app.cfg.RPCRate)
	if err != nil {
		return fmt.Errorf("failed to initialize staking ledger: %w", err)
	}
	app.ledger = ledger

	return nil
}

func (app *Application) initServices() error {
	signer, err := NewCreatorSigner(app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize creator tokens: %w", err)
	}
	if signer != nil {
		app.verifier = signer
	} else {
		app.logger.Warn("GATE_CREATOR_JWT_SECRET not set, invite code creation is unauthenticated")
	}

	app.inviteSvc = &service.InviteService{
		Store:   app.db,
		Cache:   app.cache,
		Limiter: app.limiters[ratelimit.ScopeCreateCode],
		Metrics: app.metrics,
	}
	app.oracle = &service.EligibilityOracle{
		Ledger:  app.ledger,
		Cache:   app.cache,
		Metrics: app.metrics,
		Timeout: app.cfg.RPCTimeout,
	}
	app.coordinator = &service.ReservationCoordinator{
		Store:       app.db,
		Cache:       app.cache,
		Locker:      app.locker,
		Oracle:      app.oracle,
		CodeLimiter: app.limiters[ratelimit.ScopeReserveCode],
		NFTLimiter:  app.limiters[ratelimit.ScopeRegisterNFT],
		Metrics:     app.metrics,
	}
	app.statsService = service.NewStatsService(app.db, app.metrics, app.logger, app.cfg.StatsInterval)

	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		app.db,
		app.cache,
		app.registry,
		app.cfg.CORSOrigins,
		app.logger,
	)

	router.InviteService = app.inviteSvc
	router.Coordinator = app.coordinator
	router.Oracle = app.oracle
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) closeBackends() error {
	if app.ledger != nil {
		app.ledger.Close()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", slog.Any("error", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", slog.Any("error", err))
			return err
		}
	}
	return nil
}
