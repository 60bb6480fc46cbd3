package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/kelas/internal/identity/http"
	"github.com/aussiebroadwan/kelas/internal/identity/revocation"
	"github.com/aussiebroadwan/kelas/internal/identity/service"
	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/postgres"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/kelas/internal/identity/validation"
	"github.com/aussiebroadwan/kelas/pkg/cryptox"
	"github.com/aussiebroadwan/kelas/pkg/httpx"
	"github.com/aussiebroadwan/kelas/pkg/jwtx"
	"github.com/aussiebroadwan/kelas/pkg/slogx"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/kelas/internal/identity/app.BuildVersion=..."
var BuildVersion = "v0.1.0"

// Application is the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	cache      revocation.Cache
	keyManager *jwtx.KeyManager

	tokenService        *service.TokenService
	accountService      *service.AccountService
	adminService        *service.AdminService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates the application: database, signing keys, revocation cache,
// services and HTTP router, then bootstraps the first admin if configured.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := httpx.SetTrustedProxies(app.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// database first, persistent keys live in it
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	keyManager, err := InitAuthKeys(ctx, app.cfg, app.db, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initCache(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	bootstrapCtx := slogx.WithContext(ctx, app.logger)
	if _, err := app.adminService.Bootstrap(bootstrapCtx, service.BootstrapAdmin{
		Username: cfg.BootstrapAdminUsername,
		Password: cfg.BootstrapAdminPassword,
		Email:    cfg.BootstrapAdminEmail,
	}); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// Handler returns the root HTTP handler, for tests that serve it without
// a listener.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (app *Application) Serve(ctx context.Context, ln net.Listener) error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting", "addr", ln.Addr().String(), "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
	}

	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.close(); err != nil {
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// close releases the cache and the database.
func (app *Application) close() error {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing revocation cache", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, postgres.Config{
			DSN:      app.cfg.DatabaseURL,
			MaxConns: int32(app.cfg.DatabaseMaxConns),
		})
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s database: %w", app.cfg.DatabaseDriver, err)
	}
	app.db = db

	if !app.cfg.AutoMigrate {
		app.logger.Info("database auto migration disabled", "driver", app.cfg.DatabaseDriver)
		return nil
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCache connects the redis revocation cache when REDIS_ADDR is set.
func (app *Application) initCache(ctx context.Context) error {
	if app.cfg.RedisAddr == "" {
		app.cache = revocation.Nop{}
		return nil
	}

	cache, err := revocation.NewRedis(ctx, revocation.RedisConfig{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect revocation cache: %w", err)
	}
	app.cache = cache

	app.logger.Info("revocation cache enabled", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Store:      app.db,
		Revoked:    app.cache,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	v := validation.New(nil)
	app.accountService = &service.AccountService{
		Store:     app.db,
		Tokens:    app.tokenService,
		Validator: v,
	}
	app.adminService = &service.AdminService{
		Store:     app.db,
		Tokens:    app.tokenService,
		Validator: v,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager,
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
	)
	router.AccountService = app.accountService
	router.AdminService = app.adminService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
