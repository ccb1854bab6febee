package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parenthub/authcore/internal/idp/directory"
	httpapi "github.com/parenthub/authcore/internal/idp/http"
	"github.com/parenthub/authcore/internal/idp/keystore"
	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/internal/idp/store"
	redisstore "github.com/parenthub/authcore/internal/idp/store/drivers/redis"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/jwtx"
	"github.com/parenthub/authcore/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity-provider service with all its
// dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	store    store.Store
	keystore keystore.Keystore
	pool     *jwtx.KeyPool
	dir      directory.Directory

	cookieCodec cryptox.Codec
	bearerCodec cryptox.Codec

	// Services
	passportService     *service.PassportService
	sessionService      *service.SessionService
	keyRotationService  *service.KeyRotationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authcore",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initCodecs(); err != nil {
		return nil, err
	}
	if err := app.initStores(); err != nil {
		return nil, err
	}

	app.pool = jwtx.NewKeyPool(nil)
	app.dir = directory.NewMemory()

	app.initServices()

	if err := InitSigningKeys(context.Background(), cfg, app.keyRotationService, app.logger); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("authcore starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authcore...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing credential store", "error", err)
	}
	if err := app.keystore.Close(); err != nil {
		app.logger.Error("error closing keystore", "error", err)
		return err
	}

	app.logger.Info("authcore stopped")
	return nil
}

// initCodecs builds the two trust-domain codecs. Both secrets are required;
// running without them would mean unverifiable cookies and bearer tokens.
func (app *Application) initCodecs() error {
	cookieCodec, err := cryptox.NewCodec(app.cfg.CookieSecret)
	if err != nil {
		return fmt.Errorf("AUTH_COOKIE_SECRET: %w", err)
	}
	bearerCodec, err := cryptox.NewCodec(app.cfg.BearerSecret)
	if err != nil {
		return fmt.Errorf("AUTH_BEARER_SECRET: %w", err)
	}
	if app.cfg.CookieSecret == app.cfg.BearerSecret {
		return fmt.Errorf("cookie and bearer secrets must differ")
	}

	app.cookieCodec = cookieCodec
	app.bearerCodec = bearerCodec
	return nil
}

// initStores connects the redis credential store and opens the SQLite
// keystore with its migrations.
func (app *Application) initStores() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := redisstore.Connect(ctx, app.cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect credential store: %w", err)
	}
	app.store = st

	ks, err := keystore.OpenSQLite(app.cfg.KeystoreFile)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to open keystore: %w", err)
	}
	app.keystore = ks

	app.logger.Info("stores initialized",
		"redis_addr", app.cfg.RedisAddr,
		"keystore_file", app.cfg.KeystoreFile,
	)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.passportService = &service.PassportService{Store: app.store}

	app.sessionService = &service.SessionService{
		Store:           app.store,
		Directory:       app.dir,
		Pool:            app.pool,
		BearerCodec:     app.bearerCodec,
		Issuer:          app.cfg.Issuer,
		AccessTokenTTL:  app.cfg.AccessTokenTTL,
		RefreshTokenTTL: app.cfg.RefreshTokenTTL,
	}

	app.keyRotationService = &service.KeyRotationService{
		Keystore:    app.keystore,
		Pool:        app.pool,
		Algorithm:   app.cfg.Algorithm,
		GracePeriod: app.cfg.KeyGracePeriod,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.keystore,
		app.pool,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.pool,
		BuildVersion,
		app.store,
		app.keystore,
		app.logger,
	)

	router.CookieCodec = app.cookieCodec
	router.BearerCodec = app.bearerCodec
	router.CookieSecure = app.cfg.CookieSecure
	router.Directory = app.dir
	router.PassportService = app.passportService
	router.SessionService = app.sessionService
	router.KeyRotationService = app.keyRotationService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
