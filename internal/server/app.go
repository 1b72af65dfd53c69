// Package server initializes and runs the auth service: it opens the
// database, applies migrations, wires the session service to the HTTP
// router and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/seedvest/internal/logging"
	"github.com/dmitrijs2005/seedvest/internal/server/auth"
	"github.com/dmitrijs2005/seedvest/internal/server/config"
	"github.com/dmitrijs2005/seedvest/internal/server/httpapi"
	"github.com/dmitrijs2005/seedvest/internal/server/migrations"
	"github.com/dmitrijs2005/seedvest/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/seedvest/internal/server/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	repo := accounts.NewPostgresRepository(db)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	issuer := auth.NewTokenIssuer(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration,
	)
	svc := sessions.NewService(repo, hasher, issuer, logger)

	var limiter httpapi.Limiter = httpapi.NewRateLimiter()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = httpapi.NewRedisLimiter(client)
	}

	router := httpapi.NewRouter(httpapi.RouterOptions{
		Sessions:     svc,
		Logger:       logger,
		Limiter:      limiter,
		CookieSecure: cfg.CookieSecure,
		RateLimit:    cfg.AuthRateLimit,
		RateWindow:   cfg.AuthRateWindow,
	})

	srv := &http.Server{
		Addr:    cfg.EndpointAddrHTTP,
		Handler: router,
	}

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.UpContext(ctx, db, ".")
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "server shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	return nil
}
