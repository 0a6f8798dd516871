// Package server initializes and runs the credential service: it loads
// configuration, opens the database and applies migrations, wires the
// hasher, token issuer, store, and HTTP endpoint, and handles shutdown
// signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/erisahalipaj/userauth/internal/logging"
	"github.com/erisahalipaj/userauth/internal/server/auth"
	"github.com/erisahalipaj/userauth/internal/server/config"
	"github.com/erisahalipaj/userauth/internal/server/httpapi"
	"github.com/erisahalipaj/userauth/internal/server/repositories/repomanager"
	"github.com/erisahalipaj/userauth/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hasher := auth.NewArgon2Hasher(cfg.HashTimeCost, cfg.HashMemoryKiB, cfg.HashThreads)
	issuer := auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.TokenValidity)

	svc, err := services.NewCredentialService(db, rm, hasher, issuer, logger)
	if err != nil {
		return nil, fmt.Errorf("service init error: %w", err)
	}

	srv := httpapi.NewServer(cfg.Addr, svc, issuer, logger)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
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
	defer app.db.Close()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	return app.server.Run(ctx)
}
