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

	"github.com/clinicbook/availability/internal/api"
	"github.com/clinicbook/availability/internal/availability"
	"github.com/clinicbook/availability/internal/catalog"
	"github.com/clinicbook/availability/internal/config"
	"github.com/clinicbook/availability/internal/ledger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config load error")
	}

	logger := newLogger(cfg.Env)
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.New()
	if err := cat.Initialize(catalog.SeedConfig{
		Days:          cfg.SeedDays,
		Practitioners: cfg.SeedPractitioners,
	}); err != nil {
		logger.Fatal().Err(err).Msg("catalog initialization error")
	}
	logger.Info().Int("slots", cat.Len()).Msg("catalog initialized")

	var led ledger.Ledger
	if cfg.LedgerBackend == "redis" {
		rdb, err := ledger.Connect(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		led = ledger.NewRedis(rdb)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis reservation ledger")
	} else {
		led = ledger.NewMemory()
		logger.Info().Msg("using in-memory reservation ledger")
	}

	svc := availability.NewService(cat, led, logger)

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		Logger:  logger,
		Env:     cfg.Env,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		logger.Info().Msg("shutting down api-server")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
