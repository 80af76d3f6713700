package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pesquisacampo/coleta-gateway/internal/audit"
	"github.com/pesquisacampo/coleta-gateway/internal/config"
	"github.com/pesquisacampo/coleta-gateway/internal/db"
	internalhttp "github.com/pesquisacampo/coleta-gateway/internal/http"
	"github.com/pesquisacampo/coleta-gateway/internal/metrics"
	"github.com/pesquisacampo/coleta-gateway/internal/util"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := util.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.Logger = logger

	if cfg.Storage.Provider == config.ProviderSupabase && !cfg.Storage.IsComplete() {
		logger.Warn().Msg("STORAGE_URL ou STORAGE_SERVICE_KEY não configurados; requisições ao storage vão falhar")
	}

	ctx := context.Background()

	var (
		recorders audit.Multi
		checks    = map[string]internalhttp.ReadinessCheck{}
	)

	if cfg.DBDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()

		if err := audit.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("db schema: %w", err)
		}
		recorders = append(recorders, audit.NewPostgresRecorder(pool))
		checks["db"] = pool.Ping
		logger.Info().Msg("auditoria em Postgres habilitada")
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		recorders = append(recorders, audit.NewRedisRecorder(redisClient, cfg.AuditStream))
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		logger.Info().Str("stream", cfg.AuditStream).Msg("auditoria em Redis habilitada")
	}

	var recorder audit.Recorder = audit.Nop{}
	if len(recorders) > 0 {
		recorder = recorders
	}

	handler, err := internalhttp.NewRouter(cfg, internalhttp.Dependencies{
		Logger:  logger,
		Audit:   recorder,
		Metrics: metrics.New(),
		Checks:  checks,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("provider", cfg.Storage.Provider).Str("bucket", cfg.Storage.Bucket).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
