package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"armar/internal/api"
	"armar/internal/config"
	"armar/internal/database"
	"armar/internal/events"
	"armar/internal/logging"
	"armar/internal/metrics"
	"armar/internal/service"
	"armar/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := initStore(ctx, cfg, &logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	bus := events.NewBus()
	startNotifier(ctx, cfg, bus, &logger)
	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(
		cfg.HTTP,
		service.NewCatalogService(store, logging.Component(&logger, "catalog")),
		service.NewSubmissionService(store, bus, logging.Component(&logger, "submissions")),
		service.NewDiagnosticsService(store, cfg.Database, logging.Component(&logger, "diagnostics")),
		logging.Component(&logger, "http"),
	)

	return serve(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// initStore never fails: without a usable database the API keeps serving fallbacks.
func initStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) database.Store {
	if !cfg.Database.Configured() {
		logger.Warn().Msg("DATABASE_URL or DATABASE_NAME not set, running without database")
		return database.NewUnavailable(nil)
	}

	store, err := database.Open(ctx, cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		logger.Warn().Err(err).Msg("database init failed, running without database")
		return database.NewUnavailable(err)
	}
	return store
}

func startNotifier(ctx context.Context, cfg *config.Config, bus *events.Bus, logger *zerolog.Logger) {
	if cfg.Telegram.Incomplete() {
		logger.Warn().Msg("telegram.bot_token is set without telegram.chat_id, notifications disabled")
	}
	if !cfg.Telegram.Enabled() {
		return
	}

	notifier, err := worker.NewTelegramNotifier(cfg.Telegram, logging.Component(logger, "notifier"))
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	notifier.Subscribe(bus)
	go notifier.Run(ctx)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Msg("API server started")

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
