package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/adapters/http/api"
	"github.com/okian/homeval/internal/adapters/http/site"
	"github.com/okian/homeval/internal/adapters/http/swagger"
	app "github.com/okian/homeval/internal/app"
	"github.com/okian/homeval/internal/config"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/presenter"
	"github.com/okian/homeval/pkg/logger"
	"github.com/okian/homeval/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// We collect our own system metrics on a custom registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Fatal(ctx, "failed to load config", logger.Error(err))
	}
	if cfg.LogFile != "" {
		if err := logger.Init(logger.WithFile(cfg.LogFile)); err != nil {
			logger.Get().Fatal(ctx, "failed to open log file", logger.String("log_file", cfg.LogFile), logger.Error(err))
		}
	}
	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to configure service", logger.Error(err))
	}
	// Missing or corrupt artifacts halt startup; nothing is served without a model.
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Fatal(ctx, "failed to load model artifacts", logger.Error(err))
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux, err := newMux(ctx, svc)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to register routes", logger.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	loggerInstance.Info(shutdownCtx, "server stopped")
}

// newService builds the artifact store and prediction service from cfg.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	fields := features.DefaultFields()

	opts := []artifact.Option{
		artifact.WithBaseDir(cfg.BaseDir),
		artifact.WithModelsDir(cfg.ModelsDir),
		artifact.WithFiles(cfg.ModelFile, cfg.SchemaFile, cfg.MetricFile),
		artifact.WithLogger(log.Named("artifact")),
	}
	if cfg.StrictSchema {
		opts = append(opts, artifact.WithExpectedFeatures(features.FieldNames(fields)))
	}
	store, err := artifact.New(opts...)
	if err != nil {
		return nil, err
	}

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithInputMode(mode),
		app.WithFields(fields),
		app.WithPresenter(presenter.New(
			presenter.WithCurrencySymbol(cfg.CurrencySymbol),
			presenter.WithMultiplier(cfg.PriceMultiplier),
		)),
	), nil
}

// newMux registers the page, the JSON API and the API docs.
func newMux(ctx context.Context, svc *app.Service) (*http.ServeMux, error) {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	if err := site.Register(ctx, mux, svc); err != nil {
		return nil, err
	}
	return mux, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
