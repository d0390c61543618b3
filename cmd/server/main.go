package main

import (
	"EventBus/internal/adapters/eventbus"
	"EventBus/internal/adapters/observability"
	"EventBus/internal/adapters/runner"
	"EventBus/internal/core/domain"
	"EventBus/internal/holders"
	"EventBus/internal/holders/orders"
	"EventBus/internal/shared/config"
	"EventBus/internal/shared/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	isDevMode := cfg.AppEnv == "dev"
	baseLogger := logger.New(isDevMode)
	baseLogger.Info().Msg("Logger initialized")

	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("runner", cfg.Runner.Kind).
		Strs("inspect", cfg.Inspect).
		Msg("Configuration loaded")

	// 3. Initialize the main runner
	mainRunner, closeRunner, err := runner.New(&cfg.Runner, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize runner")
	}

	// 4. Initialize observability
	registry := prometheus.NewRegistry()
	provider, err := newTracerProvider(cfg.TraceStdout)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	observer := observability.Multi{
		observability.NewMetrics(registry),
		observability.NewTracer(provider),
	}

	// 5. Initialize the bus directory
	dir := eventbus.NewDirectory(&baseLogger,
		eventbus.WithMainRunner(mainRunner),
		eventbus.WithObserver(observer),
	)
	dir.SetVerbosity(logger.ParseLevel(cfg.LogLevel))
	if len(cfg.Inspect) > 0 {
		dir.Inspect(cfg.Inspect...)
	}

	bus, err := dir.Create("orders")
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to create orders bus")
	}
	holders.RegisterAll(bus, &baseLogger)

	baseLogger.Info().Msg("All services initialized successfully")

	// 6. Run the orders scenario
	_ = bus.Post(orders.EventCharge, orders.Charge{OrderID: "A-1", Amount: 10})
	_ = bus.Post(orders.EventShip, nil)
	_ = bus.PostEvent(domain.NewEvent(orders.EventRefund, orders.Charge{OrderID: "A-1", Amount: 3}))
	_ = bus.Post(domain.PrintHolderName, nil)

	done := make(chan struct{})
	_ = bus.PostRunnable(func() { close(done) })
	<-done

	if billing, ok := bus.Holder(orders.BillingType).(*orders.BillingHolder); ok {
		baseLogger.Info().Int64("balance", billing.Balance()).Msg("Orders scenario finished")
	}

	// 7. Serve metrics until interrupted
	if cfg.MetricsAddr != "" {
		serveMetrics(cfg.MetricsAddr, registry, &baseLogger)
	}

	// 8. Shutdown
	dir.ClearAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := closeRunner(ctx); err != nil {
		baseLogger.Error().Err(err).Msg("Failed to stop runner")
	}
	if err := provider.Shutdown(ctx); err != nil {
		baseLogger.Error().Err(err).Msg("Failed to flush traces")
	}
	baseLogger.Info().Msg("Application stopped")
}

// newTracerProvider returns an SDK provider. Spans are printed to stdout
// when enabled and dropped otherwise.
func newTracerProvider(stdout bool) (*sdktrace.TracerProvider, error) {
	if !stdout {
		return sdktrace.NewTracerProvider(), nil
	}
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("could not create stdout exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}

// serveMetrics exposes the registry on addr and blocks until SIGINT/SIGTERM.
func serveMetrics(addr string, registry *prometheus.Registry, baseLogger *zerolog.Logger) {
	log := baseLogger.With().Str("component", "metrics_server").Logger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop metrics server")
	}
}
