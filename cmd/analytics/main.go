package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ilhamdjango/ecommerce-core/internal/analytics"
	"github.com/ilhamdjango/ecommerce-core/internal/messaging"
	"github.com/ilhamdjango/ecommerce-core/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "analytics", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("analytics", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := db.Exec("SET search_path TO analytics"); err != nil {
		logger.Error("failed to set search_path", "error", err)
		os.Exit(1)
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		logger.Error("RABBITMQ_URL environment variable is required")
		os.Exit(1)
	}

	productsURL := os.Getenv("PRODUCTS_SERVICE_URL")
	if productsURL == "" {
		logger.Error("PRODUCTS_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	bus := messaging.NewBus(rabbitURL)
	defer func() { _ = bus.Close() }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	repo := analytics.NewAnalyticsRepository(db)
	products := analytics.NewProductClient(productsURL, httpClient)
	service := analytics.NewService(repo, products, logger)
	handler := analytics.NewHandler(service, logger)

	dispatcher := messaging.NewDispatcher(logger)
	analytics.NewEventHandler(service, logger).Register(dispatcher)
	consumer := messaging.NewConsumer(bus, analytics.ConsumerConfig, dispatcher, logger)

	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("consumer error", "error", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analytics/order-completed", telemetry.WithHTTPRoute(handler.HandleOrderCompleted))
	mux.HandleFunc("GET /openapi.json", analytics.Manifest().Handler(logger))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "analytics",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting analytics service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
