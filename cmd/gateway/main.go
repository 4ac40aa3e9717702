package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ilhamdjango/ecommerce-core/internal/gateway"
	"github.com/ilhamdjango/ecommerce-core/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "gateway", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("gateway", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	services := os.Getenv("GATEWAY_SERVICES")
	if services == "" {
		logger.Error("GATEWAY_SERVICES environment variable is required, e.g. users=http://users:8081,orders=http://orders:8083")
		os.Exit(1)
	}

	registry, err := gateway.ParseRegistry(services)
	if err != nil {
		logger.Error("invalid GATEWAY_SERVICES", "error", err)
		os.Exit(1)
	}

	policy := gateway.ConflictPolicy(os.Getenv("GATEWAY_CONFLICT_POLICY"))
	aggregator := gateway.NewAggregator(registry, nil, policy, logger)
	discovery := aggregator.Discover(ctx)
	if discovery.Degraded() {
		logger.Warn("starting in degraded mode, some services were not discovered", "status", discovery.Status)
	}

	forwarder := gateway.NewForwarder(registry, gateway.NewForwardClient(), logger)
	handler := gateway.NewHandler(forwarder, discovery, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", telemetry.WithHTTPRoute(handler.HandleRoot))
	mux.HandleFunc("GET /health", telemetry.WithHTTPRoute(handler.HandleHealth))
	mux.HandleFunc("GET /openapi.json", telemetry.WithHTTPRoute(handler.HandleOpenAPI))
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("/", handler.HandleProxy)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(gateway.IdentityMiddleware("X-User-Id", mux), "gateway",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("starting gateway", "port", port, "services", registry.Names())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
