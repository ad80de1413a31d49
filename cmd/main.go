package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	freebooks "github.com/iziplay/freebooks-api"
	"github.com/iziplay/freebooks-api/pkg/aggregate"
	routing "github.com/iziplay/freebooks-api/pkg/api"
	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/config"
	"github.com/iziplay/freebooks-api/pkg/metrics"
	"github.com/iziplay/freebooks-api/pkg/stats"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

func setupTracing(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exp, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName("freebooks-api"),
			),
		),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	return tp, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	if cfg.Tracing {
		tp, err := setupTracing(ctx)
		if err != nil {
			panic(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				slog.Error("Failed to flush traces", "error", err)
			}
		}()
	}

	m := metrics.New()
	sourceStats := stats.NewRegistry(book.Sources...)
	catalogs := freebooks.NewCatalogs(cfg, slog.Default())
	agg := aggregate.New(catalogs.Searchers(),
		aggregate.WithLogger(slog.Default()),
		aggregate.WithStats(sourceStats),
		aggregate.WithMetrics(m),
	)

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", routing.RequestIDHeader},
		ExposedHeaders:   []string{"Server", routing.RequestIDHeader},
		AllowCredentials: false,
	}))
	router.Handle("/metrics", m.Handler())

	humaConfig := huma.DefaultConfig("Free Books API", routing.Version)
	humaConfig.OpenAPI.Info.Description = freebooks.Readme
	humaConfig.DocsPath = "/docs"
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.Host},
	}
	api := humachi.New(router, humaConfig)

	routing.Setup(api, routing.Services{
		Aggregator:  agg,
		OpenLibrary: catalogs.OpenLibrary,
		Gutenberg:   catalogs.Gutenberg,
		GoogleBooks: catalogs.GoogleBooks,
		Stats:       sourceStats,
		Metrics:     m,
		Logger:      slog.Default(),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(router, "api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "addr", cfg.Addr, "sources", agg.Sources())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
