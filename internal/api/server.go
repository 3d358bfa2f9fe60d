// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the BetBlocker service.
package api

import (
	"betblocker/internal/api/handler/v1handler"
	"betblocker/internal/config"
	"betblocker/pkg/controller"
	"betblocker/pkg/logger"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap/exp/zapslog"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// RateLimit bounds API requests per client IP.
	RateLimit controller.RateLimitOptions
	// TrustProxy rewrites RemoteAddr from forwarded headers before any other middleware.
	TrustProxy bool
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		RateLimit: controller.RateLimitOptions{
			RPS:   cfg.HTTP.RateLimitRPS,
			Burst: cfg.HTTP.RateLimitBurst,
		},
		TrustProxy: cfg.HTTP.TrustProxy,
	}
}

type Deps struct {
	v1handler.Deps
}

// NewHandler builds the routed handler:
// - Prometheus metrics endpoint (MetricsPath)
// - OpenTelemetry metrics exporter (Prometheus) and the served-documents counter
// - Embedded OpenAPI v1 spec and Swagger UI
// - rate limited blocklist, profile and document routes
// - health and pprof endpoints
// Every route goes through the logging, recovery and CORS middlewares. ctx
// bounds background work such as rate limiter eviction.
func NewHandler(ctx context.Context, deps Deps, opts Options) (http.Handler, error) {
	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(controller.WithLogger, middleware.Recoverer, controller.WithCORS)

	// prometheus metrics server
	if opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, promhttp.Handler())
	}

	// otel
	exp, err := otelprom.New(otelprom.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	documents, err := mp.Meter("betblocker/api").Int64Counter("profile_documents_served",
		metric.WithDescription("Configuration profiles served, by signing state."))
	if err != nil {
		return nil, fmt.Errorf("could not create documents counter: %w", err)
	}
	handlerDeps := deps.Deps
	handlerDeps.Documents = documents

	// v1 specs file
	r.Get("/specs/v1.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	r.Handle("/docs/*", v5emb.New(
		"BetBlocker Service",
		"/specs/v1.yaml",
		"/docs/",
	))

	h := v1handler.New(handlerDeps)
	r.Get("/healthz", h.Healthz)
	r.Group(func(r chi.Router) {
		r.Use(controller.WithRateLimit(ctx, opts.RateLimit))

		r.Get("/blocklist", h.ListBlocklist)
		r.Post("/blocklist", h.AddBlocklist)
		r.Delete("/blocklist", h.RemoveBlocklist)
		r.Post("/profile", h.CreateProfile)
		r.Get("/profile-document", h.GetProfileDocument)
	})

	// pprof
	r.Mount("/debug/pprof", controller.PprofRouter())

	return r, nil
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// The routed handler is wrapped with a request timeout.
func NewServer(ctx context.Context, deps Deps, opts Options) (*http.Server, error) {
	handler, err := NewHandler(ctx, deps, opts)
	if err != nil {
		return nil, err
	}
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, `{"error":"request timed out","code":"TIMEOUT"}`)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(zapslog.NewHandler(logger.Get(ctx).Core()), slog.LevelWarn),
	}, nil
}
