package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"kleotrust/config"
	"kleotrust/crypto"
	"kleotrust/gateway/middleware"
	"kleotrust/gateway/routes"
	"kleotrust/observability/logging"
	telemetry "kleotrust/observability/otel"
	"kleotrust/services/trustd"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "trustd.toml", "path to trustd configuration (TOML or YAML)")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("KLEO_ENV"))
	bootLogger := logging.Setup("trustd", env)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLogger.Error("load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}

	logger := logging.SetupWithOptions("trustd", env, logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.ConfigFromEnv(
		cfg.Observability.ServiceName, env, cfg.Observability.Metrics, cfg.Observability.Tracing))
	if err != nil {
		logger.Error("failed to initialise telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = shutdownTelemetry(context.Background())
	}()

	codec, err := crypto.NewCodec(cfg.NetworkPrefix)
	if err != nil {
		logger.Error("configure address codec", "error", err)
		os.Exit(1)
	}
	tiers, err := cfg.TierTable()
	if err != nil {
		logger.Error("configure tier table", "error", err)
		os.Exit(1)
	}

	svc := trustd.New(trustd.Config{
		Codec:      codec,
		Tiers:      tiers,
		MaxEvents:  cfg.Trust.MaxEvents,
		MaxWallets: cfg.Trust.MaxWallets,
		Logger:     logger,
	})

	obs := middleware.NewObservability(middleware.ObservabilityConfig{
		ServiceName:   cfg.Observability.ServiceName,
		MetricsPrefix: cfg.Observability.MetricsPrefix,
		LogRequests:   cfg.Observability.LogRequests,
		Enabled:       cfg.Observability.Metrics || cfg.Observability.Tracing,
	}, logger)

	rateLimits := make(map[string]middleware.RateLimit)
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limit := middleware.RateLimit{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		}
		for _, group := range []string{routes.GroupAddress, routes.GroupEligibility, routes.GroupTrust, routes.GroupWallet} {
			rateLimits[group] = limit
		}
	}

	router, err := routes.New(routes.Config{
		Service:       svc,
		RateLimiter:   middleware.NewRateLimiter(rateLimits, logger),
		Observability: obs,
		CORS:          middleware.CORSConfig{AllowedOrigins: cfg.CORS.AllowedOrigins},
		Logger:        logger,
	})
	if err != nil {
		logger.Error("configure routes", "error", err)
		os.Exit(1)
	}

	handler := http.Handler(router)
	if cfg.Observability.Tracing {
		handler = otelhttp.NewHandler(router, cfg.Observability.ServiceName)
	}

	server := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		logger.Error("listen", "error", err, "address", cfg.ListenAddress)
		os.Exit(1)
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("trustd listening",
			"address", listener.Addr().String(),
			"networkPrefix", codec.Prefix(),
			slog.Int("maxEvents", cfg.Trust.MaxEvents))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			logger.Error("serve", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	logger.Info("trustd stopped")
}
