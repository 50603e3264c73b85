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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onecore/internal/adapters/economy"
	"onecore/internal/adapters/filestorage"
	"onecore/internal/adapters/inspection"
	"onecore/internal/adapters/keys"
	"onecore/internal/adapters/leasing"
	"onecore/internal/adapters/propertybase"
	"onecore/internal/adapters/workorder"
	"onecore/internal/audit"
	"onecore/internal/documents"
	docHandler "onecore/internal/documents/handler"
	"onecore/internal/inspections"
	"onecore/internal/invoices"
	jwttoken "onecore/internal/jwt_token"
	"onecore/internal/keyportal"
	"onecore/internal/leases"
	"onecore/internal/platform/config"
	"onecore/internal/platform/health"
	"onecore/internal/platform/logger"
	"onecore/internal/platform/metrics"
	"onecore/internal/platform/tracer"
	"onecore/internal/properties"
	"onecore/internal/properties/cache"
	"onecore/internal/tenants"
	httptransport "onecore/internal/transport/http"
	"onecore/internal/workorders"
	"onecore/pkg/platform/middleware/metadata"
	"onecore/pkg/platform/middleware/ratelimit"
	"onecore/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the domain packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("initializing onecore gateway",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	tr := tracer.NewOTel()
	healthHandler := health.New(cfg.Environment)

	backing, err := openInfra(ctx, cfg, log, healthHandler)
	if err != nil {
		log.Error("failed to initialize infrastructure", "error", err)
		os.Exit(1)
	}
	defer backing.Close(log)

	clients := newUpstreamClients(cfg, log, m, tr, healthHandler)
	leasingAdapter := leasing.New(clients[config.Leasing])
	propertyBase := propertybase.New(clients[config.PropertyBase])
	inspectionAdapter := inspection.New(clients[config.Inspection])
	economyAdapter := economy.New(clients[config.Economy])
	fileStorage := filestorage.New(clients[config.FileStorage], filestorage.WithLogger(log))
	keysAdapter := keys.New(clients[config.Keys])
	workOrderAdapter := workorder.New(clients[config.WorkOrder])

	auditPublisher := audit.NewPublisher(backing.auditStore,
		audit.WithAsyncBuffer(1024),
		audit.WithSink(backing.auditSink),
		audit.WithPublisherLogger(log),
		audit.WithMetrics(m),
	)
	defer auditPublisher.Close()

	propertyCache := cache.New(backing.cacheStore,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithMetrics(m),
		cache.WithLogger(log),
	)
	documentService := documents.New(fileStorage, propertyBase, auditPublisher,
		documents.WithLogger(log),
		documents.WithMetrics(m),
		documents.WithTracer(tr),
		documents.WithURLTTL(cfg.SignedURLTTL),
	)

	propertiesHandler := properties.NewHandler(properties.NewService(propertyBase, propertyCache, auditPublisher, log), log)
	workOrdersHandler := workorders.NewHandler(workOrderAdapter, auditPublisher, log)
	keysHandler := keyportal.NewHandler(keyportal.NewService(keysAdapter, auditPublisher, log), log)

	trustedProxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Error("invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}
	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, ratelimit.WithLogger(log))
	go limiter.Start(ctx)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Tokens:         jwttoken.NewValidator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience),
		LatencyMetrics: request.NewMetrics(reg),
		Limiter:        limiter,
		TrustedProxies: trustedProxies,
		Health:         healthHandler,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Reads: []httptransport.Routes{
			tenants.NewHandler(tenants.NewService(leasingAdapter, economyAdapter, log, m, tr), log),
			leases.NewHandler(leasingAdapter, log),
			propertiesHandler,
			inspections.NewHandler(inspectionAdapter, log),
			invoices.NewHandler(economyAdapter, log),
			workOrdersHandler,
			keysHandler,
		},
		Writes:  []httptransport.WriteRoutes{propertiesHandler, workOrdersHandler, keysHandler},
		Uploads: docHandler.New(documentService, log, cfg.UploadMaxBytes),
		Audit:   audit.NewHandler(auditPublisher, log),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	log.Info("starting http server", "addr", cfg.Addr)
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
