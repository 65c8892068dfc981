package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/config"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/handler"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/cache"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/client"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/observability"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/service"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, config.Usage())
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("contracts_api_url", cfg.ContractsAPIURL),
		zap.String("amendments_api_url", cfg.AmendmentsAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("draft_ttl", cfg.DraftTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("auth_disabled", cfg.AuthDisabled),
		zap.Strings("cors_allowed_origins", cfg.CORSAllowedOrigins),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "contratos-aditivos-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	contextCache := cache.New[*domain.ContractContext](cfg.CacheTTL)
	defer contextCache.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	contractsCB := resilience.NewCircuitBreaker("contracts-api")
	amendmentsCB := resilience.NewCircuitBreaker("amendments-api")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	contractsClient := client.NewContractClient(httpClient, cfg.ContractsAPIURL, contractsCB, resilienceCfg)
	amendmentsClient := client.NewAmendmentClient(httpClient, cfg.AmendmentsAPIURL, amendmentsCB, resilienceCfg)

	// --- Services ---
	draftSvc := service.NewDraftService(
		contractsClient,
		amendmentsClient,
		cfg.DraftTTL,
		contextCache,
		bulkhead,
		metrics,
		logger,
	)
	defer draftSvc.Close()

	var verifier *service.TokenVerifier
	if cfg.AuthDisabled {
		logger.Warn("authentication disabled, drafts are not bound to a user")
	} else {
		verifier = service.NewTokenVerifier(cfg.JWTSecret, 15*time.Minute)
	}

	// --- Router ---
	breakers := map[string]*gobreaker.CircuitBreaker{
		"contracts-api":  contractsCB,
		"amendments-api": amendmentsCB,
	}
	router := handler.NewRouter(draftSvc, verifier, cfg.CORSAllowedOrigins, breakers, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
