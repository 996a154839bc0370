// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civic-report/report-assistant/internal/config"
	"github.com/civic-report/report-assistant/internal/dialogue"
	"github.com/civic-report/report-assistant/internal/draft"
	"github.com/civic-report/report-assistant/internal/extract"
	"github.com/civic-report/report-assistant/internal/handler"
	"github.com/civic-report/report-assistant/internal/intent"
	"github.com/civic-report/report-assistant/internal/llm"
	"github.com/civic-report/report-assistant/internal/middleware"
	natsclient "github.com/civic-report/report-assistant/internal/nats"
	"github.com/civic-report/report-assistant/internal/reports"
	"github.com/civic-report/report-assistant/pkg/logger"
	"github.com/civic-report/report-assistant/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run wires the server and blocks until it stops. Every exit path returns
// so deferred cleanup runs.
func run() error {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "report-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() { _ = tracing.Shutdown(context.Background(), tp) }()
		}
	}

	checks := map[string]handler.Pinger{}

	// Draft store
	var store draft.Store
	switch cfg.DraftStore {
	case config.DraftStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		redisStore := draft.NewRedisStore(rdb, cfg.DraftTTL)
		if err := redisStore.Ping(ctx); err != nil {
			log.Error("failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			return err
		}
		checks["redis"] = redisStore
		store = redisStore
	default:
		memStore, err := draft.NewMemoryStore(draft.MemoryConfig{
			TTL:        cfg.DraftTTL,
			MaxEntries: cfg.DraftMaxEntries,
		})
		if err != nil {
			log.Error("failed to create draft store", zap.Error(err))
			return err
		}
		go memStore.RunSweeper(ctx, cfg.DraftSweepInterval, func(removed int) {
			log.Debug("expired drafts swept", zap.Int("removed", removed))
		})
		store = memStore
	}
	log.Info("draft store ready", zap.String("backend", cfg.DraftStore), zap.Duration("ttl", cfg.DraftTTL))

	// Dialogue events are optional
	var events dialogue.EventPublisher
	if cfg.NATSURL != "" {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			return err
		}
		defer natsClient.Close()

		if err := natsclient.EnsureStream(ctx, natsClient.JetStream()); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			return err
		}
		checks["nats"] = natsClient
		events = natsclient.NewEventPublisher(natsClient)
	}

	// Initialize LLM client
	var llmClient llm.Client
	if key := llmKey(cfg); key != "" {
		c, err := llm.NewClient(llm.Provider(cfg.DefaultLLM), key)
		if err != nil {
			log.Warn("failed to create LLM client, free-form replies disabled", zap.String("provider", cfg.DefaultLLM), zap.Error(err))
		} else {
			llmClient = c
		}
	}
	generator := llm.NewGenerator(llmClient, llm.GeneratorConfig{
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, log.Logger)

	backend := reports.NewHTTPClient(reports.Config{
		BaseURL: cfg.ReportsBaseURL,
		Token:   cfg.ReportsAPIToken,
		Timeout: cfg.ReportsTimeout,
	}, log.Logger)

	controller := dialogue.New(dialogue.Deps{
		Store:      store,
		Creator:    backend,
		Lookup:     backend,
		Generator:  generator,
		Events:     events,
		Classifier: intent.New(),
		Extractor: extract.New(
			extract.WithTitler(generator),
			extract.WithLogger(log.Logger),
		),
		Logger: log.Logger,
	}, dialogue.Config{
		DraftTTL:      cfg.DraftTTL,
		CreateTimeout: cfg.ReportsTimeout,
	})

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(checks)
	chatHandler := handler.NewChatHandler(controller, handler.ChatConfig{
		MaxTurns:           cfg.MaxTurns,
		MaxTurnChars:       cfg.MaxTurnChars,
		TrustCallerContext: cfg.TrustCallerContext,
	}, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if !cfg.TrustCallerContext {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		r.Use(middleware.UserRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
		r.Get("/chat/draft", chatHandler.GetDraft)
		r.Delete("/chat/draft", chatHandler.DeleteDraft)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	err = serve(server, quit, log)
	stop()
	return err
}

// serve runs server until a signal arrives on quit or the listener fails,
// then shuts it down gracefully.
func serve(server *http.Server, quit <-chan os.Signal, log *logger.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
		runErr = err
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	log.Info("server stopped")
	return runErr
}

// llmKey returns the API key of the configured provider.
func llmKey(cfg *config.Config) string {
	switch llm.Provider(cfg.DefaultLLM) {
	case llm.ProviderAnthropic:
		return cfg.AnthropicAPIKey
	case llm.ProviderOpenAI:
		return cfg.OpenAIAPIKey
	}
	return ""
}
