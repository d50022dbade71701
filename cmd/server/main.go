package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abbiehooper/PolicyChatbot/internal/api/handlers"
	"github.com/abbiehooper/PolicyChatbot/internal/api/routes"
	"github.com/abbiehooper/PolicyChatbot/internal/config"
	"github.com/abbiehooper/PolicyChatbot/internal/ratelimit"
	"github.com/abbiehooper/PolicyChatbot/internal/service/chat"
	"github.com/abbiehooper/PolicyChatbot/internal/service/policy"
	"github.com/abbiehooper/PolicyChatbot/internal/storage/memory"
	"github.com/abbiehooper/PolicyChatbot/pkg/anthropic"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := setupLogger(cfg.Logging)
	if err != nil {
		panic(fmt.Sprintf("Failed to setup logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting policy chatbot server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("model", cfg.Anthropic.Model),
		zap.String("policies_dir", cfg.Policies.Dir),
		zap.Int("history_limit", cfg.Chat.HistoryLimit),
		zap.Duration("conversation_ttl", cfg.Chat.ConversationTTL),
		zap.Int("rate_limit_per_minute", cfg.RateLimit.PerMinute),
		zap.Int("rate_limit_per_hour", cfg.RateLimit.PerHour),
	)

	// Policy catalog
	policyService, err := policy.NewService(cfg.Policies.Dir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize policy service", zap.Error(err))
	}

	// Anthropic client
	generator, err := anthropic.NewClient(anthropic.Config{
		BaseURL: cfg.Anthropic.BaseURL,
		APIKey:  cfg.Anthropic.APIKey,
		Timeout: cfg.Anthropic.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Anthropic client",
			zap.Error(err),
			zap.Strings("api_key_env_vars", config.GetAnthropicEnvVars()),
		)
	}

	// Process-local state: conversation cache and rate limiter
	conversations := memory.NewConversationStore(cfg.Chat.HistoryLimit)
	limiter := ratelimit.New(ratelimit.Config{
		PerMinute: cfg.RateLimit.PerMinute,
		PerHour:   cfg.RateLimit.PerHour,
	}, logger)

	chatService := chat.NewService(
		conversations,
		policyService,
		generator,
		chat.Config{
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		},
		logger,
	)
	logger.Info("Chat service initialized")

	// Handlers and routes
	chatHandler := handlers.NewChatHandler(chatService, logger)
	policyHandler := handlers.NewPolicyHandler(policyService, logger)
	healthHandler := handlers.NewHealthHandler()

	router := routes.SetupRoutes(cfg, logger, limiter, chatHandler, policyHandler, healthHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background sweepers, stopped on shutdown
	sweepCtx, stopSweepers := context.WithCancel(context.Background())
	go conversations.RunSweeper(sweepCtx, cfg.Chat.SweepInterval, cfg.Chat.ConversationTTL, logger)
	go limiter.RunSweeper(sweepCtx, cfg.RateLimit.SweepInterval, cfg.RateLimit.IdleTTL)

	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweepers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func setupLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return zapCfg.Build()
}
