package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/wwwxxch/linebot-genai/common/id"
	"github.com/wwwxxch/linebot-genai/common/llm"
	"github.com/wwwxxch/linebot-genai/common/logger"
	"github.com/wwwxxch/linebot-genai/common/otel"
	"github.com/wwwxxch/linebot-genai/core/config"
	"github.com/wwwxxch/linebot-genai/internal/chat"
	"github.com/wwwxxch/linebot-genai/internal/http/handler/webhook"
	"github.com/wwwxxch/linebot-genai/internal/http/middleware"
	httprouter "github.com/wwwxxch/linebot-genai/internal/http/router"
	"github.com/wwwxxch/linebot-genai/internal/line"
	"github.com/wwwxxch/linebot-genai/internal/profile"
	"github.com/wwwxxch/linebot-genai/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "linebot starting", "env", cfg.Env, "provider", cfg.LLM.Provider)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	cat, err := profile.Load(cfg.CatProfile)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load cat profile", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "cat profile loaded", "name", cat.Name, "marker", cat.Marker)

	completionClient, err := llm.NewCompletionClient(llm.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create completion client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "completion client ready", "model", completionClient.Model())

	convStore, redisClient, err := newConversationStore(ctx, cfg.Store)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize conversation store", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	orchestrator := chat.NewOrchestrator(
		convStore,
		completionClient,
		chat.NewRelevanceClassifier(cat.Marker),
		chat.NewPromptBuilder(cat),
		chat.NewSummarizer(completionClient),
	)

	lineClient := line.NewClient(cfg.Line.APIBaseURL, cfg.Line.ChannelAccessToken)
	webhookHandler := webhook.NewLineWebhookHandler(cfg.Line.ChannelSecret, orchestrator, lineClient)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, webhookHandler)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func newConversationStore(ctx context.Context, cfg config.StoreConfig) (store.ConversationStore, *redis.Client, error) {
	if cfg.Backend == "memory" {
		slog.InfoContext(ctx, "using in-memory conversation store")
		return store.NewMemoryStore(), nil, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, err
	}
	slog.InfoContext(ctx, "redis connected")

	return store.NewRedisStore(redisClient), redisClient, nil
}

func setupRouter(cfg config.Config, webhookHandler *webhook.LineWebhookHandler) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, webhookHandler)

	return router
}
