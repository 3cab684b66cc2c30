package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/travel-ai-concierge/cmd/mainconfig"
	"github.com/wolfman30/travel-ai-concierge/internal/api/router"
	"github.com/wolfman30/travel-ai-concierge/internal/archive"
	appconfig "github.com/wolfman30/travel-ai-concierge/internal/config"
	"github.com/wolfman30/travel-ai-concierge/internal/conversation"
	"github.com/wolfman30/travel-ai-concierge/internal/events"
	httpmiddleware "github.com/wolfman30/travel-ai-concierge/internal/http/middleware"
	"github.com/wolfman30/travel-ai-concierge/internal/leads"
	"github.com/wolfman30/travel-ai-concierge/internal/observability/metrics"
	"github.com/wolfman30/travel-ai-concierge/internal/session"
	"github.com/wolfman30/travel-ai-concierge/internal/webchat"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting travel-ai-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
		"session_backend", cfg.SessionBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	llm, closeLLM, err := setupLLM(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to configure LLM provider", "error", err)
		os.Exit(1)
	}
	defer closeLLM()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatMetrics := metrics.NewChatMetrics(registry)

	healthChecks := map[string]router.HealthCheck{}
	opts := []conversation.Option{
		conversation.WithLogger(logger.Component("conversation")),
		conversation.WithMetrics(chatMetrics),
		conversation.WithModel("", int32(cfg.LLMMaxTokens), float32(cfg.LLMTemperature)),
		conversation.WithLLMTimeout(cfg.LLMTimeout),
		conversation.WithValuePropositions(cfg.UseValuePropositions),
	}

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, conversation.WithStateStore(conversation.NewRedisStateStore(redisClient, cfg.SessionTTL)))
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	sessions, err := setupSessionStore(cfg, awsCfg, redisClient, logger)
	if err != nil {
		logger.Error("failed to configure session store", "error", err)
		os.Exit(1)
	}
	opts = append(opts, conversation.WithSessionStore(sessions))

	var leadsRepo leads.Repository = leads.NewInMemoryRepository()
	if pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger); pool != nil {
		defer pool.Close()
		leadsRepo = leads.NewPostgresRepository(pool)
		healthChecks["postgres"] = pool.Ping
	}
	opts = append(opts, conversation.WithLeadRepository(leadsRepo))

	if db := openTranscriptDB(ctx, cfg.DatabaseURL, logger); db != nil {
		defer db.Close()
		opts = append(opts, conversation.WithTranscripts(conversation.NewTranscriptStore(db)))
	}

	if cfg.LeadEventsQueueURL != "" {
		opts = append(opts, conversation.WithEventPublisher(events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.LeadEventsQueueURL)))
	}
	if cfg.TranscriptArchiveBucket != "" {
		store := archive.NewStore(mainconfig.NewS3Client(awsCfg, cfg), cfg.TranscriptArchiveBucket, logger.Logger)
		opts = append(opts, conversation.WithArchiver(store))
	}

	engine := conversation.NewEngine(llm, opts...)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        webchat.NewHandler(engine, logger.Component("webchat")),
		LeadsHandler:       leads.NewHandler(leadsRepo, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminAuth:          httpmiddleware.AdminAuthConfig{Secret: cfg.AdminJWTSecret},
		RateLimiter:        limiter,
		HealthChecks:       healthChecks,
	})

	// WriteTimeout leaves room for a slow LLM turn.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// setupLLM builds the configured provider wrapped in retries, with an
// optional fallback provider behind it.
func setupLLM(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (conversation.LLMClient, func(), error) {
	primary, closePrimary, err := providerClient(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("primary provider %q: %w", cfg.LLMProvider, err)
	}
	var client conversation.LLMClient = conversation.NewRetryingLLMClient(primary, cfg.LLMMaxAttempts, cfg.LLMRetryBaseDelay, logger.Logger)

	closeAll := closePrimary
	if cfg.LLMFallbackProvider != "" && cfg.LLMFallbackProvider != cfg.LLMProvider {
		secondary, closeSecondary, err := providerClient(ctx, cfg.LLMFallbackProvider, cfg, awsCfg)
		if err != nil {
			logger.Warn("fallback LLM provider unavailable", "provider", cfg.LLMFallbackProvider, "error", err)
		} else {
			client = conversation.NewFallbackLLMClient(client, secondary, logger.Logger)
			closeAll = func() {
				closePrimary()
				closeSecondary()
			}
		}
	}
	return client, closeAll, nil
}

func providerClient(ctx context.Context, provider string, cfg *appconfig.Config, awsCfg aws.Config) (conversation.LLMClient, func(), error) {
	noop := func() {}
	switch provider {
	case "openai", "":
		c, err := conversation.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		return c, noop, err
	case "gemini":
		c, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case "bedrock":
		if cfg.BedrockModelID == "" {
			return nil, nil, errors.New("BEDROCK_MODEL_ID is required")
		}
		return conversation.NewBedrockLLMClient(mainconfig.NewBedrockClient(awsCfg), cfg.BedrockModelID), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

func setupSessionStore(cfg *appconfig.Config, awsCfg aws.Config, redisClient *redis.Client, logger *logging.Logger) (session.Store, error) {
	switch cfg.SessionBackend {
	case "memory", "":
		return session.NewMemoryStore(cfg.SessionTTL, nil), nil
	case "redis":
		if redisClient == nil {
			return nil, errors.New("SESSION_BACKEND=redis requires REDIS_ADDR")
		}
		return session.NewRedisStore(redisClient, cfg.SessionTTL, logger.Logger), nil
	case "dynamodb":
		return session.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.SessionTable, cfg.SessionTTL, logger.Logger), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

func connectRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, keeping conversations in memory", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return client
}

func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres unreachable, lead analytics stay in memory", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func openTranscriptDB(ctx context.Context, databaseURL string, logger *logging.Logger) *sql.DB {
	if databaseURL == "" {
		return nil
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("failed to open transcript database", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("transcript database unreachable", "error", err)
		_ = db.Close()
		return nil
	}
	db.SetMaxOpenConns(10)
	return db
}
