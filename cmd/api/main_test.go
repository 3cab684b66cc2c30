package main

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appconfig "github.com/wolfman30/travel-ai-concierge/internal/config"
	"github.com/wolfman30/travel-ai-concierge/internal/conversation"
	"github.com/wolfman30/travel-ai-concierge/internal/session"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, connectPostgresPool(context.Background(), "", logger))
	assert.Nil(t, openTranscriptDB(context.Background(), "", logger))
}

func TestConnectRedis(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, connectRedis(context.Background(), &appconfig.Config{}, logger))

	mr := miniredis.RunT(t)
	client := connectRedis(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger)
	require.NotNil(t, client)
	defer client.Close()
}

func TestProviderClient(t *testing.T) {
	cfg := &appconfig.Config{OpenAIAPIKey: "sk-test", OpenAIModel: "gpt-4"}

	client, closeFn, err := providerClient(context.Background(), "openai", cfg, aws.Config{})
	require.NoError(t, err)
	assert.IsType(t, &conversation.OpenAILLMClient{}, client)
	closeFn()

	_, _, err = providerClient(context.Background(), "bedrock", cfg, aws.Config{})
	assert.ErrorContains(t, err, "BEDROCK_MODEL_ID")

	cfg.BedrockModelID = "anthropic.claude-3-haiku"
	client, _, err = providerClient(context.Background(), "bedrock", cfg, aws.Config{Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, &conversation.BedrockLLMClient{}, client)

	_, _, err = providerClient(context.Background(), "gemini", cfg, aws.Config{})
	assert.Error(t, err)

	_, _, err = providerClient(context.Background(), "llama", cfg, aws.Config{})
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestSetupLLMWrapsFallback(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		LLMProvider:         "openai",
		LLMFallbackProvider: "bedrock",
		OpenAIAPIKey:        "sk-test",
		BedrockModelID:      "anthropic.claude-3-haiku",
		LLMMaxAttempts:      2,
		LLMRetryBaseDelay:   time.Millisecond,
	}

	client, closeFn, err := setupLLM(context.Background(), cfg, aws.Config{Region: "us-east-1"}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &conversation.FallbackLLMClient{}, client)

	cfg.LLMFallbackProvider = "gemini"
	client, closeFn, err = setupLLM(context.Background(), cfg, aws.Config{}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &conversation.RetryingLLMClient{}, client)

	cfg.OpenAIAPIKey = ""
	_, _, err = setupLLM(context.Background(), cfg, aws.Config{}, logger)
	assert.Error(t, err)
}

func TestSetupSessionStore(t *testing.T) {
	logger := logging.New("error")

	store, err := setupSessionStore(&appconfig.Config{SessionBackend: "memory"}, aws.Config{}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, store)

	_, err = setupSessionStore(&appconfig.Config{SessionBackend: "redis"}, aws.Config{}, nil, logger)
	assert.ErrorContains(t, err, "REDIS_ADDR")

	store, err = setupSessionStore(&appconfig.Config{SessionBackend: "dynamodb", SessionTable: "sessions"}, aws.Config{Region: "us-east-1"}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &session.DynamoStore{}, store)

	_, err = setupSessionStore(&appconfig.Config{SessionBackend: "etcd"}, aws.Config{}, nil, logger)
	assert.Error(t, err)
}
