package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultLLMAttempts  = 3
	defaultRetryBackoff = time.Second
)

// RetryingLLMClient retries failed completions with a delay that grows by
// baseDelay after each attempt.
type RetryingLLMClient struct {
	next      LLMClient
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewRetryingLLMClient(next LLMClient, attempts int, baseDelay time.Duration, logger *slog.Logger) *RetryingLLMClient {
	if attempts <= 0 {
		attempts = defaultLLMAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingLLMClient{
		next:      next,
		attempts:  attempts,
		baseDelay: baseDelay,
		logger:    logger,
		sleep:     sleepContext,
	}
}

func (c *RetryingLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		resp, err := c.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.logger.Warn("LLM attempt failed", "attempt", attempt+1, "max_attempts", c.attempts, "error", err)

		if attempt == c.attempts-1 {
			break
		}
		if err := c.sleep(ctx, c.baseDelay*time.Duration(attempt+1)); err != nil {
			return LLMResponse{}, fmt.Errorf("conversation: retry interrupted: %w", err)
		}
	}
	return LLMResponse{}, fmt.Errorf("conversation: LLM failed after %d attempts: %w", c.attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
