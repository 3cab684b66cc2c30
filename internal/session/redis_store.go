package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore persists sessions as JSON strings. Expiry is checked on read
// against LastUpdated; the Redis TTL only reclaims abandoned keys.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("travel.internal.session"),
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the clock used for expiry checks.
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *RedisStore) Load(ctx context.Context, id string) (*VacationSession, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load: %w", err)
	}

	sess, err := decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable session", "session_id", id, "error", err)
		return nil, ErrNoSession
	}
	if sess.Expired(s.now(), s.ttl) {
		if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
			s.logger.Warn("failed to purge expired session", "session_id", id, "error", err)
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, d Details) (*VacationSession, error) {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	var existing *VacationSession
	if id != "" {
		loaded, err := s.Load(ctx, id)
		if err != nil && !errors.Is(err, ErrNoSession) {
			span.RecordError(err)
			return nil, err
		}
		existing = loaded
	}

	merged := Merge(existing, d, s.now())
	if existing == nil && id != "" {
		merged.ID = id
	}
	data, err := encode(merged)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, sessionKey(merged.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to persist: %w", err)
	}
	return merged, nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "session.clear")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to clear: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("vacation_session:%s", id)
}
