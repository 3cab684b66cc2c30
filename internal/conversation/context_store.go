package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const conversationTTL = 24 * time.Hour

// State is everything the engine keeps between turns of one chat.
type State struct {
	Context   Context       `json:"context"`
	History   []ChatMessage `json:"history"`
	SessionID string        `json:"session_id,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}

// StateStore persists conversation state. Load returns
// ErrUnknownConversation when nothing is stored for the id.
type StateStore interface {
	Load(ctx context.Context, conversationID string) (*State, error)
	Save(ctx context.Context, conversationID string, state *State) error
	Delete(ctx context.Context, conversationID string) error
}

type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string][]byte)}
}

func (m *MemoryStateStore) Load(_ context.Context, conversationID string) (*State, error) {
	m.mu.RLock()
	data, ok := m.states[conversationID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownConversation
	}
	return decodeState(data)
}

func (m *MemoryStateStore) Save(_ context.Context, conversationID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal state: %w", err)
	}
	m.mu.Lock()
	m.states[conversationID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStateStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	delete(m.states, conversationID)
	m.mu.Unlock()
	return nil
}

type RedisStateStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = conversationTTL
	}
	return &RedisStateStore{
		redis:  client,
		tracer: otel.Tracer("travel.internal.conversation.state"),
		ttl:    ttl,
	}
}

func (s *RedisStateStore) Load(ctx context.Context, conversationID string) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_state")
	defer span.End()

	data, err := s.redis.Get(ctx, stateKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUnknownConversation
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load state: %w", err)
	}
	state, err := decodeState(data)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return state, nil
}

func (s *RedisStateStore) Save(ctx context.Context, conversationID string, state *State) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_state")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, stateKey(conversationID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Delete(ctx context.Context, conversationID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.delete_state")
	defer span.End()

	if err := s.redis.Del(ctx, stateKey(conversationID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to delete state: %w", err)
	}
	return nil
}

func decodeState(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode state: %w", err)
	}
	state.Context = state.Context.clone()
	return &state, nil
}

func stateKey(id string) string {
	return fmt.Sprintf("conversation_state:%s", id)
}
