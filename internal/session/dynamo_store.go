package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// dynamoRecord is the table item: the session plus a TTL attribute that
// DynamoDB uses to reap idle rows.
type dynamoRecord struct {
	VacationSession
	ExpiresAt int64 `dynamodbav:"expires_at"`
}

// DynamoStore persists sessions in a DynamoDB table keyed by session_id.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string, ttl time.Duration, logger *slog.Logger) *DynamoStore {
	if client == nil {
		panic("session: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("session: table name cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DynamoStore{client: client, tableName: tableName, ttl: ttl, logger: logger, now: time.Now}
}

func (s *DynamoStore) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"session_id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *DynamoStore) Load(ctx context.Context, id string) (*VacationSession, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("session: failed to load: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, ErrNoSession
	}

	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil || rec.ID == "" {
		s.logger.Warn("discarding unreadable session", "session_id", id, "error", err)
		return nil, ErrNoSession
	}
	sess := rec.VacationSession
	if sess.Expired(s.now(), s.ttl) {
		if err := s.Clear(ctx, id); err != nil {
			s.logger.Warn("failed to purge expired session", "session_id", id, "error", err)
		}
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *DynamoStore) Save(ctx context.Context, id string, d Details) (*VacationSession, error) {
	var existing *VacationSession
	if id != "" {
		loaded, err := s.Load(ctx, id)
		if err != nil && !errors.Is(err, ErrNoSession) {
			return nil, err
		}
		existing = loaded
	}

	now := s.now()
	merged := Merge(existing, d, now)
	if existing == nil && id != "" {
		merged.ID = id
	}

	item, err := attributevalue.MarshalMap(dynamoRecord{
		VacationSession: *merged,
		ExpiresAt:       now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("session: failed to marshal: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return nil, fmt.Errorf("session: failed to persist: %w", err)
	}
	return merged, nil
}

func (s *DynamoStore) Clear(ctx context.Context, id string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(id),
	}); err != nil {
		return fmt.Errorf("session: failed to clear: %w", err)
	}
	return nil
}
