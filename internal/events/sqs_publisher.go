package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends canonical events to an SQS queue.
type SQSPublisher struct {
	client   sqsAPI
	queueURL string
}

// NewSQSPublisher creates a publisher for the queue.
func NewSQSPublisher(client sqsAPI, queueURL string) *SQSPublisher {
	if client == nil {
		panic("events: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("events: SQS queueURL cannot be empty")
	}
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Publish wraps evt in an envelope and sends it.
func (p *SQSPublisher) Publish(ctx context.Context, aggregate string, evt CanonicalEvent) (Envelope, error) {
	env, err := NewEnvelope(aggregate, "", evt)
	if err != nil {
		return Envelope{}, err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal envelope: %w", err)
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(env.EventType)},
		},
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("events: send SQS message: %w", err)
	}
	return env, nil
}

// PublishLeadEscalated publishes the escalation keyed by conversation.
func (p *SQSPublisher) PublishLeadEscalated(ctx context.Context, evt LeadEscalatedV1) error {
	_, err := p.Publish(ctx, "conversation:"+evt.ConversationID, evt)
	return err
}

// PublishConversationEnded publishes the end-of-chat event.
func (p *SQSPublisher) PublishConversationEnded(ctx context.Context, evt ConversationEndedV1) error {
	_, err := p.Publish(ctx, "conversation:"+evt.ConversationID, evt)
	return err
}
