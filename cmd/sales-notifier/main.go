package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/wolfman30/travel-ai-concierge/cmd/mainconfig"
	appconfig "github.com/wolfman30/travel-ai-concierge/internal/config"
	"github.com/wolfman30/travel-ai-concierge/internal/events"
	"github.com/wolfman30/travel-ai-concierge/internal/notify"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

const consumerName = "sales-notifier"

type dedupeStore interface {
	Seen(ctx context.Context, consumer string, env events.Envelope) (bool, error)
	Record(ctx context.Context, consumer string, env events.Envelope) (bool, error)
}

type leadNotifier interface {
	NotifyLeadEscalated(ctx context.Context, evt events.LeadEscalatedV1) error
}

// consumer turns queued lead events into sales desk notifications.
type consumer struct {
	notifier leadNotifier
	dedupe   dedupeStore
	logger   *logging.Logger
}

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel).Component(consumerName)

	c, err := newConsumer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to start sales notifier", "error", err)
		os.Exit(1)
	}
	lambda.Start(c.handle)
}

func newConsumer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*consumer, error) {
	recipients := notify.Recipients{
		Emails: splitList(cfg.SalesNotifyEmail),
		Phones: splitList(cfg.SalesNotifyPhone),
	}
	if len(recipients.Emails) == 0 && len(recipients.Phones) == 0 {
		return nil, errors.New("SALES_NOTIFY_EMAIL or SALES_NOTIFY_PHONE is required")
	}

	var email notify.EmailSender
	switch {
	case cfg.SendGridAPIKey != "":
		email = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case cfg.SESFromEmail != "":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		email = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	default:
		email = notify.NewStubEmailSender(logger)
	}

	var sms notify.SMSSender
	if cfg.TwilioAccountSID != "" {
		twilioSender, err := notify.NewTwilioSMSSender(notify.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
		}, logger)
		if err != nil {
			return nil, err
		}
		sms = twilioSender
	}

	c := &consumer{
		notifier: notify.NewService(email, sms, recipients, logger),
		logger:   logger,
	}
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		c.dedupe = events.NewProcessedStore(pool)
	}
	return c, nil
}

// handle reports failed records individually so SQS only redelivers those.
func (c *consumer) handle(ctx context.Context, evt awsevents.SQSEvent) (awsevents.SQSEventResponse, error) {
	var resp awsevents.SQSEventResponse
	for _, record := range evt.Records {
		if err := c.process(ctx, record); err != nil {
			c.logger.Error("failed to process lead event", "message_id", record.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, awsevents.SQSBatchItemFailure{
				ItemIdentifier: record.MessageId,
			})
		}
	}
	return resp, nil
}

func (c *consumer) process(ctx context.Context, record awsevents.SQSMessage) error {
	env, err := events.DecodeEnvelope([]byte(record.Body))
	if err != nil {
		// Malformed messages would fail forever; drop them.
		c.logger.Warn("dropping malformed lead event", "message_id", record.MessageId, "error", err)
		return nil
	}

	switch env.EventType {
	case events.TypeLeadEscalatedV1:
	case events.TypeConversationEndedV1:
		c.logger.Debug("conversation ended", "aggregate", env.Aggregate, "event_id", env.EventID)
		return nil
	default:
		c.logger.Warn("ignoring unknown event type", "event_type", env.EventType, "event_id", env.EventID)
		return nil
	}

	eventID := env.EventID.String()
	if c.dedupe != nil {
		done, err := c.dedupe.Seen(ctx, consumerName, env)
		if err != nil {
			return fmt.Errorf("check processed: %w", err)
		}
		if done {
			c.logger.Info("skipping duplicate lead event", "event_id", eventID)
			return nil
		}
	}

	lead, err := events.DecodeLeadEscalated(env)
	if err != nil {
		c.logger.Warn("dropping undecodable lead event", "event_id", eventID, "error", err)
		return nil
	}

	notifyCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	if err := c.notifier.NotifyLeadEscalated(notifyCtx, lead); err != nil {
		return err
	}

	if c.dedupe != nil {
		if _, err := c.dedupe.Record(ctx, consumerName, env); err != nil {
			c.logger.Warn("failed to mark lead event processed", "event_id", eventID, "error", err)
		}
	}
	c.logger.Info("sales desk notified",
		"event_id", eventID,
		"conversation_id", lead.ConversationID,
		"qualification", lead.Qualification,
		"score", lead.Score,
	)
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
