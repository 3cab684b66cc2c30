package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/travel-ai-concierge/internal/events"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

const defaultFromName = "Travel Concierge"

// Israel time for the sales desk.
var salesDeskZone = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		return time.FixedZone("IST", 2*60*60)
	}
	return loc
}()

// Recipients lists who on the sales desk hears about escalated leads.
type Recipients struct {
	Emails []string
	Phones []string
}

// Service notifies the sales desk when a lead is escalated.
type Service struct {
	email      EmailSender
	sms        SMSSender
	recipients Recipients
	logger     *logging.Logger
}

// NewService creates a notification service. Either sender may be nil.
func NewService(email EmailSender, sms SMSSender, recipients Recipients, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		sms:        sms,
		recipients: recipients,
		logger:     logger,
	}
}

// NotifyLeadEscalated emails and texts every configured recipient.
func (s *Service) NotifyLeadEscalated(ctx context.Context, evt events.LeadEscalatedV1) error {
	var errs []error
	name := evt.ContactName
	if name == "" {
		name = "לקוח חדש"
	}

	if s.email != nil && len(s.recipients.Emails) > 0 {
		for _, recipient := range s.recipients.Emails {
			msg := leadEmail(recipient, name, evt)
			if err := s.email.Send(ctx, msg); err != nil {
				s.logger.Error("notify: failed to send email", "error", err, "to", recipient)
				errs = append(errs, err)
			} else {
				s.logger.Info("notify: escalation email sent", "to", recipient, "conversation_id", evt.ConversationID)
			}
		}
	}

	if s.sms != nil && len(s.recipients.Phones) > 0 {
		smsBody := leadSMSBody(name, evt)
		for _, recipient := range s.recipients.Phones {
			if err := s.sms.SendSMS(ctx, recipient, smsBody); err != nil {
				s.logger.Error("notify: failed to send sales SMS", "error", err, "to", recipient)
				errs = append(errs, err)
			} else {
				s.logger.Info("notify: escalation SMS sent", "to", recipient, "conversation_id", evt.ConversationID)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

func leadSMSBody(name string, evt events.LeadEscalatedV1) string {
	parts := []string{fmt.Sprintf("🔥 ליד %s (%d): %s", qualificationLabel(evt.Qualification), evt.Score, name)}
	if evt.Phone != "" {
		parts = append(parts, "טל׳ "+evt.Phone)
	}
	if evt.Destination != "" {
		parts = append(parts, "יעד "+evt.Destination)
	}
	if evt.Dates != "" {
		parts = append(parts, evt.Dates)
	}
	return strings.Join(parts, " | ")
}
