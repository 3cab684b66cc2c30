package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/travel-ai-concierge/internal/events"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

const leadEmailCategory = "lead-escalated"

// EmailSender delivers sales desk emails. SendGrid and SES both implement it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one email to a sales desk recipient.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
	// ReplyTo is the customer's address so the desk can answer directly.
	ReplyTo        string
	Category       string
	ConversationID string
}

// leadEmail renders the escalation email for one recipient.
func leadEmail(to, name string, evt events.LeadEscalatedV1) EmailMessage {
	fields := leadFields(name, evt)
	return EmailMessage{
		To:             to,
		Subject:        fmt.Sprintf("🔥 ליד %s (%d) - %s", qualificationLabel(evt.Qualification), evt.Score, name),
		Body:           leadEmailBody(name, fields),
		HTML:           leadEmailHTML(name, fields),
		ReplyTo:        strings.TrimSpace(evt.Email),
		Category:       leadEmailCategory,
		ConversationID: evt.ConversationID,
	}
}

func qualificationLabel(q string) string {
	switch q {
	case "hot":
		return "חם"
	case "warm":
		return "פושר"
	default:
		return "קר"
	}
}

type leadField struct {
	label string
	value string
}

// leadFields lists the lead facts in the order the desk reads them. Empty
// values are dropped.
func leadFields(name string, evt events.LeadEscalatedV1) []leadField {
	all := []leadField{
		{"שם", name},
		{"טלפון", evt.Phone},
		{"אימייל", evt.Email},
		{"יעד", evt.Destination},
		{"תאריכים", evt.Dates},
	}
	if evt.Travelers > 0 {
		all = append(all, leadField{"נוסעים", fmt.Sprintf("%d", evt.Travelers)})
	}
	all = append(all,
		leadField{"תרחיש", evt.Scenario},
		leadField{"שלב", evt.Stage},
		leadField{"ציון", fmt.Sprintf("%d", evt.Score)},
		leadField{"סיבות", strings.Join(evt.Reasons, ", ")},
		leadField{"פעולות הבאות", strings.Join(evt.NextActions, ", ")},
		leadField{"שיחה", evt.ConversationID},
	)
	if !evt.OccurredAt.IsZero() {
		all = append(all, leadField{"זמן", evt.OccurredAt.In(salesDeskZone).Format("02/01/2006 15:04")})
	}

	fields := all[:0]
	for _, f := range all {
		if f.value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func leadEmailBody(name string, fields []leadField) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s מוכן לשיחה עם נציג מכירות.\n\n", name)
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	b.WriteString("\nTravel Concierge")
	return b.String()
}

func leadEmailHTML(name string, fields []leadField) string {
	var rows strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&rows, `<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`,
			html.EscapeString(f.label), html.EscapeString(f.value))
	}
	return fmt.Sprintf(`<div dir="rtl" style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #f97316;">🔥 ליד מוכן למכירה</h2>
<p><strong>%s</strong> מוכן לשיחה עם נציג.</p>
<table style="border-collapse: collapse; margin: 20px 0;">%s</table>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">Travel Concierge</p>
</div>`, html.EscapeString(name), rows.String())
}

// SendGridSender sends sales desk emails through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	response, err := s.client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To, "conversation_id", msg.ConversationID)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "conversation_id", msg.ConversationID, "status", response.StatusCode)
	return nil
}

// build tags the mail with the conversation id so SendGrid activity can be
// traced back to the chat.
func (s *SendGridSender) build(msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	if msg.ConversationID != "" {
		p.SetCustomArg("conversation_id", msg.ConversationID)
	}
	m.AddPersonalizations(p)

	htmlBody := msg.HTML
	if htmlBody == "" {
		htmlBody = msg.Body
	}
	m.AddContent(mail.NewContent("text/plain", msg.Body), mail.NewContent("text/html", htmlBody))

	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	return m
}

// StubEmailSender logs emails instead of sending them.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject, "conversation_id", msg.ConversationID)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
