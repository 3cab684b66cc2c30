package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/wolfman30/travel-ai-concierge/internal/events"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "sales@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "sales@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Travel Concierge" {
		t.Errorf("expected default from name 'Travel Concierge', got %q", sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "desk@example.com",
		Subject: "Test",
		Body:    "Test body",
	})
	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)

	if err := sender.Send(context.Background(), EmailMessage{To: "desk@example.com", Subject: "ליד"}); err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSESSender_NilWithoutClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{FromEmail: "sales@example.com"}, nil) != nil {
		t.Error("expected nil sender without client")
	}
}

func TestSESSender_Send(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "sales@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "desk@example.com",
		Subject: "ליד חם",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(api.input.FromEmailAddress); got != "Travel Concierge <sales@example.com>" {
		t.Errorf("unexpected from address %q", got)
	}
	if got := api.input.Destination.ToAddresses; len(got) != 1 || got[0] != "desk@example.com" {
		t.Errorf("unexpected recipients %v", got)
	}
	simple := api.input.Content.Simple
	if aws.ToString(simple.Subject.Data) != "ליד חם" {
		t.Errorf("unexpected subject %q", aws.ToString(simple.Subject.Data))
	}
	if simple.Body.Text == nil || simple.Body.Html == nil {
		t.Error("expected both text and html bodies")
	}
}

func TestSESSender_SendTextOnly(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "sales@example.com", FromName: "Desk"}, nil)

	if err := sender.Send(context.Background(), EmailMessage{To: "desk@example.com", Subject: "s", Body: "plain"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.input.Content.Simple.Body.Html != nil {
		t.Error("expected no html body")
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "sales@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "desk@example.com", Subject: "s", Body: "b"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, sender.client.(*fakeSES).err) {
		t.Errorf("expected wrapped SES error, got %v", err)
	}
}

func TestLeadEmail_RepliesToCustomer(t *testing.T) {
	evt := events.LeadEscalatedV1{
		ConversationID: "chat:77",
		Qualification:  "hot",
		Score:          85,
		Destination:    "פראג",
		Email:          " david@example.com ",
	}
	msg := leadEmail("desk@example.com", "דוד", evt)

	if msg.To != "desk@example.com" || msg.ReplyTo != "david@example.com" {
		t.Errorf("unexpected addressing to=%q reply-to=%q", msg.To, msg.ReplyTo)
	}
	if msg.Category != leadEmailCategory || msg.ConversationID != "chat:77" {
		t.Errorf("unexpected tags category=%q conversation=%q", msg.Category, msg.ConversationID)
	}
	if msg.Subject != "🔥 ליד חם (85) - דוד" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "יעד: פראג") || strings.Contains(msg.Body, "טלפון:") {
		t.Errorf("unexpected body %q", msg.Body)
	}
}

func TestSendGridSender_BuildTagsConversation(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "sales@example.com"}, nil)

	m := sender.build(EmailMessage{
		To:             "desk@example.com",
		Subject:        "ליד",
		Body:           "plain",
		ReplyTo:        "customer@example.com",
		Category:       leadEmailCategory,
		ConversationID: "chat:9",
	})

	if m.From.Address != "sales@example.com" || m.From.Name != "Travel Concierge" {
		t.Errorf("unexpected from %+v", m.From)
	}
	if m.ReplyTo == nil || m.ReplyTo.Address != "customer@example.com" {
		t.Errorf("unexpected reply-to %+v", m.ReplyTo)
	}
	if len(m.Categories) != 1 || m.Categories[0] != leadEmailCategory {
		t.Errorf("unexpected categories %v", m.Categories)
	}
	if len(m.Personalizations) != 1 || m.Personalizations[0].CustomArgs["conversation_id"] != "chat:9" {
		t.Errorf("expected conversation custom arg")
	}
	if len(m.Content) != 2 || m.Content[0].Type != "text/plain" || m.Content[1].Value != "plain" {
		t.Errorf("unexpected content %+v", m.Content)
	}

	bare := sender.build(EmailMessage{To: "desk@example.com", Subject: "s", Body: "b"})
	if bare.ReplyTo != nil || len(bare.Categories) != 0 {
		t.Error("expected no reply-to or categories")
	}
}

func TestSESSender_SendSetsReplyToAndTag(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "sales@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:       "desk@example.com",
		Subject:  "ליד",
		Body:     "b",
		ReplyTo:  "customer@example.com",
		Category: leadEmailCategory,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.input.ReplyToAddresses; len(got) != 1 || got[0] != "customer@example.com" {
		t.Errorf("unexpected reply-to %v", got)
	}
	if len(api.input.EmailTags) != 1 || aws.ToString(api.input.EmailTags[0].Value) != leadEmailCategory {
		t.Errorf("unexpected tags %+v", api.input.EmailTags)
	}
}
