package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

type badEvent struct{}

func (badEvent) EventType() string { return "" }

func TestNewEnvelope(t *testing.T) {
	fixedNow := time.Unix(0, 123456000).UTC()
	prevNow := nowFunc
	nowFunc = func() time.Time { return fixedNow }
	defer func() { nowFunc = prevNow }()

	id := uuid.MustParse("9a20d7d1-bf6a-4d33-bd55-5d25a816f1a8")
	env, err := NewEnvelope("conversation:chat-1", "corr-1", LeadEscalatedV1{
		ConversationID: "chat-1",
		Scenario:       "vacation-planning",
		Score:          72,
		Qualification:  "hot",
		Phone:          "050-1234567",
		OccurredAt:     fixedNow,
	}, WithEventID(id))
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if env.EventID != id {
		t.Fatalf("expected event id override, got %s", env.EventID)
	}
	if env.TimestampMicros != fixedNow.UnixMicro() {
		t.Fatalf("unexpected timestamp: %d", env.TimestampMicros)
	}
	if env.EventType != TypeLeadEscalatedV1 {
		t.Fatalf("unexpected type: %s", env.EventType)
	}
	if env.Aggregate != "conversation:chat-1" {
		t.Fatalf("unexpected aggregate: %s", env.Aggregate)
	}
	if len(env.Payload) == 0 {
		t.Fatal("expected payload bytes")
	}
}

func TestNewEnvelopeValidation(t *testing.T) {
	if _, err := NewEnvelope(" ", "", LeadEscalatedV1{}); err == nil {
		t.Fatal("expected aggregate error")
	}
	if _, err := NewEnvelope("conversation:1", "", nil); err == nil {
		t.Fatal("expected nil event error")
	}
	if _, err := NewEnvelope("conversation:1", "", badEvent{}); err == nil {
		t.Fatal("expected missing type error")
	}
}

func TestDecodeLeadEscalatedRoundTrip(t *testing.T) {
	env, err := NewEnvelope("conversation:chat-2", "", LeadEscalatedV1{
		ConversationID: "chat-2",
		Score:          100,
		Qualification:  "emergency",
		Reasons:        []string{"מצב חירום דורש טיפול מיידי"},
	})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := DecodeEnvelope(body)
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	evt, err := DecodeLeadEscalated(decoded)
	if err != nil {
		t.Fatalf("DecodeLeadEscalated failed: %v", err)
	}
	if evt.ConversationID != "chat-2" || evt.Score != 100 || len(evt.Reasons) != 1 {
		t.Fatalf("unexpected event: %+v", evt)
	}

	decoded.EventType = TypeConversationEndedV1
	if _, err := DecodeLeadEscalated(decoded); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEnvelope([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeEnvelope([]byte(`{"event_type":"x"}`)); err == nil {
		t.Fatal("expected missing id error")
	}
}
