package events

import "time"

const (
	TypeLeadEscalatedV1     = "lead.escalated.v1"
	TypeConversationEndedV1 = "conversation.ended.v1"
)

// LeadEscalatedV1 is published the first time a chat qualifies for a
// salesperson's attention.
type LeadEscalatedV1 struct {
	ConversationID string    `json:"conversation_id"`
	Scenario       string    `json:"scenario"`
	Stage          string    `json:"stage"`
	Score          int       `json:"score"`
	Qualification  string    `json:"qualification"`
	Reasons        []string  `json:"reasons"`
	NextActions    []string  `json:"next_actions"`
	Destination    string    `json:"destination,omitempty"`
	Dates          string    `json:"dates,omitempty"`
	Travelers      int       `json:"travelers,omitempty"`
	ContactName    string    `json:"contact_name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (LeadEscalatedV1) EventType() string { return TypeLeadEscalatedV1 }

// ConversationEndedV1 is published when the customer closes a chat.
type ConversationEndedV1 struct {
	ConversationID string    `json:"conversation_id"`
	Scenario       string    `json:"scenario"`
	Stage          string    `json:"stage"`
	Qualification  string    `json:"qualification"`
	MessageCount   int       `json:"message_count"`
	ArchiveKey     string    `json:"archive_key,omitempty"`
	EndedAt        time.Time `json:"ended_at"`
}

func (ConversationEndedV1) EventType() string { return TypeConversationEndedV1 }
