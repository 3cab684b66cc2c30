package archive

import "time"

// TranscriptRecord is the archived form of a finished chat.
type TranscriptRecord struct {
	Version         string    `json:"version"`
	ConversationID  string    `json:"conversation_id"`
	Scenario        string    `json:"scenario"`
	SessionID       string    `json:"session_id,omitempty"`
	PhoneHash       string    `json:"phone_hash,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	ArchivedAt      time.Time `json:"archived_at"`
	DurationSeconds int       `json:"duration_seconds"`
	MessageCount    int       `json:"message_count"`
	Outcome         Outcome   `json:"outcome"`
	Messages        []Message `json:"messages"`
}

// Outcome is the sales result of the chat at the moment it ended.
type Outcome struct {
	Stage            string   `json:"stage"`
	Qualification    string   `json:"qualification"`
	Score            int      `json:"score"`
	Destination      string   `json:"destination,omitempty"`
	ProposedServices []string `json:"proposed_services"`
	ContactCollected bool     `json:"contact_collected"`
	Escalated        bool     `json:"escalated"`
}

// Message is a single conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	ConversationID string `json:"conversation_id"`
	S3Key          string `json:"s3_key"`
	Scenario       string `json:"scenario"`
	Qualification  string `json:"qualification"`
	Score          int    `json:"score"`
	ArchivedAt     string `json:"archived_at"`
	MessageCount   int    `json:"message_count"`
}
