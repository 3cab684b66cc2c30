package leads

import (
	"strings"
	"time"
)

// Lead is the analytics snapshot of one chat, keyed by conversation id and
// rewritten after every turn.
type Lead struct {
	ID            string    `json:"id"`
	Scenario      string    `json:"scenario"`
	Stage         string    `json:"stage"`
	Score         int       `json:"score"`
	Qualification string    `json:"qualification"`
	Reasons       []string  `json:"reasons"`
	NextActions   []string  `json:"next_actions"`
	Destination   string    `json:"destination,omitempty"`
	Dates         string    `json:"dates,omitempty"`
	Travelers     int       `json:"travelers,omitempty"`
	Budget        string    `json:"budget,omitempty"`
	ContactName   string    `json:"contact_name,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	MessageCount  int       `json:"message_count"`
	Escalated     bool      `json:"escalated"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasContact reports whether sales can reach the customer.
func (l *Lead) HasContact() bool {
	return strings.TrimSpace(l.Phone) != "" || strings.TrimSpace(l.Email) != ""
}

// Validate checks the snapshot before it is stored
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrMissingID
	}
	return nil
}

var knownQualifications = map[string]bool{"cold": true, "warm": true, "hot": true, "emergency": true}

// ListLeadsFilter narrows an admin listing.
type ListLeadsFilter struct {
	Qualification string
	Scenario      string
	Limit         int
	Offset        int
}

// Validate normalizes paging and rejects unknown tiers.
func (f *ListLeadsFilter) Validate() error {
	f.Qualification = strings.ToLower(strings.TrimSpace(f.Qualification))
	if f.Qualification != "" && !knownQualifications[f.Qualification] {
		return ErrInvalidQualification
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}
