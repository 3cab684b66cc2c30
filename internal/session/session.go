// Package session keeps the durable trip record a traveler builds up across
// chat visits, and the suggestions derived from it.
package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultTTL is the inactivity window after which a session is purged.
const DefaultTTL = 24 * time.Hour

// ErrNoSession is returned when a session is absent, expired or unreadable.
var ErrNoSession = errors.New("session: not found")

// VacationSession is the trip record persisted between conversations.
type VacationSession struct {
	ID          string    `json:"session_id" dynamodbav:"session_id"`
	Name        string    `json:"customer_name" dynamodbav:"customer_name"`
	Destination string    `json:"destination" dynamodbav:"destination"`
	Dates       string    `json:"dates" dynamodbav:"dates"`
	Travelers   int       `json:"travelers" dynamodbav:"travelers"`
	Budget      string    `json:"budget,omitempty" dynamodbav:"budget,omitempty"`
	Purpose     string    `json:"purpose,omitempty" dynamodbav:"purpose,omitempty"`
	Interests   []string  `json:"interests" dynamodbav:"interests"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	LastUpdated time.Time `json:"last_updated" dynamodbav:"last_updated"`
}

// Valid reports whether the session carries enough to personalize a prompt.
func (s *VacationSession) Valid() bool {
	return s != nil && strings.TrimSpace(s.Destination) != "" && strings.TrimSpace(s.Name) != ""
}

// Expired reports whether the session has been idle longer than ttl.
func (s *VacationSession) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Sub(s.LastUpdated) > ttl
}

// Details is a partial update extracted from a conversation. Zero values mean
// "not mentioned" and never overwrite what the session already holds.
type Details struct {
	Name        string
	Destination string
	Dates       string
	Travelers   int
	Budget      string
	Purpose     string
	Interests   []string
}

// Empty reports whether the update carries no facts at all.
func (d Details) Empty() bool {
	return d.Name == "" && d.Destination == "" && d.Dates == "" && d.Travelers == 0 &&
		d.Budget == "" && d.Purpose == "" && len(d.Interests) == 0
}

// Merge applies d on top of existing (which may be nil) and returns a new
// session stamped with now. The ID and CreatedAt of an existing session are kept.
func Merge(existing *VacationSession, d Details, now time.Time) *VacationSession {
	merged := &VacationSession{}
	if existing != nil {
		*merged = *existing
		merged.Interests = slices.Clone(existing.Interests)
	}
	if merged.ID == "" {
		merged.ID = NewID(now)
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = now
	}
	merged.LastUpdated = now

	merged.Name = pick(d.Name, merged.Name)
	merged.Destination = pick(d.Destination, merged.Destination)
	merged.Dates = pick(d.Dates, merged.Dates)
	merged.Budget = pick(d.Budget, merged.Budget)
	merged.Purpose = pick(d.Purpose, merged.Purpose)
	if d.Travelers > 0 {
		merged.Travelers = d.Travelers
	}
	if len(d.Interests) > 0 {
		merged.Interests = slices.Clone(d.Interests)
	}
	if merged.Interests == nil {
		merged.Interests = []string{}
	}
	return merged
}

func pick(update, current string) string {
	if strings.TrimSpace(update) != "" {
		return update
	}
	return current
}

// NewID returns a time-ordered session identifier.
func NewID(now time.Time) string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(now), rand.Reader).String())
}

// Store persists vacation sessions keyed by session ID.
type Store interface {
	// Load returns ErrNoSession when the session is missing, expired or malformed.
	Load(ctx context.Context, id string) (*VacationSession, error)
	// Save merges d into the stored session, creating it when id is empty or unknown.
	Save(ctx context.Context, id string, d Details) (*VacationSession, error)
	Clear(ctx context.Context, id string) error
}

func encode(s *VacationSession) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("session: failed to marshal: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*VacationSession, error) {
	var s VacationSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: failed to decode: %w", err)
	}
	if s.ID == "" || s.LastUpdated.IsZero() {
		return nil, errors.New("session: payload missing id or timestamp")
	}
	return &s, nil
}
