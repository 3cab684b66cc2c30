package conversation

import (
	"errors"
	"slices"
)

var (
	// ErrEmptyMessage is returned when a turn carries no text.
	ErrEmptyMessage = errors.New("conversation: message is empty")
	// ErrUnknownConversation is returned when no state exists for an ID.
	ErrUnknownConversation = errors.New("conversation: unknown conversation")
	// ErrUnknownScenario is returned when a start request names no known scenario.
	ErrUnknownScenario = errors.New("conversation: unknown scenario")
)

// Stage is the sales stage a conversation is in. Stages only move forward.
type Stage string

const (
	StageInformationGathering Stage = "information-gathering"
	StageRecommendations      Stage = "recommendations"
	StageUpselling            Stage = "upselling"
	StageClosing              Stage = "closing"
)

var stageOrder = []Stage{
	StageInformationGathering,
	StageRecommendations,
	StageUpselling,
	StageClosing,
}

// Rank is the stage's position in the sales sequence, -1 when unknown.
func (s Stage) Rank() int {
	return slices.Index(stageOrder, s)
}

// Qualification is the lead tier derived from the score.
type Qualification string

const (
	QualificationCold      Qualification = "cold"
	QualificationWarm      Qualification = "warm"
	QualificationHot       Qualification = "hot"
	QualificationEmergency Qualification = "emergency"
)

// Level grades budget and urgency.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Service identifiers for upsells already put in front of the customer.
const (
	ServiceInsurance     = "insurance"
	ServiceBusinessClass = "business-class"
	ServiceCarRental     = "car-rental"
	ServiceAttractions   = "attractions"
	ServiceVIP           = "vip"
)

type ContactDetails struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// CustomerInfo holds extracted facts. Zero values mean "not known yet".
type CustomerInfo struct {
	Destination string         `json:"destination,omitempty"`
	Dates       string         `json:"dates,omitempty"`
	Travelers   int            `json:"travelers,omitempty"`
	Budget      Level          `json:"budget,omitempty"`
	Purpose     string         `json:"purpose,omitempty"`
	CompanySize string         `json:"company_size,omitempty"`
	Urgency     Level          `json:"urgency,omitempty"`
	Contact     ContactDetails `json:"contact,omitempty"`
}

// Objectives are the business goals of a conversation. Each only flips to true.
type Objectives struct {
	InfoGathered        bool `json:"info_gathered"`
	RecommendationsMade bool `json:"recommendations_made"`
	UpsellPresented     bool `json:"upsell_presented"`
	ContactCollected    bool `json:"contact_collected"`
	FollowupScheduled   bool `json:"followup_scheduled"`
}

// Merge ORs two objective sets.
func (o Objectives) Merge(other Objectives) Objectives {
	return Objectives{
		InfoGathered:        o.InfoGathered || other.InfoGathered,
		RecommendationsMade: o.RecommendationsMade || other.RecommendationsMade,
		UpsellPresented:     o.UpsellPresented || other.UpsellPresented,
		ContactCollected:    o.ContactCollected || other.ContactCollected,
		FollowupScheduled:   o.FollowupScheduled || other.FollowupScheduled,
	}
}

// Completed counts the objectives already met.
func (o Objectives) Completed() int {
	n := 0
	for _, done := range []bool{o.InfoGathered, o.RecommendationsMade, o.UpsellPresented, o.ContactCollected, o.FollowupScheduled} {
		if done {
			n++
		}
	}
	return n
}

// Context is the per-conversation state. Functions in this package treat it
// as a value: they return a new Context rather than mutating their input.
type Context struct {
	Scenario         string        `json:"scenario"`
	Stage            Stage         `json:"stage"`
	MessageCount     int           `json:"message_count"`
	Customer         CustomerInfo  `json:"customer"`
	ProposedServices []string      `json:"proposed_services"`
	Qualification    Qualification `json:"qualification"`
	Objectives       Objectives    `json:"objectives"`
	Escalated        bool          `json:"escalated"`
}

// NewContext returns the initial state for a scenario.
func NewContext(scenario string) Context {
	return Context{
		Scenario:         scenario,
		Stage:            StageInformationGathering,
		ProposedServices: []string{},
		Qualification:    QualificationCold,
	}
}

func (c Context) clone() Context {
	c.ProposedServices = slices.Clone(c.ProposedServices)
	if c.ProposedServices == nil {
		c.ProposedServices = []string{}
	}
	return c
}

// HasProposed reports whether a service was already offered.
func (c Context) HasProposed(service string) bool {
	return slices.Contains(c.ProposedServices, service)
}

// WithProposed returns a copy with the services added, keeping set semantics.
func (c Context) WithProposed(services ...string) Context {
	out := c.clone()
	for _, service := range services {
		if service != "" && !out.HasProposed(service) {
			out.ProposedServices = append(out.ProposedServices, service)
		}
	}
	return out
}

// WithObjectives returns a copy with the given objectives marked complete.
func (c Context) WithObjectives(done Objectives) Context {
	out := c.clone()
	out.Objectives = out.Objectives.Merge(done)
	return out
}
