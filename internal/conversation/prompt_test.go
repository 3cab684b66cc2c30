package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/travel-ai-concierge/internal/session"
)

var promptNow = time.Date(2026, 7, 3, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return promptNow }

func TestBuildUnknownScenario(t *testing.T) {
	b := NewPromptBuilder(fixedClock)
	assert.Empty(t, b.Build(NewContext("no-such-scenario"), nil))
}

func TestBuildIncludesContextAndStage(t *testing.T) {
	c := NewContext(ScenarioVacationPlanning)
	c.MessageCount = 4
	c.Stage = StageRecommendations
	c.Qualification = QualificationWarm
	c.Customer = CustomerInfo{Destination: "יוון", Travelers: 4, Dates: "בקיץ", Contact: ContactDetails{Phone: "0501234567"}}
	c.Objectives = Objectives{InfoGathered: true, ContactCollected: true}

	scenario, ok := LookupScenario(ScenarioVacationPlanning)
	require.True(t, ok)

	prompt := NewPromptBuilder(fixedClock).Build(c, nil)
	assert.True(t, strings.HasPrefix(prompt, scenario.SystemPrompt+"\n\n"))
	assert.Contains(t, prompt, "מספר הודעות בשיחה: 4")
	assert.Contains(t, prompt, "סיווג הליד: warm")
	assert.Contains(t, prompt, "יעד: יוון")
	assert.Contains(t, prompt, "מספר נוסעים: 4")
	assert.Contains(t, prompt, "טלפון: 0501234567")
	assert.Contains(t, prompt, "- מידע נאסף: ✅")
	assert.Contains(t, prompt, "- המלצות ניתנו: ❌")
	assert.Contains(t, prompt, "הוראות לשלב הנוכחי:\n"+stageInstructions[StageRecommendations])
	assert.True(t, strings.HasSuffix(prompt, promptClosingNote))
}

func TestBuildSessionBlock(t *testing.T) {
	sess := &session.VacationSession{
		ID:          "s1",
		Name:        "דנה",
		Destination: "פראג",
		Dates:       "10/7-15/7",
		Travelers:   2,
		Budget:      "high",
		Interests:   []string{"אוכל", "היסטוריה"},
		CreatedAt:   promptNow.Add(-50 * time.Hour),
		LastUpdated: promptNow,
	}
	b := NewPromptBuilder(fixedClock)

	upcoming := b.Build(NewContext(ScenarioUpcomingTrip), sess)
	assert.Contains(t, upcoming, "=== מידע על הלקוח מהמערכת ===")
	assert.Contains(t, upcoming, "שם הלקוח: דנה")
	assert.Contains(t, upcoming, "תחומי עניין: אוכל, היסטוריה")
	assert.Contains(t, upcoming, "המלצות זמינות:\n• ")
	for _, rec := range session.Recommendations(sess) {
		assert.Contains(t, upcoming, "• "+rec)
	}

	concierge := b.Build(NewContext(ScenarioConcierge), sess)
	assert.Contains(t, concierge, "(ביום 3 מתוך 4 ימים)")
	assert.Contains(t, concierge, "פעילויות זמינות היום:")
	assert.NotContains(t, concierge, "המלצות זמינות:")

	planning := b.Build(NewContext(ScenarioVacationPlanning), sess)
	assert.NotContains(t, planning, "=== מידע על הלקוח מהמערכת ===")
}

func TestBuildSkipsIncompleteSession(t *testing.T) {
	sess := &session.VacationSession{ID: "s1", Destination: "רומא"}
	prompt := NewPromptBuilder(fixedClock).Build(NewContext(ScenarioUpcomingTrip), sess)
	assert.NotContains(t, prompt, "=== מידע על הלקוח מהמערכת ===")
}
