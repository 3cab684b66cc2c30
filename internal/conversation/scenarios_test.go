package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/travel-ai-concierge/internal/session"
)

func TestScenariosCatalogue(t *testing.T) {
	list := Scenarios()
	require.Len(t, list, 5)

	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.Title, s.ID)
		assert.NotEmpty(t, s.InitialMessage, s.ID)
		assert.NotEmpty(t, s.Objectives, s.ID)
		assert.Contains(t, s.SystemPrompt, agencyName, s.ID)
	}
	assert.Equal(t, []string{
		ScenarioVacationPlanning,
		ScenarioUpcomingTrip,
		ScenarioConcierge,
		ScenarioBusinessTravel,
		ScenarioEmergency,
	}, ids)

	list[0].Title = "changed"
	first, _ := LookupScenario(ScenarioVacationPlanning)
	assert.NotEqual(t, "changed", first.Title)
}

func TestLookupScenarioUnknown(t *testing.T) {
	_, ok := LookupScenario("space-travel")
	assert.False(t, ok)
}

func TestGreeting(t *testing.T) {
	sess := &session.VacationSession{Name: "דנה", Destination: "פראג"}

	upcoming, _ := LookupScenario(ScenarioUpcomingTrip)
	assert.Equal(t, upcoming.InitialMessage, Greeting(ScenarioUpcomingTrip, nil))
	assert.Contains(t, Greeting(ScenarioUpcomingTrip, sess), "היי דנה!")
	assert.Contains(t, Greeting(ScenarioUpcomingTrip, sess), "לפראג")
	assert.Contains(t, Greeting(ScenarioConcierge, sess), "בוקר טוב דנה!")

	planning, _ := LookupScenario(ScenarioVacationPlanning)
	assert.Equal(t, planning.InitialMessage, Greeting(ScenarioVacationPlanning, sess))

	assert.Contains(t, Greeting("unknown", sess), agencyName)
}
