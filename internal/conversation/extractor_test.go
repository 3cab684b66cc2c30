package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFacts(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		check func(t *testing.T, c Context)
	}{
		{
			name: "last mentioned destination wins",
			msg:  "חשבנו על פריז אבל בעצם רומא",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "רומא", c.Customer.Destination)
			},
		},
		{
			name: "prefixed destination",
			msg:  "רוצים לטוס לאמסטרדם",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "אמסטרדם", c.Customer.Destination)
			},
		},
		{
			name: "travelers",
			msg:  "אנחנו 3 נוסעים",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, 3, c.Customer.Travelers)
			},
		},
		{
			name: "slash date",
			msg:  "טסים ב-15/7 וחוזרים ב-22/7",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "15/7", c.Customer.Dates)
			},
		},
		{
			name: "dotted date needs a year",
			msg:  "חוזרים ב-14.8.26 בערב",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "14.8.26", c.Customer.Dates)
			},
		},
		{
			name: "decimal budget is not a date",
			msg:  "התקציב בערך 2.5 אלף לאדם",
			check: func(t *testing.T, c Context) {
				assert.Empty(t, c.Customer.Dates)
			},
		},
		{
			name: "decimal duration is not a date",
			msg:  "טיסה של 3.5 שעות לרומא",
			check: func(t *testing.T, c Context) {
				assert.Empty(t, c.Customer.Dates)
				assert.Equal(t, "רומא", c.Customer.Destination)
			},
		},
		{
			name: "month phrase",
			msg:  "חושבים לנסוע בסוף אוגוסט",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "בסוף אוגוסט", c.Customer.Dates)
			},
		},
		{
			name: "relative date",
			msg:  "אולי בחודש הבא",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "בחודש הבא", c.Customer.Dates)
			},
		},
		{
			name: "low budget",
			msg:  "מחפשים משהו זול",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, LevelLow, c.Customer.Budget)
			},
		},
		{
			name: "high budget",
			msg:  "רוצים חופשת יוקרה",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, LevelHigh, c.Customer.Budget)
			},
		},
		{
			name: "medium urgency",
			msg:  "צריך את זה בהקדם",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, LevelMedium, c.Customer.Urgency)
				assert.Equal(t, QualificationCold, c.Qualification)
			},
		},
		{
			name: "high urgency marks emergency",
			msg:  "מצב חירום, הדרכון אבד",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, LevelHigh, c.Customer.Urgency)
				assert.Equal(t, QualificationEmergency, c.Qualification)
			},
		},
		{
			name: "honeymoon purpose",
			msg:  "אנחנו בירח דבש",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "honeymoon", c.Customer.Purpose)
			},
		},
		{
			name: "company size from headcount",
			msg:  "יש לנו 120 עובדים",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "medium", c.Customer.CompanySize)
			},
		},
		{
			name: "contact details",
			msg:  "קוראים לי יוסי, הטלפון 052-7654321 והמייל yossi@example.co.il",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, "יוסי", c.Customer.Contact.Name)
				assert.Equal(t, "052-7654321", c.Customer.Contact.Phone)
				assert.Equal(t, "yossi@example.co.il", c.Customer.Contact.Email)
				assert.True(t, c.Objectives.ContactCollected)
			},
		},
		{
			name: "nothing recognizable",
			msg:  "hi there",
			check: func(t *testing.T, c Context) {
				assert.Equal(t, CustomerInfo{}, c.Customer)
				assert.Equal(t, Objectives{}, c.Objectives)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Extract(NewContext(ScenarioVacationPlanning), tt.msg))
		})
	}
}

func TestExtractNeverClearsKnownFacts(t *testing.T) {
	c := Extract(NewContext(ScenarioVacationPlanning), "טסים ללונדון, 2 אנשים, ב-3/9")
	c = Extract(c, "תודה!")
	c = Extract(c, "")

	assert.Equal(t, "לונדון", c.Customer.Destination)
	assert.Equal(t, 2, c.Customer.Travelers)
	assert.Equal(t, "3/9", c.Customer.Dates)
	assert.True(t, c.Objectives.InfoGathered)
}

func TestExtractDoesNotMutateInput(t *testing.T) {
	start := NewContext(ScenarioVacationPlanning)
	_ = Extract(start, "טסים לפראג, 2 אנשים, 050-1112233")
	assert.Equal(t, NewContext(ScenarioVacationPlanning), start)
}

func TestExtractUrgencyDoesNotDowngrade(t *testing.T) {
	c := Extract(NewContext(ScenarioVacationPlanning), "דחוף")
	c = Extract(c, "בקרוב נחליט")
	assert.Equal(t, LevelHigh, c.Customer.Urgency)
}
