package conversation

import (
	"fmt"
	"strings"
	"time"
)

const (
	emergencyNudge    = "אני כאן עד שנפתור את הבעיה! מה עוד אני יכול לעזור? 🆘"
	contactNudge      = "כדי שאוכל לשלוח לכם הצעה מפורטת, תוכלו לשתף אותי במספר טלפון? 📱"
	upsellTemplate    = "אגב, שכחתי להציע לכם %s - זה משדרג את הנסיעה מאוד! 💎"
	contactNudgeAfter = 6
	hotBoosterAfter   = 6
	morningEndsHour   = 12
	afternoonEndsHour = 17
)

// Followup is an optional question appended after the assistant's reply.
// Service is set when the followup offers an upsell.
type Followup struct {
	Text    string
	Service string
}

type upsellOffer struct {
	service    string
	text       string
	applicable func(Context) bool
}

var upsellOffers = []upsellOffer{
	{ServiceInsurance, "ביטוח נסיעות מקיף 🛡️", func(Context) bool { return true }},
	{ServiceBusinessClass, "שדרוג למחלקת עסקים במחיר מיוחד ✈️", func(c Context) bool {
		return c.Qualification == QualificationHot || c.Scenario == ScenarioBusinessTravel
	}},
	{ServiceCarRental, "השכרת רכב עם ביטוח מלא 🚗", func(c Context) bool { return c.Scenario != ScenarioEmergency }},
	{ServiceAttractions, "כרטיסי כניסה מראש לאטרקציות מובילות 🎫", func(c Context) bool { return c.Scenario == ScenarioVacationPlanning }},
	{ServiceVIP, "שירותי VIP בנמל תעופה 🌟", func(c Context) bool { return c.Scenario == ScenarioBusinessTravel }},
}

// SuggestFollowup returns the followup question for the turn, or "".
func SuggestFollowup(c Context, reply string) string {
	return NextFollowup(c, reply).Text
}

// NextFollowup picks at most one followup for the reply just produced.
func NextFollowup(c Context, reply string) Followup {
	if c.Stage == StageClosing || strings.Contains(reply, "?") {
		return Followup{}
	}
	if c.Qualification == QualificationEmergency {
		return Followup{Text: emergencyNudge}
	}
	if c.MessageCount > contactNudgeAfter && !c.Objectives.ContactCollected {
		return Followup{Text: contactNudge}
	}

	switch c.Stage {
	case StageInformationGathering:
		return Followup{Text: missingFactQuestion(c)}
	case StageRecommendations, StageUpselling:
		for _, offer := range upsellOffers {
			if !c.HasProposed(offer.service) && offer.applicable(c) {
				return Followup{Text: fmt.Sprintf(upsellTemplate, offer.text), Service: offer.service}
			}
		}
	}
	return Followup{}
}

func missingFactQuestion(c Context) string {
	info := c.Customer
	switch {
	case info.Destination == "":
		return "איפה בדיוק אתם מתכננים לטוס? 🌍"
	case info.Dates == "":
		return "מתי אתם מתכננים לצאת לנסיעה? 📅"
	case info.Travelers == 0:
		return "כמה אנשים יהיו בנסיעה? 👥"
	case info.Budget == "":
		return "איזה תקציב בערך יש לכם בראש? 💰"
	case c.Scenario == ScenarioBusinessTravel && info.CompanySize == "":
		return "איזה סוג של חברה אתם? זה יעזור לי להציע פתרונות עסקיים מותאמים 💼"
	}
	return ""
}

// SchedulingPrompt invites the customer to book a call, worded for the
// time of day.
func SchedulingPrompt(c Context, now time.Time) string {
	var partOfDay string
	switch hour := now.Hour(); {
	case hour < morningEndsHour:
		partOfDay = "בבוקר"
	case hour < afternoonEndsHour:
		partOfDay = "אחר הצהריים"
	default:
		partOfDay = "בערב"
	}

	switch c.Scenario {
	case ScenarioEmergency:
		return fmt.Sprintf("אני זמין עכשיו לשיחת חירום! מתי נוח לכם? אפילו %s 🆘", partOfDay)
	case ScenarioBusinessTravel:
		return fmt.Sprintf("מתי נוח לכם לשיחת ייעוץ עסקית? אפשר גם %s או מחר בבוקר 💼", partOfDay)
	default:
		return fmt.Sprintf("מתי נוח לכם לשיחה קצרה? אפשר גם %s או מתי שנוח לכם 📞", partOfDay)
	}
}

// UrgencyBooster returns a line nudging the customer to decide, or "".
func UrgencyBooster(c Context) string {
	switch {
	case c.Qualification == QualificationHot && c.MessageCount > hotBoosterAfter:
		return "אגב, המחירים האלה זמינים רק השבוע - כדאי לא לחכות יותר מדי! ⏰"
	case c.Scenario == ScenarioEmergency:
		return "בוא נפתור את זה מהר - יש לי פתרונות מיידיים! ⚡"
	case c.Customer.Urgency == LevelHigh:
		return "אני רואה שזה דחוף - בוא נזרז עם ההזמנה! 🏃‍♂️"
	}
	return ""
}
