package conversation

import (
	"fmt"
	"regexp"
)

const (
	hotThreshold  = 70
	warmThreshold = 40
	maxScore      = 100
	// warm leads at or above this score are still worth a sales call
	warmEscalationScore = 50
)

var specificDateRE = regexp.MustCompile(`\d{1,2}/\d{1,2}`)

// LeadScore is the derived qualification of a conversation. It is recomputed
// from the Context on every user turn and never treated as a source of truth.
type LeadScore struct {
	Score         int           `json:"score"`
	Qualification Qualification `json:"qualification"`
	Reasons       []string      `json:"reasons"`
	NextActions   []string      `json:"next_actions"`
}

var emergencyScore = LeadScore{
	Score:         maxScore,
	Qualification: QualificationEmergency,
	Reasons:       []string{"מצב חירום דורש טיפול מיידי"},
	NextActions: []string{
		"פתרון מיידי לבעיה",
		"איסוף פרטי קשר חירום",
		"מעקב תוך 30 דקות",
	},
}

var tierActions = map[Qualification][]string{
	QualificationHot: {
		"הצגת הצעה מפורטת מיד",
		"איסוף פרטי קשר לחתימה",
		"יצירת דחיפות עדינה",
		"הצעת שירותים פרימיום",
	},
	QualificationWarm: {
		"המשך איסוף מידע",
		"בניית אמון ויחסים",
		"הצגת המלצות ראשונות",
		"בדיקת תקציב מעמיק יותר",
	},
	QualificationCold: {
		"חיזוק עניין בנושא",
		"איסוף מידע בסיסי נוסף",
		"הצגת ערך ויתרונות",
		"בניית מודעות לבעיות",
	},
}

// scoreCategory adds points for one weighted signal group.
type scoreCategory func(c Context, reasons *[]string) int

var scoreCategories = []scoreCategory{
	scoreBasicInfo,
	scoreEngagement,
	scoreBudgetAndTimeline,
	scoreBusinessValue,
	scoreAuthority,
}

// ScoreLead computes the 0-100 lead score for c. It has no side effects.
func ScoreLead(c Context) LeadScore {
	if isEmergency(c) {
		return LeadScore{
			Score:         emergencyScore.Score,
			Qualification: emergencyScore.Qualification,
			Reasons:       append([]string(nil), emergencyScore.Reasons...),
			NextActions:   append([]string(nil), emergencyScore.NextActions...),
		}
	}

	reasons := []string{}
	score := 0
	for _, category := range scoreCategories {
		score += category(c, &reasons)
	}
	score = max(0, min(score, maxScore))

	qualification := qualificationFor(score)
	return LeadScore{
		Score:         score,
		Qualification: qualification,
		Reasons:       reasons,
		NextActions:   nextActions(c, qualification),
	}
}

func isEmergency(c Context) bool {
	return c.Customer.Urgency == LevelHigh || c.Scenario == ScenarioEmergency
}

func qualificationFor(score int) Qualification {
	switch {
	case score >= hotThreshold:
		return QualificationHot
	case score >= warmThreshold:
		return QualificationWarm
	default:
		return QualificationCold
	}
}

func scoreBasicInfo(c Context, reasons *[]string) int {
	info := c.Customer
	points := 0
	if info.Destination != "" {
		points += 15
		*reasons = append(*reasons, "יעד נסיעה מוגדר")
	}
	if info.Dates != "" {
		points += 15
		*reasons = append(*reasons, "תאריכי נסיעה ברורים")
	}
	if info.Travelers > 0 {
		points += 10
		*reasons = append(*reasons, "מספר נוסעים ידוע")
	}
	if info.Budget != "" {
		points += 10
		if info.Budget == LevelHigh {
			points += 10
			*reasons = append(*reasons, "תקציב גבוה - פוטנציאל רווח גבוה")
		} else {
			*reasons = append(*reasons, "תקציב מוגדר")
		}
	}
	return points
}

func scoreEngagement(c Context, reasons *[]string) int {
	points := 0
	if c.MessageCount >= 5 {
		points += 10
		*reasons = append(*reasons, "מעורבות גבוהה בשיחה")
	}
	if c.MessageCount >= 8 {
		points += 5
		*reasons = append(*reasons, "שיחה מעמיקה ומתמשכת")
	}
	achieved := c.Objectives.Completed()
	points += achieved * 5
	if achieved >= 3 {
		*reasons = append(*reasons, "מעקב טוב אחר יעדים עסקיים")
	}
	return points
}

func scoreBudgetAndTimeline(c Context, reasons *[]string) int {
	info := c.Customer
	points := 0
	if info.Budget == LevelHigh {
		points += 15
		*reasons = append(*reasons, "תקציב גבוה מעיד על כוח קנייה")
	}
	switch info.Urgency {
	case LevelMedium:
		points += 5
		*reasons = append(*reasons, "דחיפות בינונית")
	case LevelHigh:
		points += 15
		*reasons = append(*reasons, "דחיפות גבוהה - מוכן לקנות מהר")
	}
	if specificDateRE.MatchString(info.Dates) {
		points += 10
		*reasons = append(*reasons, "תאריכים ספציפיים - מחויבות גבוהה")
	}
	return points
}

func scoreBusinessValue(c Context, reasons *[]string) int {
	points := 0
	switch c.Scenario {
	case ScenarioBusinessTravel:
		points += 5
		*reasons = append(*reasons, "נסיעות עסקיות - ערך לקוח גבוה")
		switch c.Customer.CompanySize {
		case "large":
			points += 15
			*reasons = append(*reasons, "חברה גדולה - פוטנציאל לחשבון עסקי")
		case "medium":
			points += 10
			*reasons = append(*reasons, "חברה בינונית - פוטנציאל עסקי טוב")
		}
	case ScenarioVacationPlanning:
		if c.Customer.Travelers >= 4 {
			points += 10
			*reasons = append(*reasons, "נסיעה משפחתית גדולה - ערך גבוה")
		}
	}
	return points
}

func scoreAuthority(c Context, reasons *[]string) int {
	contact := c.Customer.Contact
	points := 0
	if contact.Phone != "" {
		points += 10
		*reasons = append(*reasons, "מספר טלפון ניתן - רצינות גבוהה")
	}
	if contact.Email != "" {
		points += 8
		*reasons = append(*reasons, "כתובת אימייל ניתנה")
	}
	if contact.Name != "" {
		points += 5
		*reasons = append(*reasons, "שם מלא ניתן - אמינות")
	}
	if len(c.ProposedServices) > 0 {
		points += 5
		*reasons = append(*reasons, "עניין בשירותים נוספים")
	}
	return points
}

func nextActions(c Context, qualification Qualification) []string {
	actions := append([]string(nil), tierActions[qualification]...)
	if c.Scenario == ScenarioBusinessTravel && qualification != QualificationCold {
		actions = append(actions, "הפניה למחלקת עסקים", "הצעת חשבון עסקי")
	}
	if !c.Objectives.ContactCollected && qualification != QualificationCold {
		actions = append(actions, "איסוף פרטי קשר בעדיפות")
	}
	return actions
}

// ShouldEscalateToSales reports whether the lead warrants a human follow-up.
func ShouldEscalateToSales(score LeadScore) bool {
	switch score.Qualification {
	case QualificationHot, QualificationEmergency:
		return true
	case QualificationWarm:
		return score.Score >= warmEscalationScore
	}
	return false
}

// ResponseTone is the register the assistant should take with this lead.
func ResponseTone(score LeadScore) string {
	switch score.Qualification {
	case QualificationHot:
		return "professional"
	case QualificationWarm:
		return "friendly"
	case QualificationEmergency:
		return "urgent"
	default:
		return "casual"
	}
}

// QualificationMessage renders a short Hebrew label for dashboards.
func QualificationMessage(score LeadScore) string {
	switch score.Qualification {
	case QualificationHot:
		return fmt.Sprintf("🔥 ליד חם (%d נקודות) - מוכן למכירה!", score.Score)
	case QualificationWarm:
		return fmt.Sprintf("🌡️ ליד פושר (%d נקודות) - צריך טיפוח", score.Score)
	case QualificationCold:
		return fmt.Sprintf("❄️ ליד קר (%d נקודות) - צריך חימום", score.Score)
	case QualificationEmergency:
		return fmt.Sprintf("🆘 חירום (%d נקודות) - טיפול מיידי!", score.Score)
	default:
		return fmt.Sprintf("📊 ליד (%d נקודות)", score.Score)
	}
}
