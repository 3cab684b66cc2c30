package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/travel-ai-concierge/internal/session"
)

var stageInstructions = map[Stage]string{
	StageInformationGathering: `אתה בשלב איסוף מידע בסיסי. התמקד בלקבל:
- יעד הנסיעה
- תאריכים מועדפים
- מספר נוסעים
- תקציב משוער
- מטרת הנסיעה

שאל שאלות ממוקדות ונעימות. אל תציע עדיין שירותים ספציפיים.`,
	StageRecommendations: `אתה בשלב המלצות מקצועיות. הצג:
- חבילות נסיעה מותאמות לצרכי הלקוח
- מחירים משוערים (תמיד ציין שהמחיר הסופי יקבע לאחר בדיקה מעמיקה)
- יתרונות של כל אפשרות

היה מקצועי אך חם, והדגש את הערך המוסף של ` + agencyName + `.`,
	StageUpselling: `אתה בשלב Upselling. הצע בעדינות:
- שדרוגי מחלקת טיסה
- מלונות יוקרה במחירי מוקדם
- השכרת רכב עם ביטוח
- ביטוח נסיעות (הדגש חשיבות!)
- כרטיסי אטרקציות מראש

הסבר את הערך של כל שירות נוסף. אל תהיה דחוף - הצג אופציות והסבר יתרונות.`,
	StageClosing: `אתה בשלב סגירת השיחה. התמקד ב:
- איסוף פרטי קשר (טלפון ואימייל)
- קביעת פגישה או שיחת ייעוץ
- הבטחה למעקב אישי
- יצירת תחושת דחיפות נעימה
- הדגשת שהמחיר והזמינות ייבדקו מחדש

זה הזמן להפוך את השיחה למכירה או לפחות לליד איכותי.`,
}

var objectiveLabels = []struct {
	label string
	done  func(Objectives) bool
}{
	{"מידע נאסף", func(o Objectives) bool { return o.InfoGathered }},
	{"המלצות ניתנו", func(o Objectives) bool { return o.RecommendationsMade }},
	{"שירותים נוספים הוצגו", func(o Objectives) bool { return o.UpsellPresented }},
	{"פרטי קשר נאספו", func(o Objectives) bool { return o.ContactCollected }},
	{"מעקב נקבע", func(o Objectives) bool { return o.FollowupScheduled }},
}

const promptClosingNote = "חשוב: תמיד עונה בעברית טבעית ורהוטה. השתמש במידע שאספת על הלקוח להתאמה אישית של התגובה."

// PromptBuilder renders the system prompt for a turn.
type PromptBuilder struct {
	now func() time.Time
}

// NewPromptBuilder creates a builder. A nil clock uses time.Now.
func NewPromptBuilder(now func() time.Time) *PromptBuilder {
	if now == nil {
		now = time.Now
	}
	return &PromptBuilder{now: now}
}

// Build returns the system prompt for the conversation, or "" when the
// scenario is unknown.
func (b *PromptBuilder) Build(c Context, sess *session.VacationSession) string {
	scenario, ok := LookupScenario(c.Scenario)
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(scenario.SystemPrompt)
	sb.WriteString("\n\n")
	if block := b.sessionBlock(c.Scenario, sess); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}
	sb.WriteString("הקשר הנוכחי של השיחה:\n")
	sb.WriteString(contextSummary(c))
	sb.WriteString("\n\nהוראות לשלב הנוכחי:\n")
	sb.WriteString(stageInstructions[c.Stage])
	sb.WriteString("\n\n")
	sb.WriteString(promptClosingNote)
	return sb.String()
}

func contextSummary(c Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "מספר הודעות בשיחה: %d\nסיווג הליד: %s", c.MessageCount, c.Qualification)

	info := c.Customer
	if info.Destination != "" {
		fmt.Fprintf(&sb, "\nיעד: %s", info.Destination)
	}
	if info.Dates != "" {
		fmt.Fprintf(&sb, "\nתאריכים: %s", info.Dates)
	}
	if info.Travelers > 0 {
		fmt.Fprintf(&sb, "\nמספר נוסעים: %d", info.Travelers)
	}
	if info.Budget != "" {
		fmt.Fprintf(&sb, "\nתקציב משוער: %s", info.Budget)
	}
	if info.Purpose != "" {
		fmt.Fprintf(&sb, "\nמטרת הנסיעה: %s", info.Purpose)
	}
	if info.CompanySize != "" {
		fmt.Fprintf(&sb, "\nגודל חברה: %s", info.CompanySize)
	}
	if info.Urgency != "" {
		fmt.Fprintf(&sb, "\nדחיפות: %s", info.Urgency)
	}
	if info.Contact.Name != "" {
		fmt.Fprintf(&sb, "\nשם: %s", info.Contact.Name)
	}
	if info.Contact.Phone != "" {
		fmt.Fprintf(&sb, "\nטלפון: %s", info.Contact.Phone)
	}
	if info.Contact.Email != "" {
		fmt.Fprintf(&sb, "\nאימייל: %s", info.Contact.Email)
	}

	sb.WriteString("\n\nמטרות עסקיות שהושגו:")
	for _, obj := range objectiveLabels {
		mark := "❌"
		if obj.done(c.Objectives) {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "\n- %s: %s", obj.label, mark)
	}
	return sb.String()
}

func (b *PromptBuilder) sessionBlock(scenario string, sess *session.VacationSession) string {
	if !sess.Valid() || scenario == ScenarioVacationPlanning {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("=== מידע על הלקוח מהמערכת ===\n")
	switch scenario {
	case ScenarioConcierge:
		total := 4
		if sess.Travelers >= 3 {
			total = 5
		}
		day := min(session.TripDay(sess, b.now()), total)
		fmt.Fprintf(&sb, "שם הלקוח: %s\nיעד נוכחי: %s (ביום %d מתוך %d ימים)\nמספר נוסעים: %d\n\n",
			sess.Name, sess.Destination, day, total, sess.Travelers)
		sb.WriteString("פעילויות זמינות היום:\n")
		writeBullets(&sb, session.ConciergeActivities(sess))
		sb.WriteString("\n\nהוראה חשובה: התנהג כאילו אתה עוקב אחר הלקוח בזמן אמת ויודע איפה הוא נמצא ומה הוא עשה אתמול!")
	default:
		fmt.Fprintf(&sb, "שם הלקוח: %s\nיעד הנסיעה: %s\n", sess.Name, sess.Destination)
		if sess.Dates != "" {
			fmt.Fprintf(&sb, "תאריכי הנסיעה: %s\n", sess.Dates)
		}
		if sess.Travelers > 0 {
			fmt.Fprintf(&sb, "מספר נוסעים: %d\n", sess.Travelers)
		}
		if sess.Budget != "" {
			fmt.Fprintf(&sb, "תקציב: %s\n", sess.Budget)
		}
		if len(sess.Interests) > 0 {
			fmt.Fprintf(&sb, "תחומי עניין: %s\n", strings.Join(sess.Interests, ", "))
		}
		sb.WriteString("\nהמלצות זמינות:\n")
		writeBullets(&sb, session.Recommendations(sess))
		sb.WriteString("\n\nהוראה חשובה: התנהג כאילו אתה יודע על הנסיעה מהמערכת שלך ואתה יוזם את השיחה בהתלהבות!")
	}
	return sb.String()
}

func writeBullets(sb *strings.Builder, items []string) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• ")
		sb.WriteString(item)
	}
}
