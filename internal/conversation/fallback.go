package conversation

import "fmt"

// TechnicalFallback is shown when nothing better can be said about the
// customer's situation.
const TechnicalFallback = "מתנצל על התקלה הטכנית! 🛠️ אנא נסה שוב או צור קשר עם הצוות שלנו ב-03-123-4567 לשירות מיידי. אנחנו כאן לעזור לך 24/7! 💪"

var scenarioFallbacks = map[string]string{
	ScenarioVacationPlanning: "אני כאן לעזור לכם לתכנן חופשה בלתי נשכחת! 🏖️ ספרו לי על החלום שלכם ואני אהפוך אותו למציאות.",
	ScenarioUpcomingTrip:     "היי! 🌟 ראיתי את הנסיעה הקרובה שלכם - יש לי כמה הצעות מיוחדות שחשבתי שיעניינו אתכם!",
	ScenarioConcierge:        "בוקר טוב! ☀️ איך החופשה? יש לי כמה פעילויות מדהימות להציע לכם להיום!",
	ScenarioBusinessTravel:   "אני כאן לעזור לכם לתכנן את הנסיעה העסקית הבאה 💼 ספרו לי לאן ומתי, ואחזור אליכם עם פתרון מותאם.",
}

// FallbackReply is the canned reply used when the language model cannot be
// reached. It depends only on the conversation state.
func FallbackReply(c Context) string {
	if c.Customer.Urgency == LevelHigh || c.Scenario == ScenarioEmergency {
		return TechnicalFallback
	}

	info := c.Customer
	switch c.Stage {
	case StageInformationGathering:
		switch {
		case info.Destination == "":
			return "תודה על הפניה! 🌍 לאיזה יעד אתם מתכננים לטוס? אני כאן לעזור לכם לתכנן את הנסיעה המושלמת!"
		case info.Dates == "":
			return fmt.Sprintf("נהדר! %s זה יעד מדהים! 📅 מתי אתם מתכננים לצאת לנסיעה?", info.Destination)
		case info.Travelers == 0:
			return "מעולה! 👥 כמה אנשים יהיו בנסיעה? זה יעזור לי למצוא לכם את האפשרויות הטובות ביותר."
		}
	case StageRecommendations:
		return "בהתבסס על מה שסיפרתם לי, יש לי כמה הצעות מעולות! 💎 האם תרצו לשמוע על האפשרויות?"
	case StageUpselling:
		return "אני רוצה לוודא שתהנו מהנסיעה המושלמת! 🌟 יש כמה שירותים נוספים שיכולים לשדרג לכם את החוויה."
	case StageClosing:
		return "מעולה! 📞 בואו נסכם את הפרטים. איך הכי נוח לכם שאצור איתכם קשר להמשך הטיפול?"
	}

	if text, ok := scenarioFallbacks[c.Scenario]; ok {
		return text
	}
	return "שלום! 👋 אני עוזר הנסיעות החכם של " + agencyName + ". איך אוכל לעזור לכם היום?"
}
