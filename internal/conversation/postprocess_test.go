package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHebrew(t *testing.T) {
	assert.True(t, IsHebrew("שלום לכם, מה שלומכם?"))
	assert.True(t, IsHebrew("טיסה ב-12:30 לרומא"))
	assert.False(t, IsHebrew("Hello world"))
	assert.False(t, IsHebrew("שלום hello world"))
	assert.False(t, IsHebrew("   "))
}

func TestFormatFixesPunctuationSpacing(t *testing.T) {
	out := NewReplyFormatter(false).Format("שלום ,מה נשמע ?הכל טוב", StageRecommendations, ScenarioVacationPlanning)
	assert.Equal(t, "שלום, מה נשמע? הכל טוב", out)
}

func TestFormatAppliesCorrections(t *testing.T) {
	out := NewReplyFormatter(false).Format("אתה רוצה לשמוע עוד?", StageRecommendations, ScenarioVacationPlanning)
	assert.Equal(t, "אתם רוצים לשמוע עוד?", out)
}

func TestFormatAddsGreetingToLongReplies(t *testing.T) {
	long := "יש לנו מגוון רחב של אפשרויות לינה באזור המרכז, כולן קרובות לתחבורה ציבורית"
	out := NewReplyFormatter(false).Format(long, StageRecommendations, ScenarioVacationPlanning)
	assert.True(t, strings.HasPrefix(out, "בטח! "), out)

	priced := "ההצעה שלנו כוללת לינה באזור המרכז לכל המשפחה, כולל ארוחות בוקר וימי ספא"
	out = NewReplyFormatter(false).Format(priced, StageRecommendations, ScenarioVacationPlanning)
	assert.True(t, strings.HasPrefix(out, "מעולה, "), out)

	thanks := "תודה על הפנייה, יש לנו מגוון רחב של אפשרויות לינה באזור המרכז לכל המשפחה"
	out = NewReplyFormatter(false).Format(thanks, StageRecommendations, ScenarioVacationPlanning)
	assert.True(t, strings.HasPrefix(out, "בטח! תודה"), out)

	greeted := "שלום! יש לנו מגוון רחב של אפשרויות לינה באזור המרכז, כולן קרובות לתחבורה"
	out = NewReplyFormatter(false).Format(greeted, StageRecommendations, ScenarioVacationPlanning)
	assert.True(t, strings.HasPrefix(out, "שלום!"), out)
}

func TestFormatBusinessLanguage(t *testing.T) {
	f := NewReplyFormatter(true)

	out := f.Format("המחיר הוא 900 שקל לאדם!", StageRecommendations, ScenarioVacationPlanning)
	assert.Contains(t, out, "מחיר מיוחד של "+agencyName)

	out = f.Format("כדאי להוסיף ביטוח נסיעות!", StageRecommendations, ScenarioVacationPlanning)
	assert.Contains(t, out, "ביטוח נסיעות (חשוב מאוד!)")

	out = f.Format("המחירים השתנו!", StageRecommendations, ScenarioVacationPlanning)
	assert.NotContains(t, out, agencyName)

	out = f.Format("המחיר הוא 900 שקל לאדם!", StageRecommendations, ScenarioEmergency)
	assert.NotContains(t, out, agencyName)
}

func TestFormatAddsEmojiOncePerRule(t *testing.T) {
	out := NewReplyFormatter(false).Format("הטיסה יוצאת בעוד 3 שעות, והטיסה חזרה מחר!", StageRecommendations, ScenarioVacationPlanning)
	assert.Equal(t, 1, strings.Count(out, "✈️"))
	assert.Contains(t, out, "הטיסה ✈️")
	assert.Contains(t, out, "3 שעות ⏰")

	already := NewReplyFormatter(false).Format("חופשה 🏖️ נעימה!", StageRecommendations, ScenarioVacationPlanning)
	assert.Equal(t, 1, strings.Count(already, "🏖️"))
}

func TestFormatCallToActionPerStage(t *testing.T) {
	f := NewReplyFormatter(false)
	for stage, question := range stageCallToAction {
		out := f.Format("זה נשמע טוב", stage, ScenarioVacationPlanning)
		assert.Equal(t, "זה נשמע טוב "+question, out, stage)
	}

	out := f.Format("רוצים להזמין עכשיו", StageUpselling, ScenarioVacationPlanning)
	assert.Equal(t, "רוצים להזמין עכשיו", out)
}

func TestFormatGreetingSatisfiesCallToAction(t *testing.T) {
	long := "יש לנו מגוון רחב של אפשרויות לינה באזור המרכז, כולן קרובות לתחבורה ציבורית"
	out := NewReplyFormatter(false).Format(long, StageRecommendations, ScenarioVacationPlanning)
	assert.Equal(t, "בטח! "+long, out)
	assert.NotContains(t, out, stageCallToAction[StageRecommendations])

	priced := "ההצעה שלנו כוללת לינה באזור המרכז לכל המשפחה, כולל ארוחות בוקר וימי ספא"
	out = NewReplyFormatter(false).Format(priced, StageRecommendations, ScenarioVacationPlanning)
	assert.True(t, strings.HasSuffix(out, stageCallToAction[StageRecommendations]), out)
}
