package session

import (
	"strings"
	"time"
)

type destinationSuggestions struct {
	match           string
	recommendations []string
	activities      []string
}

var destinationTable = []destinationSuggestions{
	{
		match: "פראג",
		recommendations: []string{
			"כרטיסי skip-the-line לטירת פראג במחיר מוזל (חיסכון 30%)",
			"סיור VIP מודרך בעיר העתיקה עם מדריך דובר עברית",
			`טיול יום בצ'סקי קרומלוב - העיר המוגנת של אונסק"ו`,
			"ארוחת גורמה במסעדות המובילות בפראג",
		},
		activities: []string{
			"🏰 סיור מיוחד בטירת פראג עם מדריך פרטי",
			"🍺 טעימת בירות צ'כיות במבשלות מקומיות",
			"🎭 מופע אופרה או קונצרט קלאסי",
			"🚗 טיול יום לצ'סקי קרומלוב העיר המוגנת",
			"🍽️ ארוחת ערב במסעדות הטובות ביותר בעיר",
		},
	},
	{
		match: "אמסטרדם",
		recommendations: []string{
			"השכרת אופניים חשמליים מעוצבים + טיול מודרך",
			"שייט בתעלות עם ארוחת גורמה",
			"סיור פרטי במוזיאון ואן גוך ללא תור",
			"טיול יום בגינות קיוקנהוף (עונתי)",
		},
		activities: []string{
			"🚲 טיול אופניים חשמליים בפארק פונדל",
			"⛵ שייט בתעלות עם ארוחת גורמה (מחיר מיוחד היום!)",
			"🎨 סיור פרטי במוזיאון ואן גוך (ללא תור!)",
			"🧀 סדנת גבינות הולנדיות אותנטית",
			"🍺 טיול בירות מקומיות עם מדריך ישראלי",
		},
	},
	{
		match: "פריז",
		recommendations: []string{
			"כרטיסי מהיר למגדל אייפל ללא תור",
			"סיור פרטי בלובר עם מדריך מומחה",
			"ארוחה במסעדה עם כוכב מישלן",
			"טיול יום בארמונות ורסאי",
		},
		activities: []string{
			"🗼 עלייה למגדל אייפל בזמן השקיעה",
			"🎨 סיור פרטי בלובר עם מדריך מומחה",
			"🥖 טיול קולינרי ברובע מונמארטר",
			"⛵ שייט רומנטי בסיין",
			"🛍️ קניות באזורי האופנה המובילים",
		},
	},
	{
		match: "רומא",
		recommendations: []string{
			"סיור מהיר בקולוסיאום ובפורום הרומי",
			"ביקור פרטי במוזיאי הוותיקן",
			"סיור קולינרי ברובע טרסטבר",
			"טיול יום בחוף הים - אוסטיה אנטיקה",
		},
	},
}

var (
	genericRecommendations = []string{
		"סיורים מודרכים עם מדריך דובר עברית",
		"כרטיסים מראש לאטרקציות מובילות",
		"המלצות מסעדות מהמובילות במקום",
		"הסעות VIP ופעילויות מיוחדות",
	}
	genericActivities = []string{
		"🎯 פעילויות מומלצות המותאמות לכם אישית",
		"🚶 טיולים מודרכים באזורים המעניינים",
		"🍽️ המלצות מסעדות לפי הטעם שלכם",
		"🎪 אירועים וחוויות מיוחדות באזור",
		"📸 מקומות צילום מומלצים ונסתרים",
	}
)

const (
	familyRecommendation  = "פעילויות מותאמות למשפחות עם ילדים"
	luxuryRecommendation  = "חוויות יוקרה ושירותים VIP בלעדיים"
	familyTravelerMinimum = 3
	maxTripDay            = 5
)

func lookup(destination string) (destinationSuggestions, bool) {
	dest := strings.ToLower(destination)
	for _, entry := range destinationTable {
		if strings.Contains(dest, entry.match) {
			return entry, true
		}
	}
	return destinationSuggestions{}, false
}

// Recommendations lists pre-trip upsells for the session's destination,
// with family and luxury extras appended when they apply.
func Recommendations(s *VacationSession) []string {
	if s == nil {
		return nil
	}
	var out []string
	if entry, ok := lookup(s.Destination); ok && len(entry.recommendations) > 0 {
		out = append(out, entry.recommendations...)
	} else {
		out = append(out, genericRecommendations...)
	}
	if s.Travelers >= familyTravelerMinimum {
		out = append(out, familyRecommendation)
	}
	if s.Budget == "high" {
		out = append(out, luxuryRecommendation)
	}
	return out
}

// ConciergeActivities lists on-trip activities for the session's destination.
func ConciergeActivities(s *VacationSession) []string {
	if s == nil {
		return nil
	}
	if entry, ok := lookup(s.Destination); ok && len(entry.activities) > 0 {
		return append([]string(nil), entry.activities...)
	}
	return append([]string(nil), genericActivities...)
}

// TripDay returns which day of the trip the traveler is on, counting from the
// session's creation and wrapping within a five day window.
func TripDay(s *VacationSession, now time.Time) int {
	if s == nil || s.CreatedAt.IsZero() || now.Before(s.CreatedAt) {
		return 1
	}
	days := int(now.Sub(s.CreatedAt).Hours() / 24)
	return days%maxTripDay + 1
}
