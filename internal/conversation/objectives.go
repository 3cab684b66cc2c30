package conversation

import "strings"

var (
	recommendationWords = []string{"ממליץ", "הצעה", "מחיר"}
	upsellWords         = []string{"ביטוח", "שדרוג", "יוקרה"}
	followupWords       = []string{"פגישה", "שיחה", "מעקב"}
)

var serviceKeywords = []struct {
	service  string
	keywords []string
}{
	{ServiceInsurance, []string{"ביטוח"}},
	{ServiceBusinessClass, []string{"מחלקת עסקים", "מחלקה עסקית", "business class"}},
	{ServiceCarRental, []string{"השכרת רכב", "רכב שכור"}},
	{ServiceAttractions, []string{"אטרקציות", "כרטיסי כניסה"}},
	{ServiceVIP, []string{"vip"}},
}

// ObjectivesFromReply reads the assistant's reply for signs that a business
// objective was met.
func ObjectivesFromReply(reply string) Objectives {
	text := strings.ToLower(reply)
	return Objectives{
		RecommendationsMade: containsAny(text, recommendationWords),
		UpsellPresented:     containsAny(text, upsellWords),
		FollowupScheduled:   containsAny(text, followupWords),
	}
}

// ServicesInReply lists the upsell services the reply mentions.
func ServicesInReply(reply string) []string {
	text := strings.ToLower(reply)
	var out []string
	for _, s := range serviceKeywords {
		if containsAny(text, s.keywords) {
			out = append(out, s.service)
		}
	}
	return out
}

// MarkFromReply returns a copy of c with objectives and proposed services
// updated from the reply. Applying it again with the same reply is a no-op.
func MarkFromReply(c Context, reply string) Context {
	return c.WithObjectives(ObjectivesFromReply(reply)).WithProposed(ServicesInReply(reply)...)
}
