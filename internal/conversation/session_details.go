package conversation

import (
	"slices"
	"strings"

	"github.com/wolfman30/travel-ai-concierge/internal/session"
)

var interestWords = []string{
	"מוזיאונים", "אמנות", "תרבות", "היסטוריה", "אדריכלות", "אוכל", "מסעדות",
	"חיי לילה", "בידור", "קניות", "טבע", "נוף", "הליכה", "ספורט", "פעילויות",
	"משפחתי", "ילדים", "רומנטי", "זוגי",
}

var budgetMentionWords = []string{"תקציב", "מחיר", "שקל"}

// SessionDetails collects the trip facts worth keeping across chats from the
// customer's messages, oldest first.
func SessionDetails(userMessages []string) session.Details {
	c := NewContext("")
	var d session.Details
	for _, msg := range userMessages {
		c = Extract(c, msg)
		lower := strings.ToLower(msg)
		if containsAny(lower, budgetMentionWords) {
			switch {
			case containsAny(lower, lowBudgetWords):
				d.Budget = string(LevelLow)
			case containsAny(lower, highBudgetWords):
				d.Budget = string(LevelHigh)
			default:
				d.Budget = string(LevelMedium)
			}
		}
		for _, interest := range interestWords {
			if strings.Contains(lower, interest) && !slices.Contains(d.Interests, interest) {
				d.Interests = append(d.Interests, interest)
			}
		}
	}

	info := c.Customer
	d.Name = info.Contact.Name
	d.Destination = info.Destination
	d.Dates = info.Dates
	d.Travelers = info.Travelers
	d.Purpose = info.Purpose
	return d
}
