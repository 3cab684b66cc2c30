package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

// ---------- package-level compiled regexes ----------

var (
	travelersRE = regexp.MustCompile(`(\d+)\s*(?:אנשים|נוסעים|בני משפחה|במשפחה)`)
	phoneRE     = regexp.MustCompile(`05\d-?\d{7}|0\d{1,2}-?\d{7}`)
	emailRE     = regexp.MustCompile(`\S+@\S+\.\S+`)
	nameRE      = regexp.MustCompile(`(?:השם שלי|קוראים לי|שמי)\s+([\p{Hebrew}A-Za-z'-]+)`)
	employeesRE = regexp.MustCompile(`(\d+)\s*עובדים`)

	slashDateRE    = regexp.MustCompile(`\d{1,2}/\d{1,2}(?:/\d{2,4})?`)
	dottedDateRE   = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{2,4}`)
	relativeDateRE = regexp.MustCompile(`בשבוע הבא|בחודש הבא|חודש הבא|בקיץ|בחורף|באביב|בסתיו|בפסח|בחנוכה|בסוכות`)
	monthDateRE    = regexp.MustCompile(`(?:^|[^\p{Hebrew}])((?:[בל]?(?:סוף|תחילת|אמצע)\s+)?[בל]?(?:ינואר|פברואר|מרץ|אפריל|מאי|יוני|יולי|אוגוסט|ספטמבר|אוקטובר|נובמבר|דצמבר))(?:[^\p{Hebrew}]|$)`)
)

// destinations is the gazetteer of cities and countries the agency sells.
var destinations = []string{
	"לונדון", "פריז", "ניו יורק", "תל אביב", "אילת", "רומא", "ברלין", "אמסטרדם",
	"פראג", "וינה", "בודפשט", "מדריד", "ברצלונה", "מילאנו", "ונציה", "פירנצה",
	"יוון", "סנטוריני", "מיקונוס", "קריט", "איטליה", "ספרד", "צרפת", "גרמניה",
	"הולנד", "אוסטריה", "הונגריה", "צ'כיה", "תאילנד", "בנגקוק", "פוקט",
}

var (
	lowBudgetWords  = []string{"זול", "חסכוני"}
	highBudgetWords = []string{"יוקרה", "מפנק", "ללא מגבלה"}
	urgentWords     = []string{"דחוף", "מיידי", "חירום"}
	soonWords       = []string{"בהקדם", "בקרוב", "השבוע"}
)

var purposeWords = []struct {
	pattern string
	purpose string
}{
	{"ירח דבש", "honeymoon"},
	{"נסיעה עסקית", "business"},
	{"כנס", "business"},
	{"עסקים", "business"},
	{"משפחה", "family"},
	{"ילדים", "family"},
	{"רומנטי", "romantic"},
}

var companySizeWords = []struct {
	pattern string
	size    string
}{
	{"חברה גדולה", "large"},
	{"תאגיד", "large"},
	{"חברה בינונית", "medium"},
	{"חברה קטנה", "small"},
	{"סטארטאפ", "small"},
}

// Extract folds the facts found in one user utterance into c and returns the
// updated copy. Fields are only replaced by a new non-empty match, so running
// it twice with the same utterance gives the same result as running it once.
func Extract(c Context, message string) Context {
	out := c.clone()
	info := &out.Customer
	lower := strings.ToLower(message)

	if dest := matchDestination(lower); dest != "" {
		info.Destination = dest
	}
	if m := travelersRE.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			info.Travelers = n
		}
	}
	if dates := matchDates(message); dates != "" {
		info.Dates = dates
	}

	switch {
	case containsAny(lower, lowBudgetWords):
		info.Budget = LevelLow
	case containsAny(lower, highBudgetWords):
		info.Budget = LevelHigh
	}

	switch {
	case containsAny(lower, urgentWords):
		info.Urgency = LevelHigh
		out.Qualification = QualificationEmergency
	case containsAny(lower, soonWords) && info.Urgency != LevelHigh:
		info.Urgency = LevelMedium
	}

	for _, p := range purposeWords {
		if strings.Contains(lower, p.pattern) {
			info.Purpose = p.purpose
			break
		}
	}
	if size := matchCompanySize(lower); size != "" {
		info.CompanySize = size
	}

	if phone := phoneRE.FindString(message); phone != "" {
		info.Contact.Phone = phone
		out.Objectives.ContactCollected = true
	}
	if email := emailRE.FindString(message); email != "" {
		info.Contact.Email = email
		out.Objectives.ContactCollected = true
	}
	if m := nameRE.FindStringSubmatch(message); m != nil {
		info.Contact.Name = m[1]
	}

	if info.Destination != "" && info.Travelers > 0 {
		out.Objectives.InfoGathered = true
	}
	return out
}

// matchDestination returns the gazetteer entry that appears last in text.
func matchDestination(text string) string {
	best, bestAt := "", -1
	for _, dest := range destinations {
		at := strings.LastIndex(text, dest)
		if at < 0 {
			continue
		}
		if at > bestAt || (at == bestAt && len(dest) > len(best)) {
			best, bestAt = dest, at
		}
	}
	return best
}

// matchDates returns the earliest date-like phrase in text.
func matchDates(text string) string {
	found, foundAt := "", -1
	consider := func(at int, value string) {
		if at >= 0 && (foundAt < 0 || at < foundAt) {
			found, foundAt = strings.TrimSpace(value), at
		}
	}
	for _, re := range []*regexp.Regexp{slashDateRE, dottedDateRE, relativeDateRE} {
		if loc := re.FindStringIndex(text); loc != nil {
			consider(loc[0], text[loc[0]:loc[1]])
		}
	}
	if loc := monthDateRE.FindStringSubmatchIndex(text); loc != nil {
		consider(loc[2], text[loc[2]:loc[3]])
	}
	return found
}

func matchCompanySize(text string) string {
	if m := employeesRE.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch {
		case n >= 250:
			return "large"
		case n >= 50:
			return "medium"
		case n > 0:
			return "small"
		}
	}
	for _, w := range companySizeWords {
		if strings.Contains(text, w.pattern) {
			return w.size
		}
	}
	return ""
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
