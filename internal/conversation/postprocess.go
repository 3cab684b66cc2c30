package conversation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	hebrewRatioThreshold = 0.7
	greetingMinLength    = 50
)

var (
	punctBeforeHebrewRE = regexp.MustCompile(`([.!?,:;])(\p{Hebrew})`)
	spaceBeforePunctRE  = regexp.MustCompile(`[ \t]+([.!?,:;])`)
	greetingRE          = regexp.MustCompile(`^(שלום|היי|אהלן|בוקר טוב|ערב טוב|מה שלומך|נהדר|מעולה|בטח)`)
	callToActionRE      = regexp.MustCompile(`\?|!|לקבוע|להזמין|לבדוק|ליצור קשר`)
)

var corrections = []struct{ from, to string }{
	{"אני יכול לעזור לך", "אני יכול לעזור לכם"},
	{"האם אתה מעוניין", "האם אתם מעוניינים"},
	{"את צריכה", "אתם צריכים"},
	{"אתה רוצה", "אתם רוצים"},
	{"המחיר הוא", "המחיר המשוער הוא"},
	{"זה עולה", "זה עולה בערך"},
	{"התקציב שלך", "התקציב שלכם"},
}

type emojiRule struct {
	pattern *regexp.Regexp
	emoji   string
}

// Keyword rules match the whole Hebrew word around the keyword so prefixed
// forms such as הביטוח keep their spelling.
var emojiRules = []emojiRule{
	{regexp.MustCompile(`\d+\s*(?:שעות|שעה)`), "⏰"},
	{regexp.MustCompile(`\d+\s*(?:ימים|יום)`), "📅"},
	{regexp.MustCompile(`\p{Hebrew}*ביטוח\p{Hebrew}*`), "🛡️"},
	{regexp.MustCompile(`\p{Hebrew}*(?:טיסות|טיסה)\p{Hebrew}*`), "✈️"},
	{regexp.MustCompile(`\p{Hebrew}*(?:מלונות|מלון)\p{Hebrew}*`), "🏨"},
	{regexp.MustCompile(`\p{Hebrew}*חופשה\p{Hebrew}*`), "🏖️"},
	{regexp.MustCompile(`\p{Hebrew}*(?:עסקים|עסקי)\p{Hebrew}*`), "💼"},
	{regexp.MustCompile(`\p{Hebrew}*חירום\p{Hebrew}*`), "🆘"},
}

var stageCallToAction = map[Stage]string{
	StageInformationGathering: "איזה פרטים נוספים אוכל לקבל?",
	StageRecommendations:      "מה אתם אומרים?",
	StageUpselling:            "מעוניינים לשמוע על זה?",
	StageClosing:              "מתי נוכל לקבוע שיחה?",
}

// IsHebrew reports whether Hebrew letters make up more than 70% of the
// non-space, non-digit characters.
func IsHebrew(text string) bool {
	var hebrew, total int
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsDigit(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Hebrew, r) {
			hebrew++
		}
	}
	if total == 0 {
		return false
	}
	return float64(hebrew)/float64(total) > hebrewRatioThreshold
}

// ReplyFormatter polishes Hebrew LLM replies before they reach the customer.
type ReplyFormatter struct {
	valuePropositions bool
}

// NewReplyFormatter creates a formatter. valuePropositions enables the
// agency's promotional phrasing.
func NewReplyFormatter(valuePropositions bool) *ReplyFormatter {
	return &ReplyFormatter{valuePropositions: valuePropositions}
}

var defaultFormatter = NewReplyFormatter(true)

// FormatHebrewReply formats text with value propositions enabled.
func FormatHebrewReply(text string, stage Stage, scenario string) string {
	return defaultFormatter.Format(text, stage, scenario)
}

// Format returns text unchanged unless it is predominantly Hebrew.
func (f *ReplyFormatter) Format(text string, stage Stage, scenario string) string {
	if !IsHebrew(text) {
		return text
	}

	body := fixPunctuationSpacing(strings.TrimSpace(text))
	body = greetingFor(body) + body
	body = applyCorrections(body)
	if f.valuePropositions && scenario != ScenarioEmergency {
		body = enhanceBusinessLanguage(body)
	}
	body = addEmojis(body)
	if !callToActionRE.MatchString(body) {
		if question, ok := stageCallToAction[stage]; ok {
			body += " " + question
		}
	}
	return body
}

func fixPunctuationSpacing(text string) string {
	text = spaceBeforePunctRE.ReplaceAllString(text, "$1")
	return punctBeforeHebrewRE.ReplaceAllString(text, "$1 $2")
}

func greetingFor(text string) string {
	if greetingRE.MatchString(text) || utf8.RuneCountInString(text) <= greetingMinLength {
		return ""
	}
	switch {
	case strings.Contains(text, "ביטוח") || strings.Contains(text, "שדרוג"):
		return "נהדר! "
	case strings.Contains(text, "מחיר") || strings.Contains(text, "הצעה"):
		return "מעולה, "
	default:
		return "בטח! "
	}
}

func applyCorrections(text string) string {
	for _, c := range corrections {
		text = strings.ReplaceAll(text, c.from, c.to)
	}
	return text
}

func enhanceBusinessLanguage(text string) string {
	if strings.Contains(text, "ביטוח") && !strings.Contains(text, "חשוב") {
		text = replaceFirstWord(text, "ביטוח נסיעות", "ביטוח נסיעות (חשוב מאוד!)")
	}
	if strings.Contains(text, "מחיר") && !strings.Contains(text, agencyName) {
		text = replaceFirstWord(text, "מחיר", "מחיר מיוחד של "+agencyName)
	}
	if strings.Contains(text, "הצעה") && !strings.Contains(text, "מוגבל") {
		text = replaceFirstWord(text, "הצעה", "הצעה מוגבלת בזמן")
	}
	if strings.Contains(text, "פרטים") && !strings.Contains(text, "נוכל") {
		text += " מתי נוכל לקבוע שיחת ייעוץ קצרה?"
	}
	return text
}

// replaceFirstWord replaces the first occurrence of word that is not
// followed by another Hebrew letter, so מחירים is left alone.
func replaceFirstWord(text, word, replacement string) string {
	offset := 0
	for {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return text
		}
		start := offset + idx
		end := start + len(word)
		next, _ := utf8.DecodeRuneInString(text[end:])
		if end == len(text) || !unicode.Is(unicode.Hebrew, next) {
			return text[:start] + replacement + text[end:]
		}
		offset = end
	}
}

func addEmojis(text string) string {
	for _, rule := range emojiRules {
		if strings.Contains(text, rule.emoji) {
			continue
		}
		loc := rule.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		text = text[:loc[1]] + " " + rule.emoji + text[loc[1]:]
	}
	return text
}
