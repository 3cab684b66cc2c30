package archive

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

// Redaction order matters: card numbers are long digit runs that the phone
// pattern would otherwise split.
var redactions = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[EMAIL]"},
	{regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`), "[CARD]"},
	{regexp.MustCompile(`(?i)((?:דרכון|passport)(?:\s+(?:מספר|מס'|no\.?|number))?\s*[:#]?\s*)[A-Z]{0,2}\d{6,9}\b`), "${1}[PASSPORT]"},
	{regexp.MustCompile(`(?:\+972[-\s]?|0)(?:5\d|[2-489]|7\d)[-\s]?\d{3}[-\s]?\d{4}`), "[PHONE]"},
}

// HashPhone hashes the customer's phone in international form so 050-1234567
// and +972 50 123 4567 map to the same value. It returns "" for no phone.
func HashPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		digits = "972" + digits[1:]
	}
	h := sha256.Sum256([]byte(digits))
	return fmt.Sprintf("%x", h)
}

// Redact masks contact and travel document details in a chat line. Names,
// destinations and dates are kept for sales analysis.
func Redact(text string) string {
	for _, r := range redactions {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

// RedactTranscript masks every message of a record in place.
func RedactTranscript(record *TranscriptRecord) {
	for i := range record.Messages {
		record.Messages[i].Content = Redact(record.Messages[i].Content)
	}
}
