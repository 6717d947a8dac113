package leadgen

import (
	"regexp"
	"strings"
	"unicode"
)

// Extracted is the transient result of mining one call for lead identity
// and intent. It feeds the status resolver and the lead upsert.
type Extracted struct {
	FullName             string `json:"full_name"`
	Phone                string `json:"phone"`
	BusinessType         string `json:"business_type"`
	Treatment            string `json:"treatment"`
	Sentiment            string `json:"sentiment"`
	Interested           bool   `json:"interested"`
	AppointmentRequested bool   `json:"appointment_requested"`
}

var (
	// A name following a caller-identifying marker in the summary.
	summaryNamePattern = regexp.MustCompile(`(?:(?i:müşteri|arayan|caller|customer))\s*[:\-]?\s*(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)?)`)

	// Self-introductions in the transcript. Longer markers first so
	// "benim adım" is not consumed by the bare "ben".
	selfIntroPattern = regexp.MustCompile(`(?:(?i:benim adım|my name is|i̇smim|ismim|adım|ben))\s+(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)?)`)

	// Generic two-capitalized-word fallback.
	twoCapsPattern = regexp.MustCompile(`\p{Lu}\p{Ll}+\s+\p{Lu}\p{Ll}+`)

	// "What is your name" prompt followed by the caller's dialogue turn.
	namePromptPattern = regexp.MustCompile(`(?i)(isminizi|adınızı|isminiz nedir|your name)`)
	dialogueTurnName  = regexp.MustCompile(`(?:(?i:user|customer|müşteri|kullanıcı))\s*:\s*(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)?)`)

	// Digit groupings that look like a dictated phone number.
	phoneDigitsPattern = regexp.MustCompile(`(?:\d[\s\-.]?){10,11}`)
)

// Extractor mines transcripts and summaries for lead attributes. Pure
// heuristics over noisy text: it never fails, it only degrades to empty
// fields.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the given dictionaries.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract derives lead attributes from one call. callerPhone is the
// call's known caller id, used when no phone can be mined from the text.
func (e *Extractor) Extract(transcript, summary, sentiment, callType, callerPhone string) Extracted {
	combined := transcript + " " + summary
	lowered := strings.ToLower(combined)

	if sentiment == "" {
		sentiment = "neutral"
	}

	return Extracted{
		FullName:             e.extractName(transcript, summary),
		Phone:                e.extractPhone(combined, lowered, callerPhone),
		BusinessType:         e.detectBusinessType(lowered),
		Treatment:            e.detectTreatment(lowered),
		Sentiment:            sentiment,
		Interested:           e.detectInterest(lowered),
		AppointmentRequested: e.detectAppointmentRequest(lowered, callType),
	}
}

// extractName tries each strategy in priority order and returns the first
// candidate that survives cleaning and validation.
func (e *Extractor) extractName(transcript, summary string) string {
	if m := summaryNamePattern.FindStringSubmatch(summary); m != nil {
		if name := e.cleanName(m[1]); e.isValidName(name) {
			return name
		}
	}

	if m := selfIntroPattern.FindStringSubmatch(transcript); m != nil {
		if name := e.cleanName(m[1]); e.isValidName(name) {
			return name
		}
	}

	for _, candidate := range twoCapsPattern.FindAllString(transcript+" "+summary, 5) {
		if name := e.cleanName(candidate); e.isValidName(name) {
			return name
		}
	}

	if loc := namePromptPattern.FindStringIndex(transcript); loc != nil {
		rest := transcript[loc[1]:]
		if m := dialogueTurnName.FindStringSubmatch(rest); m != nil {
			if name := e.cleanName(m[1]); e.isValidName(name) {
				return name
			}
		}
	}

	return ""
}

// cleanName strips punctuation and honorific tokens from a candidate.
func (e *Extractor) cleanName(raw string) string {
	words := strings.Fields(strings.Trim(raw, " .,!?;:\"'"))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		lowered := strings.ToLower(strings.Trim(w, ".,"))
		isHonorific := false
		for _, h := range e.cfg.Honorifics {
			if lowered == h {
				isHonorific = true
				break
			}
		}
		if !isHonorific {
			kept = append(kept, strings.Trim(w, ".,"))
		}
	}
	return strings.Join(kept, " ")
}

// isValidName rejects filler words and anything that does not look like
// a person's name.
func (e *Extractor) isValidName(name string) bool {
	if len([]rune(name)) < 2 {
		return false
	}

	first := []rune(name)[0]
	if !unicode.IsUpper(first) {
		return false
	}

	lowered := strings.ToLower(name)
	for _, filler := range e.cfg.NameFillerWords {
		if lowered == filler || strings.HasPrefix(lowered, filler+" ") {
			return false
		}
	}
	return true
}

// extractPhone prefers explicit digit groupings, then spoken-number
// conversion near a phone keyword, then the call's own caller id.
func (e *Extractor) extractPhone(combined, lowered, callerPhone string) string {
	if m := phoneDigitsPattern.FindString(combined); m != "" {
		digits := keepDigits(m)
		if len(digits) >= 10 && len(digits) <= 11 {
			return digits
		}
	}

	for _, kw := range e.cfg.PhoneKeywords {
		idx := strings.Index(lowered, kw)
		if idx < 0 {
			continue
		}
		window := lowered[idx:]
		if len(window) > 160 {
			window = window[:160]
		}
		digits := ConvertSpokenNumbers(window)
		if len(digits) >= 10 && len(digits) <= 11 {
			return digits
		}
	}

	return callerPhone
}

func (e *Extractor) detectBusinessType(lowered string) string {
	for _, rule := range e.cfg.BusinessTypes {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				return rule.Category
			}
		}
	}
	return "other"
}

func (e *Extractor) detectTreatment(lowered string) string {
	matched := []string{}
	for _, rule := range e.cfg.Interests {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				matched = append(matched, rule.Label)
				break
			}
		}
	}
	if len(matched) == 0 {
		return e.cfg.DefaultInterest
	}
	return strings.Join(matched, ", ")
}

func (e *Extractor) detectInterest(lowered string) bool {
	positive := countMatches(lowered, e.cfg.PositiveIndicators)
	negative := countMatches(lowered, e.cfg.NegativeIndicators)
	return positive > negative
}

func (e *Extractor) detectAppointmentRequest(lowered, callType string) bool {
	if callType == "appointment" {
		return true
	}
	for _, phrase := range e.cfg.AppointmentPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

func keepDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
