package phone

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCallerID is the outbound caller id used when a tenant has not
// configured a dedicated number. Must always pass IsValidE164.
const DefaultCallerID = "+902129114094"

// e164Pattern matches a full E.164 number: leading +, first digit 1-9,
// 2-15 digits total after the +.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

var separatorReplacer = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "")

// NormalizeToE164 canonicalizes a raw phone string into E.164 form.
// Returns the empty string when the input cannot be normalized.
//
// Only Turkish local-format parsing is supported: with defaultCountry "TR"
// a bare 10-digit number (optionally with a leading 0) gets the +90 prefix.
// For any other country the input must already carry a + or 00 prefix.
func NormalizeToE164(input, defaultCountry string) string {
	cleaned := separatorReplacer.Replace(strings.TrimSpace(input))
	if cleaned == "" {
		return ""
	}

	var candidate string
	switch {
	case strings.HasPrefix(cleaned, "+"):
		candidate = cleaned
	case strings.HasPrefix(cleaned, "00"):
		candidate = "+" + cleaned[2:]
	case defaultCountry == "TR":
		digits := strings.TrimPrefix(cleaned, "0")
		switch {
		case len(digits) == 10:
			candidate = "+90" + digits
		case strings.HasPrefix(digits, "90") && len(digits) >= 12:
			candidate = "+" + digits
		case len(digits) >= 11:
			// An international number that only lost its plus. Anything
			// shorter cannot carry a country code and is rejected.
			candidate = "+" + digits
		default:
			return ""
		}
	default:
		return ""
	}

	if !IsValidE164(candidate) {
		return ""
	}
	return candidate
}

// IsValidE164 reports whether s is a well-formed E.164 number.
func IsValidE164(s string) bool {
	return e164Pattern.MatchString(s)
}

// ValidateAndNormalize normalizes input and fails loudly when the result is
// not a valid E.164 number. Used where the caller cannot proceed without a
// dialable number (for example placing an outbound call).
func ValidateAndNormalize(input, country string) (string, error) {
	normalized := NormalizeToE164(input, country)
	if normalized == "" {
		return "", fmt.Errorf("invalid phone number %q: expected E.164 format such as +905551234567 or a 10-digit Turkish number such as 05551234567", input)
	}
	return normalized, nil
}

// Variants returns the list of formats a stored phone number may appear in,
// used for OR-matching against lead records. The raw input is always first.
func Variants(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	digits := separatorReplacer.Replace(raw)
	digits = strings.TrimPrefix(digits, "+")

	seen := map[string]bool{}
	out := []string{}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(raw)
	add(digits)
	add("+" + digits)

	national := digits
	if strings.HasPrefix(national, "90") && len(national) >= 12 {
		national = national[2:]
	}
	national = strings.TrimPrefix(national, "0")
	if len(national) == 10 {
		add(national)
		add("0" + national)
		add("90" + national)
		add("+90" + national)
	}

	return out
}
