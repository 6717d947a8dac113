package leadgen

import (
	"strconv"
	"strings"
)

// Turkish cardinal words up to the hundreds, the only vocabulary callers
// use when dictating phone numbers. Deliberately not a general number
// parser.
var unitWords = map[string]int{
	"sıfır": 0, "bir": 1, "iki": 2, "üç": 3, "dört": 4,
	"beş": 5, "altı": 6, "yedi": 7, "sekiz": 8, "dokuz": 9,
}

var tensWords = map[string]int{
	"on": 10, "yirmi": 20, "otuz": 30, "kırk": 40, "elli": 50,
	"altmış": 60, "yetmiş": 70, "seksen": 80, "doksan": 90,
}

// ConvertSpokenNumbers turns Turkish spoken number words in text into a
// digit string, composing "X yüz" hundreds and tens+unit pairs the way a
// caller dictates a phone number ("sıfır beş yüz otuz iki ..."). Words
// that are not numbers are dropped.
func ConvertSpokenNumbers(text string) string {
	words := strings.Fields(strings.ToLower(text))

	var sb strings.Builder
	i := 0
	for i < len(words) {
		w := strings.Trim(words[i], ".,!?;:")
		unit, isUnit := unitWords[w]
		tens, isTens := tensWords[w]

		switch {
		case isUnit && unit > 0 && i+1 < len(words) && strings.Trim(words[i+1], ".,!?;:") == "yüz":
			sb.WriteString(strconv.Itoa(unit * 100))
			i += 2
		case w == "yüz":
			sb.WriteString("100")
			i++
		case isTens:
			if i+1 < len(words) {
				if next, ok := unitWords[strings.Trim(words[i+1], ".,!?;:")]; ok && next > 0 {
					sb.WriteString(strconv.Itoa(tens + next))
					i += 2
					continue
				}
			}
			sb.WriteString(strconv.Itoa(tens))
			i++
		case isUnit:
			sb.WriteString(strconv.Itoa(unit))
			i++
		default:
			i++
		}
	}

	return sb.String()
}
