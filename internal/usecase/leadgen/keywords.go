package leadgen

// BusinessTypeRule maps a category to its keyword list. Rules are scanned
// in order; the first match wins and "other" is the fallback.
type BusinessTypeRule struct {
	Category string
	Keywords []string
}

// InterestRule adds its label to the treatment string when any keyword
// appears in the combined text.
type InterestRule struct {
	Label    string
	Keywords []string
}

// Config carries the keyword dictionaries lead extraction classifies with.
// Immutable after load; passed explicitly into the extractor.
type Config struct {
	BusinessTypes      []BusinessTypeRule
	Interests          []InterestRule
	DefaultInterest    string
	PositiveIndicators []string
	NegativeIndicators []string
	AppointmentPhrases []string
	NameFillerWords    []string
	Honorifics         []string
	PhoneKeywords      []string
}

// DefaultConfig returns the standard extraction dictionaries.
func DefaultConfig() Config {
	return Config{
		BusinessTypes: []BusinessTypeRule{
			{Category: "health", Keywords: []string{"klinik", "hastane", "sağlık", "doktor", "muayenehane", "clinic", "hospital"}},
			{Category: "dental", Keywords: []string{"diş", "dental", "ortodonti", "implant"}},
			{Category: "beauty", Keywords: []string{"güzellik", "estetik", "beauty", "salon"}},
			{Category: "restaurant", Keywords: []string{"restoran", "restaurant", "lokanta", "kafe", "cafe"}},
			{Category: "barber", Keywords: []string{"berber", "barber", "kuaför"}},
			{Category: "bakery", Keywords: []string{"fırın", "pastane", "bakery"}},
			{Category: "hotel", Keywords: []string{"otel", "hotel", "pansiyon"}},
			{Category: "ice_cream", Keywords: []string{"dondurma", "ice cream"}},
		},
		Interests: []InterestRule{
			{Label: "implant", Keywords: []string{"implant"}},
			{Label: "ortodonti", Keywords: []string{"ortodonti", "diş teli"}},
			{Label: "diş beyazlatma", Keywords: []string{"beyazlatma", "whitening"}},
			{Label: "kanal tedavisi", Keywords: []string{"kanal tedavisi", "root canal"}},
			{Label: "hasta takip sistemi", Keywords: []string{"hasta takip", "patient tracking"}},
			{Label: "randevu sistemi", Keywords: []string{"randevu sistemi", "rezervasyon sistemi", "appointment system", "reservation system"}},
			{Label: "sanal asistan", Keywords: []string{"sanal asistan", "sesli asistan", "virtual assistant", "voice assistant"}},
		},
		DefaultInterest: "AI telefon asistanı",
		PositiveIndicators: []string{
			"ilgileniyorum", "isterim", "istiyorum", "olur", "tabii", "evet",
			"memnun olurum", "düşünüyorum", "interested", "sounds good", "yes please",
		},
		NegativeIndicators: []string{
			"istemiyorum", "ilgilenmiyorum", "hayır", "gerek yok", "meşgulüm",
			"sonra arayın", "not interested", "no thanks", "maybe later",
		},
		AppointmentPhrases: []string{
			"randevu almak", "randevu istiyorum", "randevu alabilir", "randevu oluştur",
			"rezervasyon yapmak", "görüşme ayarla", "book an appointment", "schedule a meeting",
		},
		NameFillerWords: []string{
			"evet", "hayır", "tamam", "merhaba", "alo", "ben", "yok", "şey",
			"yes", "no", "okay", "hello", "hi", "sure",
		},
		Honorifics: []string{"bey", "hanım", "bay", "bayan", "mr", "mrs", "ms", "dr"},
		PhoneKeywords: []string{
			"telefon", "numara", "numaram", "cep", "phone", "number", "ulaşabilirsiniz", "arayabilirsiniz",
		},
	}
}
