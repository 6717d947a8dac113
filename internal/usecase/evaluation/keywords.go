package evaluation

// ScoreBand maps a keyword list to a score range. Bands are scanned in
// order from most positive to least; the matched score is the rounded
// midpoint of the range.
type ScoreBand struct {
	Low      float64
	High     float64
	Keywords []string
}

// TagRule adds its tag when any keyword appears as a case-insensitive
// substring of the evaluation text.
type TagRule struct {
	Tag      string
	Keywords []string
}

// Config carries the keyword dictionaries the parser classifies with.
// Loaded once at process start and passed in explicitly; the parser never
// mutates it. The lists are the behavioral contract of this component, a
// mixed Turkish/English vocabulary tuned for call-center evaluations.
type Config struct {
	ScoreBands       []ScoreBand
	TagRules         []TagRule
	PositiveKeywords []string
	NegativeKeywords []string
	SuccessKeywords  []string
	FailureKeywords  []string
}

// DefaultConfig returns the standard keyword dictionaries.
func DefaultConfig() Config {
	return Config{
		ScoreBands: []ScoreBand{
			{Low: 9, High: 10, Keywords: []string{"mükemmel", "excellent", "perfect", "kusursuz"}},
			{Low: 8, High: 8, Keywords: []string{"çok iyi", "very good", "harika", "great"}},
			{Low: 7, High: 7, Keywords: []string{"iyi", "good", "başarılı", "successful", "olumlu"}},
			{Low: 5, High: 6, Keywords: []string{"orta", "average", "fena değil", "okay", "kısmen"}},
			{Low: 3, High: 4, Keywords: []string{"yetersiz", "poor", "zayıf", "weak", "olumsuz"}},
			{Low: 1, High: 2, Keywords: []string{"çok kötü", "kötü", "bad", "başarısız", "failed"}},
		},
		TagRules: []TagRule{
			{Tag: "high_interest", Keywords: []string{"çok ilgili", "very interested"}},
			{Tag: "interested", Keywords: []string{"ilgili", "interested", "ilgi gösterdi"}},
			{Tag: "not_interested", Keywords: []string{"ilgisiz", "not interested", "ilgilenmiyor", "istemiyor"}},
			{Tag: "appointment_requested", Keywords: []string{"randevu", "appointment", "rezervasyon"}},
			{Tag: "callback_requested", Keywords: []string{"geri ara", "tekrar ara", "follow up", "callback"}},
			{Tag: "sale_potential", Keywords: []string{"satış", "sale", "purchase", "satın al"}},
			{Tag: "hot_lead", Keywords: []string{"potansiyel müşteri", "potential customer", "sıcak müşteri"}},
			{Tag: "cold_lead", Keywords: []string{"soğuk müşteri", "cold lead"}},
			{Tag: "price_objection", Keywords: []string{"fiyat", "price", "pahalı", "expensive", "bütçe"}},
			{Tag: "timing_concern", Keywords: []string{"zamanlama", "timing", "meşgul", "busy", "müsait değil"}},
			{Tag: "call_quality_issue", Keywords: []string{"net değil", "anlaşılmıyor", "poor audio", "hat koptu", "bağlantı sorunu"}},
			{Tag: "voicemail", Keywords: []string{"sesli mesaj", "voicemail", "telesekreter"}},
			{Tag: "no_answer", Keywords: []string{"cevap vermedi", "no answer", "açmadı", "yanıtlamadı"}},
			{Tag: "wrong_number", Keywords: []string{"yanlış numara", "wrong number"}},
			{Tag: "successful_call", Keywords: []string{"başarılı görüşme", "successful call"}},
		},
		PositiveKeywords: []string{
			"iyi", "güzel", "memnun", "harika", "teşekkür", "olumlu", "ilgili",
			"good", "great", "interested", "positive", "happy", "excellent",
		},
		NegativeKeywords: []string{
			"kötü", "olumsuz", "istemiyor", "şikayet", "kızgın", "ilgisiz",
			"bad", "angry", "negative", "complaint", "not interested",
		},
		SuccessKeywords: []string{"başarı", "success"},
		FailureKeywords: []string{"başarısız", "fail"},
	}
}
