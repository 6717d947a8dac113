package evaluation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Result is the structured outcome of parsing one success-evaluation
// string. Transient: its fields are written into the call record.
type Result struct {
	Score     *float64 `json:"score"`
	Tags      []string `json:"tags"`
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
}

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

const maxSummaryLength = 500

// Explicit score notations, tried in order before keyword banding.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*10`),
	regexp.MustCompile(`(?i)(?:score|puan|rating)\s*[:=]\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s+out\s+of\s+10`),
	regexp.MustCompile(`(?i)(\d+)\s+puan`),
}

// Parser converts free-text success evaluations into structured results.
// It never returns an error: its primary caller is best-effort batch
// enrichment, so unparseable input degrades to null/neutral/empty.
type Parser struct {
	cfg Config
}

// NewParser creates a parser with the given keyword configuration.
func NewParser(cfg Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse converts a raw evaluation value and the call's ended-reason code
// into a structured result. The literal strings "true" and "false" are
// sentinels the provider emits when it performed no real evaluation.
func (p *Parser) Parse(raw, endedReason string) Result {
	trimmed := strings.TrimSpace(raw)
	lowered := strings.ToLower(trimmed)

	if lowered == "" || lowered == "true" || lowered == "false" {
		if endedReason != "" {
			return p.inferFromEndedReason(endedReason)
		}
		return Result{Sentiment: SentimentNeutral, Tags: []string{}}
	}

	score := p.extractScore(trimmed, lowered)
	tags := p.extractTags(lowered)
	sentiment := p.deriveSentiment(score, lowered)
	summary := cleanSummary(trimmed)

	return Result{
		Score:     score,
		Tags:      tags,
		Summary:   summary,
		Sentiment: sentiment,
	}
}

// extractScore tries explicit notations first, then keyword bands, then
// the success/failure default.
func (p *Parser) extractScore(raw, lowered string) *float64 {
	for _, pattern := range scorePatterns {
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil || value < 0 || value > 10 {
			continue
		}
		return &value
	}

	for _, band := range p.cfg.ScoreBands {
		for _, kw := range band.Keywords {
			if strings.Contains(lowered, kw) {
				score := math.Round((band.Low + band.High) / 2)
				return &score
			}
		}
	}

	// Failure is checked first: "başarısız" contains "başarı".
	for _, kw := range p.cfg.FailureKeywords {
		if strings.Contains(lowered, kw) {
			score := 3.0
			return &score
		}
	}
	for _, kw := range p.cfg.SuccessKeywords {
		if strings.Contains(lowered, kw) {
			score := 7.0
			return &score
		}
	}

	return nil
}

func (p *Parser) extractTags(lowered string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, rule := range p.cfg.TagRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				if !seen[rule.Tag] {
					seen[rule.Tag] = true
					tags = append(tags, rule.Tag)
				}
				break
			}
		}
	}
	return tags
}

func (p *Parser) deriveSentiment(score *float64, lowered string) string {
	if score != nil {
		switch {
		case *score >= 7:
			return SentimentPositive
		case *score <= 4:
			return SentimentNegative
		default:
			return SentimentNeutral
		}
	}

	positive := countMatches(lowered, p.cfg.PositiveKeywords)
	negative := countMatches(lowered, p.cfg.NegativeKeywords)
	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
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

// inferFromEndedReason maps terminal-reason categories to fixed results
// when no usable evaluation text exists.
func (p *Parser) inferFromEndedReason(endedReason string) Result {
	reason := strings.ToLower(endedReason)
	score := func(v float64) *float64 { return &v }

	switch {
	case strings.Contains(reason, "no-answer") || strings.Contains(reason, "did-not-answer"):
		return Result{Score: score(1), Tags: []string{"no_answer"}, Summary: "Müşteri aramayı yanıtlamadı", Sentiment: SentimentNegative}
	case strings.Contains(reason, "voicemail"):
		return Result{Score: score(2), Tags: []string{"voicemail"}, Summary: "Arama sesli mesaja düştü", Sentiment: SentimentNegative}
	case strings.Contains(reason, "busy"):
		return Result{Score: score(2), Tags: []string{"timing_concern"}, Summary: "Hat meşguldü", Sentiment: SentimentNegative}
	case strings.Contains(reason, "assistant-ended"):
		return Result{Score: score(6), Tags: []string{"successful_call"}, Summary: "Asistan görüşmeyi tamamladı", Sentiment: SentimentNeutral}
	case strings.Contains(reason, "customer-ended"):
		return Result{Score: score(5), Tags: []string{}, Summary: "Müşteri görüşmeyi sonlandırdı", Sentiment: SentimentNeutral}
	default:
		return Result{Tags: []string{}, Sentiment: SentimentNeutral}
	}
}

// cleanSummary strips explicit score substrings from the evaluation text
// and truncates to maxSummaryLength. Falls back to the original text when
// stripping leaves nothing.
func cleanSummary(raw string) string {
	cleaned := raw
	for _, pattern := range scorePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		cleaned = raw
	}

	runes := []rune(cleaned)
	if len(runes) > maxSummaryLength {
		return string(runes[:maxSummaryLength]) + "..."
	}
	return cleaned
}

// MergeTags unions existing and new tags, suppressing duplicates, so
// repeated backfill runs are idempotent on tags.
func MergeTags(existing, incoming []string) []string {
	merged := []string{}
	seen := map[string]bool{}
	for _, t := range existing {
		if t != "" && !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	for _, t := range incoming {
		if t != "" && !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}
