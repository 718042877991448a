package search

import "strings"

var positiveKeywords = []string{
	"bullish", "good", "great", "excellent", "impressive", "growth",
}

var negativeKeywords = []string{
	"bearish", "bad", "risk", "concern", "worried", "down",
}

// Sentiment summarises keyword-counted sentiment over a result set.
type Sentiment struct {
	Total       int     `json:"total_mentions"`
	Positive    int     `json:"positive"`
	Negative    int     `json:"negative"`
	Neutral     int     `json:"neutral"`
	PositivePct float64 `json:"positive_pct"`
	NegativePct float64 `json:"negative_pct"`
	NeutralPct  float64 `json:"neutral_pct"`
	Overall     string  `json:"overall"`
}

// AnalyzeSentiment classifies each document by comparing positive and
// negative keyword counts in its text. It is a coarse signal, not a model.
func AnalyzeSentiment(docs []ScoredDocument) Sentiment {
	var s Sentiment
	s.Total = len(docs)
	for _, d := range docs {
		text := strings.ToLower(d.Text)
		var pos, neg int
		for _, kw := range positiveKeywords {
			if strings.Contains(text, kw) {
				pos++
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(text, kw) {
				neg++
			}
		}
		switch {
		case pos > neg:
			s.Positive++
		case neg > pos:
			s.Negative++
		default:
			s.Neutral++
		}
	}
	if s.Total > 0 {
		s.PositivePct = float64(s.Positive) / float64(s.Total) * 100
		s.NegativePct = float64(s.Negative) / float64(s.Total) * 100
		s.NeutralPct = float64(s.Neutral) / float64(s.Total) * 100
	}
	switch {
	case s.Positive > s.Negative:
		s.Overall = "bullish"
	case s.Negative > s.Positive:
		s.Overall = "bearish"
	default:
		s.Overall = "neutral"
	}
	return s
}
