package search

import "testing"

func sentimentDoc(text string) ScoredDocument {
	return ScoredDocument{Document: Document{Text: text}}
}

func TestAnalyzeSentiment(t *testing.T) {
	docs := []ScoredDocument{
		sentimentDoc("Bullish momentum and impressive growth for HyperLiquid"),
		sentimentDoc("Traders worried about liquidation risk"),
		sentimentDoc("HyperLiquid announces a new vault"),
	}
	s := AnalyzeSentiment(docs)
	if s.Total != 3 {
		t.Fatalf("expected total 3, got %d", s.Total)
	}
	if s.Positive != 1 || s.Negative != 1 || s.Neutral != 1 {
		t.Fatalf("unexpected split: +%d -%d =%d", s.Positive, s.Negative, s.Neutral)
	}
	if s.Overall != "neutral" {
		t.Fatalf("balanced split must read neutral, got %q", s.Overall)
	}
}

func TestAnalyzeSentimentOverall(t *testing.T) {
	bull := AnalyzeSentiment([]ScoredDocument{
		sentimentDoc("great growth"),
		sentimentDoc("bullish signal"),
		sentimentDoc("nothing notable"),
	})
	if bull.Overall != "bullish" {
		t.Fatalf("want bullish, got %q", bull.Overall)
	}
	if bull.PositivePct < 66 || bull.PositivePct > 67 {
		t.Fatalf("unexpected positive pct %f", bull.PositivePct)
	}

	bear := AnalyzeSentiment([]ScoredDocument{sentimentDoc("bearish concern over risk")})
	if bear.Overall != "bearish" {
		t.Fatalf("want bearish, got %q", bear.Overall)
	}
}

func TestAnalyzeSentimentEmpty(t *testing.T) {
	s := AnalyzeSentiment(nil)
	if s.Total != 0 || s.Overall != "neutral" {
		t.Fatalf("empty input must be neutral with zero totals: %+v", s)
	}
}

func TestAnalyzeSentimentMixedDocument(t *testing.T) {
	// More negative than positive hits within one document.
	s := AnalyzeSentiment([]ScoredDocument{
		sentimentDoc("good growth but bearish risk and concern"),
	})
	if s.Negative != 1 {
		t.Fatalf("expected the mixed doc to classify negative, got %+v", s)
	}
}
