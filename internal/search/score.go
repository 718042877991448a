package search

import (
	"sort"
	"strings"
	"time"

	"github.com/hyperscout/hyperscout/models"
)

// Recency decay breakpoints. The step function is monotonically
// non-increasing in days-ago; documents with no usable publish date score
// the same floor as the oldest bucket.
const (
	recencySameDay = 1.0
	recencyWeek    = 0.9
	recencyMonth   = 0.7
	recencyQuarter = 0.5
	recencyYear    = 0.2
	recencyFloor   = 0.1
)

// Importance heuristic constants. Keyword bonuses are capped per category
// so keyword stuffing cannot run away with the score.
const (
	importanceBase       = 0.5
	tier1Bonus           = 0.3
	tier2Bonus           = 0.2
	impactKeywordBonus   = 0.05
	impactKeywordCap     = 0.15
	finKeywordBonus      = 0.03
	finKeywordCap        = 0.09
	trustedChannelBonus = 0.1
	extremeScoreBonus   = 0.05 // added for relevance > 0.8 and again for recency >= recencyWeek
	extremeRelevanceBar = 0.8
)

// tier1Outlets and tier2Outlets are matched case-insensitively against the
// document's source name; the highest matching tier wins.
var tier1Outlets = []string{
	"coindesk", "cointelegraph", "the block", "bloomberg", "reuters",
	"financial times", "wall street journal",
}

var tier2Outlets = []string{
	"decrypt", "blockworks", "dl news", "cryptoslate", "the defiant",
	"messari", "bankless",
}

var impactKeywords = []string{
	"hack", "exploit", "listing", "partnership", "airdrop", "upgrade",
	"outage", "liquidation", "delisting",
}

var financialKeywords = []string{
	"tvl", "volume", "revenue", "funding", "treasury", "buyback",
}

// Scorer combines the reranker's relevance score with recency decay and a
// source/content importance heuristic into one hybrid ranking key. It is a
// pure function of its inputs given a fixed now.
type Scorer struct {
	weights WeightConfig
}

func NewScorer(weights WeightConfig) *Scorer {
	return &Scorer{weights: weights}
}

// Score fills RecencyScore, ImportanceScore and HybridScore on every input
// document and returns them ordered descending by hybrid score, ties broken
// by relevance then by input order.
func (s *Scorer) Score(docs []ScoredDocument, now time.Time) []ScoredDocument {
	out := make([]ScoredDocument, len(docs))
	copy(out, docs)
	for i := range out {
		out[i].RecencyScore = recencyScore(out[i].PublishedAt, now)
		out[i].ImportanceScore = importanceScore(out[i].Document)
		out[i].HybridScore = s.hybrid(out[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HybridScore != out[j].HybridScore {
			return out[i].HybridScore > out[j].HybridScore
		}
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out
}

// hybrid is the weighted blend plus small additive bonuses for extreme
// relevance and extreme recency. The result is intentionally not re-clamped;
// it is only used for ordering.
func (s *Scorer) hybrid(d ScoredDocument) float64 {
	score := s.weights.Relevance*d.RelevanceScore +
		s.weights.Recency*d.RecencyScore +
		s.weights.Importance*d.ImportanceScore
	if d.RelevanceScore > extremeRelevanceBar {
		score += extremeScoreBonus
	}
	if d.RecencyScore >= recencyWeek {
		score += extremeScoreBonus
	}
	return score
}

func recencyScore(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return recencyFloor
	}
	age := now.Sub(*publishedAt)
	if age < 0 {
		age = 0 // future-dated feeds happen; treat as fresh
	}
	daysAgo := int(age.Hours() / 24)
	switch {
	case daysAgo < 1:
		return recencySameDay
	case daysAgo <= 7:
		return recencyWeek
	case daysAgo <= 30:
		return recencyMonth
	case daysAgo <= 90:
		return recencyQuarter
	case daysAgo <= 365:
		return recencyYear
	default:
		return recencyFloor
	}
}

func importanceScore(d Document) float64 {
	score := importanceBase

	source := strings.ToLower(d.SourceName)
	switch {
	case matchesAny(source, tier1Outlets):
		score += tier1Bonus
	case matchesAny(source, tier2Outlets):
		score += tier2Bonus
	}

	text := strings.ToLower(d.Title + " " + d.Text)
	score += keywordBonus(text, impactKeywords, impactKeywordBonus, impactKeywordCap)
	score += keywordBonus(text, financialKeywords, finKeywordBonus, finKeywordCap)

	switch d.ChannelType {
	case models.ChannelNews, models.ChannelOfficial:
		score += trustedChannelBonus
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func matchesAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func keywordBonus(text string, keywords []string, per, limit float64) float64 {
	var bonus float64
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			bonus += per
			if bonus >= limit {
				return limit
			}
		}
	}
	return bonus
}

// DaysAgo reports whole days between publish time and now, or -1 when the
// publish time is unknown.
func DaysAgo(publishedAt *time.Time, now time.Time) int {
	if publishedAt == nil {
		return -1
	}
	age := now.Sub(*publishedAt)
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}
