package search

import "strings"

// topicKeyword is the core topic every mention in the index is about.
const topicKeyword = "hyperliquid"

// synonymRules substitute a recognised term with domain alternatives to
// widen recall. Rules apply in declaration order, so variant order is
// deterministic. Longer terms come before their prefixes ("vaults" before
// "vault") so the most specific rule wins.
var synonymRules = []struct {
	term string
	alts []string
}{
	{"vaults", []string{"vault strategies", "HLP liquidity pools"}},
	{"vault", []string{"vault strategy", "HLP pool"}},
	{"airdrop", []string{"points program", "token distribution"}},
	{"trading", []string{"perps trading", "perpetual futures"}},
	{"token", []string{"HYPE token", "native token"}},
	{"tvl", []string{"total value locked", "liquidity"}},
	{"hack", []string{"exploit", "security incident"}},
}

// maxExpansions caps how many variants Expand may produce.
const maxExpansions = 4

// Expander generates a bounded set of semantically related query variants.
// It is a pure function of its input: no I/O, no randomness.
type Expander struct{}

func NewExpander() *Expander { return &Expander{} }

// Expand returns up to four distinct non-empty variants of query, never
// including the original verbatim. Zero variants is a valid outcome when
// no rule matches and the topic keyword is already present.
func (e *Expander) Expand(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}
	lower := strings.ToLower(trimmed)

	variants := make([]string, 0, maxExpansions)
	seen := map[string]struct{}{lower: {}}
	add := func(v string) bool {
		v = strings.TrimSpace(v)
		if v == "" {
			return false
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		variants = append(variants, v)
		return len(variants) >= maxExpansions
	}

	for _, rule := range synonymRules {
		idx := indexWord(lower, rule.term)
		if idx < 0 {
			continue
		}
		for _, alt := range rule.alts {
			// Substitute into the original text, preserving surrounding case.
			variant := trimmed[:idx] + alt + trimmed[idx+len(rule.term):]
			if add(variant) {
				return variants
			}
		}
	}

	if !strings.Contains(lower, topicKeyword) {
		add(trimmed + " HyperLiquid")
	}
	return variants
}

// indexWord finds term in s at a word boundary, or -1. Both arguments are
// expected lowercase.
func indexWord(s, term string) int {
	from := 0
	for {
		idx := strings.Index(s[from:], term)
		if idx < 0 {
			return -1
		}
		idx += from
		startOK := idx == 0 || !isWordChar(s[idx-1])
		endOK := idx+len(term) == len(s) || !isWordChar(s[idx+len(term)])
		if startOK && endOK {
			return idx
		}
		from = idx + 1
		if from >= len(s) {
			return -1
		}
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
