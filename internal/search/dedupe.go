package search

import (
	"strings"

	"github.com/hyperscout/hyperscout/internal/helpers"
)

// Dedupe collapses near-duplicate retrieval hits across the base query and
// expansion variants, preserving first-seen order. Identity is the
// canonicalised URL when the document has one, otherwise its id. Later
// duplicates are dropped silently; overlap between fan-out queries is
// expected, not an error. Deduping an already-deduplicated sequence is a
// no-op.
func Dedupe(hits []RetrievalHit) []Document {
	docs := make([]Document, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		key := identityKey(hit.Document)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		docs = append(docs, hit.Document)
	}
	return docs
}

func identityKey(d Document) string {
	if u := strings.TrimSpace(d.URL); u != "" {
		if canonical, err := helpers.CanonicalURL(u); err == nil {
			return "url:" + canonical
		}
		return "url:" + strings.ToLower(u)
	}
	return "id:" + d.ID
}
