// Package search implements the mention retrieval and ranking pipeline:
// query expansion, multi-query fan-out against the vector index,
// deduplication, semantic reranking and hybrid scoring.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperscout/hyperscout/models"
)

// TopK bounds for a single search request. Values outside the range are
// rejected, never clamped.
const (
	MinTopK = 1
	MaxTopK = 50
)

// Document is the unit being ranked. Fields are immutable once retrieved;
// the pipeline attaches derived scores but never mutates source fields.
// PublishedAt is nil when the mention carried no usable timestamp, URL is
// empty when the channel had none.
type Document struct {
	ID          string             `json:"id"`
	Text        string             `json:"text"`
	Title       string             `json:"title"`
	SourceName  string             `json:"source_name"`
	URL         string             `json:"url,omitempty"`
	ChannelType models.ChannelType `json:"channel_type"`
	PublishedAt *time.Time         `json:"published_at,omitempty"`
}

// RetrievalHit is a Document plus the raw similarity value from the vector
// index and the query variant that produced it. Hits only live between
// retrieval and deduplication.
type RetrievalHit struct {
	Document Document
	Distance float64
	Variant  string
}

// ScoredDocument is a Document plus the four pipeline scores. All four are
// set and finite on every document in the final output; HybridScore alone
// determines order.
type ScoredDocument struct {
	Document
	RelevanceScore  float64 `json:"relevance_score"`
	RecencyScore    float64 `json:"recency_score"`
	ImportanceScore float64 `json:"importance_score"`
	HybridScore     float64 `json:"hybrid_score"`
}

// SearchRequest is a validated search input.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Validate rejects empty queries and out-of-range top_k before any I/O.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if r.TopK < MinTopK || r.TopK > MaxTopK {
		return &ValidationError{Field: "top_k", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinTopK, MaxTopK, r.TopK)}
	}
	return nil
}

// WeightConfig holds the three hybrid-score weights. They must be
// non-negative and need not sum to one.
type WeightConfig struct {
	Relevance  float64 `json:"relevance"`
	Recency    float64 `json:"recency"`
	Importance float64 `json:"importance"`
}

// DefaultWeights returns the stock relevance/recency/importance blend.
func DefaultWeights() WeightConfig {
	return WeightConfig{Relevance: 0.5, Recency: 0.3, Importance: 0.2}
}

// ValidationError reports a rejected request. No partial work has been
// performed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RetrievalError reports a failed base-query retrieval, which is fatal to
// the whole search. Expansion-variant failures never surface as one.
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for %q: %v", e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Embedder maps texts onto fixed-length vectors, one per input in input
// order. Satisfied by provider.Provider.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
