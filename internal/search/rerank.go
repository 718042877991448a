package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hyperscout/hyperscout/config"
	"github.com/hyperscout/hyperscout/internal/httpx"
)

// minDocChars is the smallest representation worth sending to the rerank
// service; shorter documents are excluded before the call, not scored.
const minDocChars = 10

// RerankResult is one scored entry from the rerank service. Index refers
// to the position in the submitted documents list.
type RerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// RerankClient scores (query, document) pairs semantically. A single call
// covers the whole candidate list.
type RerankClient interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)
}

// CohereClient implements RerankClient against Cohere's rerank endpoint.
// It performs exactly one attempt per call; retries belong to the
// Reranker's RetryPolicy.
type CohereClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *httpx.Client
}

func NewCohereClient(cfg config.RerankConfig) *CohereClient {
	return &CohereClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		http:    httpx.NewClient(cfg.Timeout, 0, 0),
	}
}

func (c *CohereClient) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	body := map[string]interface{}{
		"model":     c.model,
		"query":     query,
		"documents": documents,
		"top_n":     topN,
	}
	var resp struct {
		Results []RerankResult `json:"results"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/v1/rerank", headers, body, &resp); err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	return resp.Results, nil
}

// RetryPolicy governs how rerank attempts back off. Delay before attempt n
// (zero-based, n >= 1) is BaseDelay * 2^(n-1). Tests inject a zero
// BaseDelay for determinism.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the configured service defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	if p.BaseDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(p.BaseDelay * time.Duration(1<<attempt)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reranker wraps the external rerank service with document construction,
// retry/backoff and graceful degradation. Rerank never returns an error to
// its caller: exhausted retries degrade to an unscored passthrough.
type Reranker struct {
	client      RerankClient
	policy      RetryPolicy
	floor       float64
	maxDocChars int
	logger      *log.Logger
}

func NewReranker(client RerankClient, policy RetryPolicy, floor float64, maxDocChars int) *Reranker {
	if maxDocChars <= 0 {
		maxDocChars = 1000
	}
	return &Reranker{
		client:      client,
		policy:      policy,
		floor:       floor,
		maxDocChars: maxDocChars,
		logger:      log.New(log.Writer(), "[RERANK] ", log.LstdFlags),
	}
}

// Rerank scores docs against query and returns at most
// min(topK, len(docs)) documents in the service's semantic order. The
// second return reports degraded mode: the service was unreachable and the
// result is the first topK inputs in original order with relevance zero.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []Document, topK int) ([]ScoredDocument, bool) {
	if len(docs) == 0 || topK <= 0 {
		return nil, false
	}

	// Build bounded representations; remember which source document each
	// submitted entry maps back to.
	reps := make([]string, 0, len(docs))
	srcIdx := make([]int, 0, len(docs))
	for i, d := range docs {
		rep := buildRepresentation(d, r.maxDocChars)
		if len(rep) < minDocChars {
			continue
		}
		reps = append(reps, rep)
		srcIdx = append(srcIdx, i)
	}
	if len(reps) == 0 {
		return nil, false
	}

	topN := topK
	if topN > len(reps) {
		topN = len(reps)
	}
	enriched := enrichQuery(query)

	results, err := r.callWithRetry(ctx, enriched, reps, topN)
	if err != nil {
		r.logger.Printf("rerank degraded to passthrough: %v", err)
		return passthrough(docs, topK), true
	}

	out := make([]ScoredDocument, 0, topN)
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(srcIdx) {
			r.logger.Printf("skipping rerank result with out-of-range index %d", res.Index)
			continue
		}
		if math.IsNaN(res.RelevanceScore) || math.IsInf(res.RelevanceScore, 0) {
			r.logger.Printf("skipping rerank result with non-finite score at index %d", res.Index)
			continue
		}
		if res.RelevanceScore < r.floor {
			continue // quality filter, not an error
		}
		out = append(out, ScoredDocument{
			Document:       docs[srcIdx[res.Index]],
			RelevanceScore: res.RelevanceScore,
		})
		if len(out) >= topK {
			break
		}
	}
	return out, false
}

func (r *Reranker) callWithRetry(ctx context.Context, query string, reps []string, topN int) ([]RerankResult, error) {
	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := r.policy.wait(ctx, attempt-1); err != nil {
				return nil, err
			}
		}
		results, err := r.client.Rerank(ctx, query, reps, topN)
		if err == nil {
			return results, nil
		}
		lastErr = err
		var se *httpx.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, err
		}
		r.logger.Printf("rerank attempt %d/%d failed: %v", attempt+1, r.policy.MaxAttempts, err)
	}
	return nil, lastErr
}

// passthrough is the fail-closed degraded mode: the first topK inputs in
// original order, all with relevance zero so callers can detect it.
func passthrough(docs []Document, topK int) []ScoredDocument {
	if topK > len(docs) {
		topK = len(docs)
	}
	out := make([]ScoredDocument, topK)
	for i := 0; i < topK; i++ {
		out[i] = ScoredDocument{Document: docs[i]}
	}
	return out
}

// enrichQuery appends the topic keyword and a short domain context when the
// query lacks them. This transform is query-side only and never exposed in
// output.
func enrichQuery(query string) string {
	lower := strings.ToLower(query)
	if strings.Contains(lower, topicKeyword) {
		return query
	}
	return query + " HyperLiquid crypto derivatives protocol"
}

// buildRepresentation concatenates title, source, publish date and a
// truncated body into the bounded text sent to the rerank service.
func buildRepresentation(d Document, budget int) string {
	var b strings.Builder
	if t := strings.TrimSpace(d.Title); t != "" {
		b.WriteString("Title: ")
		b.WriteString(t)
		b.WriteByte('\n')
	}
	if s := strings.TrimSpace(d.SourceName); s != "" {
		b.WriteString("Source: ")
		b.WriteString(s)
		b.WriteByte('\n')
	}
	if d.PublishedAt != nil {
		b.WriteString("Published: ")
		b.WriteString(d.PublishedAt.Format("2006-01-02"))
		b.WriteByte('\n')
	}
	remaining := budget - b.Len()
	if remaining > 0 {
		b.WriteString(truncateAtBoundary(strings.TrimSpace(d.Text), remaining))
	}
	return strings.TrimSpace(b.String())
}

// truncateAtBoundary cuts s to at most budget bytes, preferring a sentence
// boundary in the second half of the budget, falling back to the last word
// boundary. It never cuts mid-word.
func truncateAtBoundary(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	window := s[:budget]

	cut := -1
	for _, marker := range []string{". ", "! ", "? ", ".\n"} {
		if idx := strings.LastIndex(window, marker); idx+len(marker) > cut+1 {
			cut = idx + len(marker) - 1
		}
	}
	if cut >= budget/2 {
		return strings.TrimSpace(window[:cut+1])
	}

	if idx := strings.LastIndexByte(window, ' '); idx > 0 {
		return strings.TrimSpace(window[:idx])
	}
	// No boundary at all; back off any split multi-byte rune.
	for len(window) > 0 && window[len(window)-1]&0xC0 == 0x80 {
		window = window[:len(window)-1]
	}
	return window
}
