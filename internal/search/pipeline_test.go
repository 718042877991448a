package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hyperscout/hyperscout/internal/vectorstore"
)

// fakeEmbedder returns a fixed vector per text and counts calls.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeIndex serves the same canned rows to every query. Setting failTopK
// makes queries asking for exactly that many rows fail, which lets tests
// target variant retrievals (they use the pipeline's VariantTopK) without
// touching the base query.
type fakeIndex struct {
	hits     []vectorstore.Hit
	failTopK int
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error) {
	if f.failTopK > 0 && topK == f.failTopK {
		return nil, errors.New("index unavailable")
	}
	if topK > len(f.hits) {
		topK = len(f.hits)
	}
	return f.hits[:topK], nil
}

func indexHits(n int) []vectorstore.Hit {
	hits := make([]vectorstore.Hit, n)
	for i := range hits {
		hits[i] = vectorstore.Hit{
			ID: fmt.Sprintf("doc-%d", i),
			Attributes: map[string]any{
				"text":         fmt.Sprintf("HyperLiquid vault update number %d with fresh details.", i),
				"title":        fmt.Sprintf("Update %d", i),
				"source_name":  "CoinDesk",
				"url":          fmt.Sprintf("https://example.com/post/%d", i),
				"channel_type": "news",
				"published_at": "2026-07-30T10:00:00Z",
			},
		}
	}
	return hits
}

// identityRerank scores every submitted document in order.
type identityRerank struct{}

func (identityRerank) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	out := make([]RerankResult, 0, topN)
	for i := 0; i < len(documents) && i < topN; i++ {
		out = append(out, RerankResult{Index: i, RelevanceScore: 0.9 - float64(i)*0.01})
	}
	return out, nil
}

func newTestPipeline(embedder Embedder, index Index, client RerankClient, collector Collector) *Pipeline {
	reranker := NewReranker(client, zeroDelayPolicy(2), 0.1, 1000)
	scorer := NewScorer(DefaultWeights())
	return NewPipeline(embedder, index, reranker, scorer, Options{
		VariantTopK: 4,
		MaxVariants: 2,
		Collector:   collector,
		Now:         func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func TestSearchValidatesBeforeIO(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{hits: indexHits(3)}
	p := newTestPipeline(embedder, index, identityRerank{}, nil)

	cases := []struct {
		name  string
		query string
		topK  int
	}{
		{"empty query", "   ", 10},
		{"zero top_k", "hyperliquid", 0},
		{"negative top_k", "hyperliquid", -3},
		{"too large top_k", "hyperliquid", MaxTopK + 1},
	}
	for _, tc := range cases {
		_, err := p.Search(context.Background(), tc.query, tc.topK)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
	if embedder.callCount() != 0 {
		t.Fatalf("validation must happen before any I/O, embedder called %d times", embedder.callCount())
	}
}

func TestSearchBoundaryTopKAccepted(t *testing.T) {
	p := newTestPipeline(&fakeEmbedder{}, &fakeIndex{hits: indexHits(3)}, identityRerank{}, nil)
	for _, k := range []int{MinTopK, MaxTopK} {
		if _, err := p.Search(context.Background(), "hyperliquid vaults", k); err != nil {
			t.Fatalf("top_k %d must be accepted: %v", k, err)
		}
	}
}

func TestSearchReturnsAtMostTopK(t *testing.T) {
	p := newTestPipeline(&fakeEmbedder{}, &fakeIndex{hits: indexHits(10)}, identityRerank{}, nil)
	docs, err := p.Search(context.Background(), "hyperliquid vaults", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) > 3 {
		t.Fatalf("expected at most 3 results, got %d", len(docs))
	}
	for _, d := range docs {
		if d.HybridScore == 0 || d.RecencyScore == 0 || d.ImportanceScore == 0 {
			t.Fatalf("every result must carry all scores: %+v", d)
		}
	}
}

func TestSearchDeduplicatesAcrossVariants(t *testing.T) {
	// Every fan-out query returns the same rows, so without deduplication
	// the result would repeat documents.
	p := newTestPipeline(&fakeEmbedder{}, &fakeIndex{hits: indexHits(5)}, identityRerank{}, nil)
	docs, err := p.Search(context.Background(), "hyperliquid vault trading", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[string]struct{}{}
	for _, d := range docs {
		if _, dup := seen[d.ID]; dup {
			t.Fatalf("duplicate document %q in results", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
}

func TestSearchBaseQueryFailureIsFatal(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	collector := NewRingCollector(10)
	p := newTestPipeline(embedder, &fakeIndex{}, identityRerank{}, collector)

	_, err := p.Search(context.Background(), "hyperliquid", 5)
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	events := collector.Events()
	if len(events) != 1 || events[0].Error == "" {
		t.Fatalf("failed run must still be recorded: %+v", events)
	}
}

func TestSearchVariantFailureIsNotFatal(t *testing.T) {
	// Variant retrievals ask for VariantTopK (4) rows and fail; the base
	// query asks for the request's top_k and succeeds.
	index := &fakeIndex{hits: indexHits(4), failTopK: 4}
	p := newTestPipeline(&fakeEmbedder{}, index, identityRerank{}, nil)

	docs, err := p.Search(context.Background(), "hyperliquid vaults", 5)
	if err != nil {
		t.Fatalf("variant failures must not fail the search: %v", err)
	}
	if len(docs) == 0 {
		t.Fatalf("expected base-query results to survive")
	}
}

func TestSearchDegradedRerankStillReturns(t *testing.T) {
	failing := &fakeRerankClient{errs: []error{
		errors.New("boom"), errors.New("boom"),
	}}
	collector := NewRingCollector(10)
	p := newTestPipeline(&fakeEmbedder{}, &fakeIndex{hits: indexHits(5)}, failing, collector)

	docs, err := p.Search(context.Background(), "hyperliquid vaults", 3)
	if err != nil {
		t.Fatalf("rerank failure must not fail the search: %v", err)
	}
	if len(docs) == 0 {
		t.Fatalf("expected passthrough results")
	}
	for _, d := range docs {
		if d.RelevanceScore != 0 {
			t.Fatalf("degraded results must carry zero relevance, got %f", d.RelevanceScore)
		}
	}
	events := collector.Events()
	if len(events) != 1 || !events[0].Degraded {
		t.Fatalf("degraded run must be recorded: %+v", events)
	}
}

func TestSearchRecordsEvent(t *testing.T) {
	collector := NewRingCollector(10)
	p := newTestPipeline(&fakeEmbedder{}, &fakeIndex{hits: indexHits(5)}, identityRerank{}, collector)

	if _, err := p.Search(context.Background(), "hyperliquid vault trading", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := collector.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID == "" || ev.Query != "hyperliquid vault trading" {
		t.Fatalf("event missing identity: %+v", ev)
	}
	if ev.Variants == 0 || ev.Retrieved == 0 || ev.Unique == 0 || ev.Returned == 0 {
		t.Fatalf("event counters not filled: %+v", ev)
	}
	if ev.Unique > ev.Retrieved || ev.Returned > ev.Unique {
		t.Fatalf("counter invariants violated: %+v", ev)
	}
}

func TestSearchDeterministicOrder(t *testing.T) {
	run := func() []string {
		p := newTestPipeline(&fakeEmbedder{}, &fakeIndex{hits: indexHits(8)}, identityRerank{}, nil)
		docs, err := p.Search(context.Background(), "hyperliquid vault trading", 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids := make([]string, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		return ids
	}
	first := run()
	for i := 0; i < 5; i++ {
		if got := run(); fmt.Sprint(got) != fmt.Sprint(first) {
			t.Fatalf("result order not deterministic: %v vs %v", got, first)
		}
	}
}

func TestHitDocumentParsesAttributes(t *testing.T) {
	h := vectorstore.Hit{
		ID: "m1",
		Attributes: map[string]any{
			"text":         "body",
			"title":        "title",
			"source_name":  "X",
			"channel_type": "social",
			"published_at": "2026-01-15",
		},
	}
	doc := hitDocument(h)
	if doc.PublishedAt == nil {
		t.Fatalf("expected parsed publish date")
	}
	if doc.ChannelType != "social" {
		t.Fatalf("unexpected channel type %q", doc.ChannelType)
	}
}

func TestHitDocumentToleratesBadDate(t *testing.T) {
	h := vectorstore.Hit{ID: "m1", Attributes: map[string]any{"published_at": "not a date"}}
	if doc := hitDocument(h); doc.PublishedAt != nil {
		t.Fatalf("unparseable date must leave PublishedAt nil")
	}
}
