package search

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/hyperscout/hyperscout/internal/vectorstore"
	"github.com/hyperscout/hyperscout/models"
)

// Index is the vector-index surface the pipeline retrieves from.
// Satisfied by vectorstore.Client.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error)
}

// Options tunes pipeline behaviour beyond its collaborators. The zero
// value is usable.
type Options struct {
	// VariantTopK is how many hits each expansion variant retrieves;
	// the base query always retrieves the request's top_k. Default 8.
	VariantTopK int
	// MaxVariants caps how many expander variants join the fan-out.
	// Default 3, never more than the expander's own limit.
	MaxVariants int
	// Collector observes completed runs. Default: discard.
	Collector Collector
	// Now supplies the scoring timestamp, for deterministic tests.
	Now func() time.Time
}

// Pipeline sequences expansion, fan-out retrieval, deduplication,
// reranking and hybrid scoring for one query. It holds no mutable state
// beyond read-only configuration, so concurrent Search calls need no
// locking.
type Pipeline struct {
	embedder  Embedder
	index     Index
	reranker  *Reranker
	scorer    *Scorer
	expander  *Expander
	collector Collector

	variantTopK int
	maxVariants int
	now         func() time.Time
	logger      *log.Logger
}

func NewPipeline(embedder Embedder, index Index, reranker *Reranker, scorer *Scorer, opts Options) *Pipeline {
	if opts.VariantTopK <= 0 {
		opts.VariantTopK = 8
	}
	if opts.MaxVariants <= 0 || opts.MaxVariants > maxExpansions {
		opts.MaxVariants = 3
	}
	if opts.Collector == nil {
		opts.Collector = NopCollector{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		embedder:    embedder,
		index:       index,
		reranker:    reranker,
		scorer:      scorer,
		expander:    NewExpander(),
		collector:   opts.Collector,
		variantTopK: opts.VariantTopK,
		maxVariants: opts.MaxVariants,
		now:         opts.Now,
		logger:      log.New(log.Writer(), "[SEARCH] ", log.LstdFlags),
	}
}

// Search runs the full pipeline and returns at most topK documents, each
// carrying all four scores, ordered by hybrid score. An empty query or
// out-of-range topK is rejected with a ValidationError before any I/O; a
// failed base-query retrieval returns a RetrievalError. Variant failures
// and rerank-service failures never fail the search.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]ScoredDocument, error) {
	req := SearchRequest{Query: query, TopK: topK}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	started := p.now()
	searchesTotal.Inc()
	event := SearchEvent{
		ID:        uuid.New().String(),
		Query:     query,
		StartedAt: started,
	}

	variants := p.expander.Expand(query)
	if len(variants) > p.maxVariants {
		variants = variants[:p.maxVariants]
	}
	event.Variants = len(variants)
	queries := append([]string{query}, variants...)

	// Fan out one embed+query round trip per variant. Results land in a
	// slot per variant, so the merge below is deterministic no matter
	// which goroutine finishes first.
	hitsPerQuery := make([][]RetrievalHit, len(queries))
	errs := make([]error, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		k := topK
		if i > 0 {
			k = p.variantTopK
		}
		wg.Add(1)
		go func(slot int, q string, k int) {
			defer wg.Done()
			hitsPerQuery[slot], errs[slot] = p.retrieve(ctx, q, k)
		}(i, q, k)
	}
	wg.Wait()

	if errs[0] != nil {
		searchFailures.Inc()
		event.Error = errs[0].Error()
		event.Duration = p.now().Sub(started)
		p.collector.Record(event)
		return nil, &RetrievalError{Query: query, Err: errs[0]}
	}

	var hits []RetrievalHit
	for i := range queries {
		if errs[i] != nil {
			variantFailures.Inc()
			p.logger.Printf("variant %q skipped: %v", queries[i], errs[i])
			continue
		}
		hits = append(hits, hitsPerQuery[i]...)
	}
	event.Retrieved = len(hits)

	docs := Dedupe(hits)
	event.Unique = len(docs)

	scored, degraded := p.reranker.Rerank(ctx, query, docs, topK)
	if degraded {
		rerankFallbacks.Inc()
	}
	event.Degraded = degraded

	final := p.scorer.Score(scored, p.now())
	if len(final) > topK {
		final = final[:topK]
	}

	event.Returned = len(final)
	event.Duration = p.now().Sub(started)
	searchDuration.Observe(event.Duration.Seconds())
	p.collector.Record(event)
	return final, nil
}

func (p *Pipeline) retrieve(ctx context.Context, query string, topK int) ([]RetrievalHit, error) {
	vecs, err := p.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errEmptyEmbedding
	}
	raw, err := p.index.Query(ctx, vecs[0], topK)
	if err != nil {
		return nil, err
	}
	hits := make([]RetrievalHit, 0, len(raw))
	for _, h := range raw {
		hits = append(hits, RetrievalHit{
			Document: hitDocument(h),
			Distance: h.Distance,
			Variant:  query,
		})
	}
	return hits, nil
}

var errEmptyEmbedding = &emptyEmbeddingError{}

type emptyEmbeddingError struct{}

func (*emptyEmbeddingError) Error() string { return "embedding provider returned no vector" }

// hitDocument converts a raw index hit into a Document. Missing attributes
// get zero values; an unparseable published_at leaves PublishedAt nil,
// which the scorer treats as very old rather than an error.
func hitDocument(h vectorstore.Hit) Document {
	doc := Document{
		ID:          h.ID,
		Text:        attrString(h.Attributes, "text"),
		Title:       attrString(h.Attributes, "title"),
		SourceName:  attrString(h.Attributes, "source_name"),
		URL:         attrString(h.Attributes, "url"),
		ChannelType: models.ParseChannelType(attrString(h.Attributes, "channel_type")),
	}
	if raw := attrString(h.Attributes, "published_at"); raw != "" {
		if ts, err := dateparse.ParseAny(raw); err == nil {
			doc.PublishedAt = &ts
		}
	}
	return doc
}

func attrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
