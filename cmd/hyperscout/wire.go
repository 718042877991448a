package main

import (
	"github.com/hyperscout/hyperscout/config"
	"github.com/hyperscout/hyperscout/internal/search"
	"github.com/hyperscout/hyperscout/internal/vectorstore"
	"github.com/hyperscout/hyperscout/provider"
)

// buildDeps wires the embedding provider, vector store and search pipeline
// for the CLI commands. The HTTP server does its own wiring in
// internal/server so it can attach the collector and cache.
func buildDeps(cfg *config.Config) (provider.Provider, *vectorstore.Client, *search.Pipeline, error) {
	if err := cfg.Embedding.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.VectorStore.Validate(); err != nil {
		return nil, nil, nil, err
	}

	embedder, err := provider.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, nil, nil, err
	}
	store := vectorstore.New(cfg.VectorStore)

	reranker := search.NewReranker(
		search.NewCohereClient(cfg.Rerank),
		search.RetryPolicy{MaxAttempts: cfg.Rerank.MaxAttempts, BaseDelay: cfg.Rerank.BaseDelay},
		cfg.Rerank.RelevanceFloor,
		cfg.Rerank.MaxDocChars,
	)
	scorer := search.NewScorer(search.WeightConfig{
		Relevance:  cfg.Search.Weights.Relevance,
		Recency:    cfg.Search.Weights.Recency,
		Importance: cfg.Search.Weights.Importance,
	})
	pipeline := search.NewPipeline(embedder, store, reranker, scorer, search.Options{
		VariantTopK: cfg.Search.VariantTopK,
		MaxVariants: cfg.Search.MaxVariants,
	})
	return embedder, store, pipeline, nil
}
