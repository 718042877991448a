package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperscout/hyperscout/config"
	"github.com/hyperscout/hyperscout/internal/ingest"
	"github.com/hyperscout/hyperscout/internal/search"
	"github.com/hyperscout/hyperscout/internal/vectorstore"
	"github.com/hyperscout/hyperscout/provider"
	"github.com/hyperscout/hyperscout/repository/redis_repository"
)

// httpErrorHandler renders every error as {"error": msg} JSON and logs the
// request that caused it.
func httpErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
}

// Run wires the pipeline and serves the HTTP API until the listener stops.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = httpErrorHandler(baseLogger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := cfg.Embedding.Validate(); err != nil {
		return err
	}
	if err := cfg.VectorStore.Validate(); err != nil {
		return err
	}

	embedder, err := provider.NewProvider(cfg.Embedding)
	if err != nil {
		return err
	}
	store := vectorstore.New(cfg.VectorStore)
	collector := search.NewRingCollector(cfg.Search.HistorySize)

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
		Collector:   collector,
	})

	// The Redis response cache is optional; without it every search runs
	// the full pipeline.
	var cache *redis_repository.ResultCache
	if cfg.Storage.Redis.Enabled() {
		client, err := redis_repository.Conn(context.Background(),
			cfg.Storage.Redis.Host, cfg.Storage.Redis.Port,
			cfg.Storage.Redis.Password, cfg.Storage.Redis.DB,
			cfg.Storage.Redis.Timeout)
		if err != nil {
			baseLogger.Printf("redis cache unavailable, continuing without: %v", err)
		} else {
			cache = redis_repository.NewResultCache(client, cfg.Search.CacheTTL)
		}
	}

	h := &SearchHandler{
		Pipeline:  pipeline,
		Store:     store,
		Ingestor:  ingest.NewIngestor(embedder, store),
		Cache:     cache,
		Collector: collector,
		Logger:    log.New(log.Writer(), "[API] ", log.LstdFlags),
	}
	h.Register(e.Group("/api"))

	return e.Start(cfg.Server.Address)
}
