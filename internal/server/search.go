package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hyperscout/hyperscout/internal/helpers"
	"github.com/hyperscout/hyperscout/internal/search"
	"github.com/hyperscout/hyperscout/repository/redis_repository"
)

// demoQueries are the canned queries served by /api/demo.
var demoQueries = []string{
	"What are people saying about HyperLiquid's vaults?",
	"Any influencer tweets about HyperLiquid recently?",
	"HYPE token price sentiment analysis",
}

// Searcher is the pipeline surface the handler needs.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]search.ScoredDocument, error)
}

// IndexProber checks vector-store connectivity for the status endpoint.
type IndexProber interface {
	ApproxCount(ctx context.Context) (int64, error)
}

// FileIngestor runs a background ingestion of a mentions file.
type FileIngestor interface {
	Run(ctx context.Context, path string, batchSize int) (int, error)
}

// SearchHandler serves the search API.
type SearchHandler struct {
	Pipeline  Searcher
	Store     IndexProber
	Ingestor  FileIngestor
	Cache     *redis_repository.ResultCache // nil disables caching
	Collector *search.RingCollector
	Logger    *log.Logger
}

func (h *SearchHandler) Register(g *echo.Group) {
	g.POST("/search", h.search)
	g.GET("/status", h.status)
	g.POST("/ingest", h.ingest)
	g.GET("/demo", h.demo)
}

// SearchResult is one ranked document in an API response.
type SearchResult struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Source            string  `json:"source"`
	URL               string  `json:"url,omitempty"`
	PublishedAt       string  `json:"published_at,omitempty"`
	ChannelType       string  `json:"channel_type"`
	Content           string  `json:"content"`
	RelevanceScore    float64 `json:"relevance_score"`
	RecencyScore      float64 `json:"recency_score"`
	ImportanceScore   float64 `json:"importance_score"`
	HybridScore       float64 `json:"hybrid_score"`
	RelevanceCategory string  `json:"relevance_category"`
	DaysAgo           int     `json:"days_ago"`
}

// SearchResponse is the /api/search payload.
type SearchResponse struct {
	Query         string           `json:"query"`
	Timestamp     int64            `json:"timestamp"`
	ExecutionTime float64          `json:"execution_time"`
	TotalResults  int              `json:"total_results"`
	Degraded      bool             `json:"degraded"`
	Results       []SearchResult   `json:"results"`
	Sentiment     search.Sentiment `json:"sentiment"`
}

func (h *SearchHandler) search(c echo.Context) error {
	var req struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.TopK == 0 {
		req.TopK = 15
	}

	cacheKey := helpers.Fingerprint(req.Query, strconv.Itoa(req.TopK))
	if h.Cache != nil {
		var cached SearchResponse
		err := h.Cache.Get(c.Request().Context(), cacheKey, &cached)
		if err == nil {
			return c.JSON(http.StatusOK, cached)
		}
		if !errors.Is(err, redis_repository.ErrCacheMiss) {
			h.Logger.Printf("cache read failed: %v", err)
		}
	}

	start := time.Now()
	docs, err := h.Pipeline.Search(c.Request().Context(), req.Query, req.TopK)
	if err != nil {
		var ve *search.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed: "+err.Error())
	}

	resp := buildResponse(req.Query, docs, time.Since(start))
	if h.Cache != nil {
		if err := h.Cache.Set(c.Request().Context(), cacheKey, resp); err != nil {
			h.Logger.Printf("cache write failed: %v", err)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func buildResponse(query string, docs []search.ScoredDocument, took time.Duration) SearchResponse {
	now := time.Now()
	results := make([]SearchResult, 0, len(docs))
	degraded := len(docs) > 0
	for _, d := range docs {
		if d.RelevanceScore != 0 {
			degraded = false
		}
		r := SearchResult{
			ID:                d.ID,
			Title:             d.Title,
			Source:            d.SourceName,
			URL:               d.URL,
			ChannelType:       string(d.ChannelType),
			Content:           d.Text,
			RelevanceScore:    d.RelevanceScore,
			RecencyScore:      d.RecencyScore,
			ImportanceScore:   d.ImportanceScore,
			HybridScore:       d.HybridScore,
			RelevanceCategory: relevanceCategory(d.RelevanceScore),
			DaysAgo:           search.DaysAgo(d.PublishedAt, now),
		}
		if d.PublishedAt != nil {
			r.PublishedAt = d.PublishedAt.UTC().Format(time.RFC3339)
		}
		results = append(results, r)
	}
	return SearchResponse{
		Query:         query,
		Timestamp:     now.Unix(),
		ExecutionTime: took.Seconds(),
		TotalResults:  len(results),
		Degraded:      degraded,
		Results:       results,
		Sentiment:     search.AnalyzeSentiment(docs),
	}
}

// relevanceCategory buckets a relevance score for display.
func relevanceCategory(score float64) string {
	switch {
	case score >= 0.8:
		return "high"
	case score >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Status             string                 `json:"status"`
	VectorStoreUp      bool                   `json:"vector_store_connected"`
	TotalDocuments     int64                  `json:"total_documents"`
	PerformanceMetrics search.MetricsSnapshot `json:"performance_metrics"`
	RecentSearches     int                    `json:"recent_searches"`
}

func (h *SearchHandler) status(c echo.Context) error {
	ctx := c.Request().Context()
	resp := StatusResponse{Status: "operational"}

	count, err := h.Store.ApproxCount(ctx)
	if err != nil {
		h.Logger.Printf("vector store probe failed: %v", err)
		resp.Status = "degraded"
	} else {
		resp.VectorStoreUp = true
		resp.TotalDocuments = count
	}

	if h.Collector != nil {
		resp.PerformanceMetrics = h.Collector.Snapshot()
		resp.RecentSearches = len(h.Collector.Events())
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) ingest(c echo.Context) error {
	var req struct {
		FilePath  string `json:"file_path"`
		BatchSize int    `json:"batch_size"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FilePath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file_path required")
	}

	// Ingestion runs detached from the request; progress lands in logs.
	go func() {
		stored, err := h.Ingestor.Run(context.Background(), req.FilePath, req.BatchSize)
		if err != nil {
			h.Logger.Printf("background ingestion failed: %v", err)
			return
		}
		h.Logger.Printf("background ingestion done: %d chunks", stored)
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message":    "ingestion started in background",
		"file_path":  req.FilePath,
		"batch_size": req.BatchSize,
	})
}

func (h *SearchHandler) demo(c echo.Context) error {
	type demoEntry struct {
		Query    string         `json:"query"`
		Results  []SearchResult `json:"results,omitempty"`
		Error    string         `json:"error,omitempty"`
		Duration float64        `json:"execution_time"`
	}

	out := make([]demoEntry, 0, len(demoQueries))
	for _, q := range demoQueries {
		start := time.Now()
		docs, err := h.Pipeline.Search(c.Request().Context(), q, 5)
		entry := demoEntry{Query: q, Duration: time.Since(start).Seconds()}
		if err != nil {
			entry.Error = err.Error()
		} else {
			resp := buildResponse(q, docs, time.Since(start))
			if len(resp.Results) > 3 {
				resp.Results = resp.Results[:3]
			}
			entry.Results = resp.Results
		}
		out = append(out, entry)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"demo_results": out})
}
