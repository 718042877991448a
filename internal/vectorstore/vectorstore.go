// Package vectorstore provides a Turbopuffer namespace client. The index
// is an external collaborator: we write chunk rows with their vectors and
// query approximate nearest neighbours with stored attributes.
package vectorstore

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/hyperscout/hyperscout/config"
	"github.com/hyperscout/hyperscout/internal/httpx"
	"github.com/hyperscout/hyperscout/models"
)

// Hit is one approximate-nearest-neighbour match with its stored attributes.
type Hit struct {
	ID         string         `json:"id"`
	Distance   float64        `json:"dist"`
	Attributes map[string]any `json:"attributes"`
}

// Client talks to one Turbopuffer namespace.
type Client struct {
	baseURL   string
	apiKey    string
	namespace string
	http      *httpx.Client
	logger    *log.Logger
}

func New(cfg config.VectorStoreConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		http:      httpx.NewClient(cfg.Timeout, cfg.Retries, 300*time.Millisecond),
		logger:    log.New(log.Writer(), "[VECTORSTORE] ", log.LstdFlags),
	}
}

func (c *Client) endpoint(suffix string) string {
	return fmt.Sprintf("%s/v1/namespaces/%s%s", c.baseURL, url.PathEscape(c.namespace), suffix)
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// Query returns up to topK nearest neighbours for the given vector,
// including all stored attributes.
func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	body := map[string]interface{}{
		"vector":             vector,
		"top_k":              topK,
		"distance_metric":    "cosine_distance",
		"include_attributes": true,
	}
	var resp struct {
		Rows []Hit `json:"rows"`
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, c.endpoint("/query"), c.headers(), body, &resp); err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	return resp.Rows, nil
}

// Upsert writes chunk rows into the namespace. Metadata fields are
// flattened next to id/vector/text so queries get them back as attributes.
func (c *Client) Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}

	rows := make([]map[string]interface{}, 0, len(chunks))
	for i, chunk := range chunks {
		row := map[string]interface{}{
			"id":           chunk.ID,
			"vector":       vectors[i],
			"text":         chunk.Text,
			"mention_id":   chunk.MentionID,
			"type":         chunk.Type,
			"title":        chunk.Metadata.Title,
			"url":          chunk.Metadata.URL,
			"published_at": chunk.Metadata.PublishedAt,
			"channel_name": chunk.Metadata.ChannelName,
			"channel_type": chunk.Metadata.ChannelType,
			"source_name":  chunk.Metadata.SourceName,
		}
		if len(chunk.Metadata.Tokens) > 0 {
			row["tokens"] = chunk.Metadata.Tokens
		}
		rows = append(rows, row)
	}

	body := map[string]interface{}{
		"upsert_rows":     rows,
		"distance_metric": "cosine_distance",
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, c.endpoint(""), c.headers(), body, nil); err != nil {
		return fmt.Errorf("vector upsert failed: %w", err)
	}
	c.logger.Printf("stored %d vectors in namespace %s", len(rows), c.namespace)
	return nil
}

// ApproxCount reports the namespace's approximate row count, used by the
// status endpoint as a connectivity probe.
func (c *Client) ApproxCount(ctx context.Context) (int64, error) {
	var resp struct {
		ApproxCount int64 `json:"approx_count"`
	}
	if err := c.http.DoJSON(ctx, http.MethodGet, c.endpoint("/metadata"), c.headers(), nil, &resp); err != nil {
		return 0, fmt.Errorf("namespace metadata failed: %w", err)
	}
	return resp.ApproxCount, nil
}
