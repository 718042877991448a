package openai_provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hyperscout/hyperscout/internal/httpx"
)

const defaultBaseURL = "https://api.openai.com"

// Client generates embeddings through OpenAI's embeddings API.
type Client struct {
	apiKey    string
	model     string
	batchSize int
	dims      int
	baseURL   string
	http      *httpx.Client
}

// NewClient creates an OpenAI embedding client. Inputs larger than
// batchSize are split into sequential batch requests.
func NewClient(apiKey, model string, batchSize, dims int, timeout time.Duration) *Client {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Client{
		apiKey:    apiKey,
		model:     model,
		batchSize: batchSize,
		dims:      dims,
		baseURL:   defaultBaseURL,
		http:      httpx.NewClient(timeout, 1, 300*time.Millisecond),
	}
}

// WithBaseURL overrides the API endpoint, for tests and proxies.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Dims returns the configured embedding dimensionality.
func (c *Client) Dims() int { return c.dims }

// CreateEmbedding generates one vector per input text, in input order.
func (c *Client) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d..%d: %w", start, end, err)
		}
		vecs = append(vecs, batch...)
	}
	return vecs, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body := map[string]interface{}{
		"model": c.model,
		"input": texts,
	}

	var resp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", headers, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vecs := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}
