package provider

import (
	"context"
	"errors"

	"github.com/hyperscout/hyperscout/config"
	openai_provider "github.com/hyperscout/hyperscout/provider/openai"
)

// Client identifies an embedding backend.
type Client string

const (
	OpenAI Client = "openai"
)

// Provider is the interface all embedding backends must satisfy.
// Implementations return one vector per input text, in input order.
type Provider interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	// Dims returns the dimensionality of the vectors this provider emits.
	Dims() int
}

// NewProvider creates an embedding provider based on configuration.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch Client(cfg.Provider) {
	case OpenAI, "":
		return openai_provider.NewClient(cfg.APIKey, cfg.Model, cfg.BatchSize, cfg.Dims, cfg.Timeout), nil
	default:
		return nil, errors.New("unsupported embedding provider: " + cfg.Provider)
	}
}
