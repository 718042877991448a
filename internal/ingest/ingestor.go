package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/hyperscout/hyperscout/models"
	"github.com/hyperscout/hyperscout/provider"
)

// Store is the vector-index write surface the ingestor needs.
// Satisfied by vectorstore.Client.
type Store interface {
	Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
}

// Ingestor embeds chunks in batches and writes them to the vector index.
type Ingestor struct {
	processor *Processor
	embedder  provider.Provider
	store     Store
	logger    *log.Logger
}

func NewIngestor(embedder provider.Provider, store Store) *Ingestor {
	return &Ingestor{
		processor: NewProcessor(),
		embedder:  embedder,
		store:     store,
		logger:    log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
}

// Run ingests one mentions file and returns the number of chunks stored.
// When an embedding batch fails, zero vectors are substituted for that
// batch so chunk/vector ordering stays aligned instead of aborting the
// whole run; the affected rows simply rank poorly until re-embedded.
func (i *Ingestor) Run(ctx context.Context, path string, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	mentions, err := i.processor.ProcessFile(path)
	if err != nil {
		return 0, err
	}
	chunks := i.processor.Chunks(mentions)
	i.logger.Printf("processed %d mentions into %d chunks", len(mentions), len(chunks))
	if len(chunks) == 0 {
		return 0, nil
	}

	stored := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		vectors, err := i.embedder.CreateEmbedding(ctx, texts)
		if err != nil || len(vectors) != len(batch) {
			i.logger.Printf("embedding batch %d..%d failed, substituting zero vectors: %v", start, end, err)
			vectors = zeroVectors(len(batch), i.embedder.Dims())
		}

		if err := i.store.Upsert(ctx, batch, vectors); err != nil {
			return stored, fmt.Errorf("upserting batch %d..%d: %w", start, end, err)
		}
		stored += len(batch)
	}
	i.logger.Printf("ingestion complete: %d chunks stored", stored)
	return stored, nil
}

func zeroVectors(n, dims int) [][]float32 {
	if dims <= 0 {
		dims = 1536
	}
	vecs := make([][]float32, n)
	for i := range vecs {
		vecs[i] = make([]float32, dims)
	}
	return vecs
}
