// Package ingest loads the upstream mentions feed into the vector index:
// JSON file -> mentions -> chunks -> embeddings -> upsert.
package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/hyperscout/hyperscout/models"
)

// feed mirrors the upstream mentions file layout.
type feed struct {
	Mentions []struct {
		Publication struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Summary     string `json:"summary"`
			Content     string `json:"content"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
		} `json:"publication"`
		Channel struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"channel"`
		SourceEntity struct {
			Name string `json:"name"`
		} `json:"source_entity"`
		HyperliquidInfo struct {
			Tokens []string `json:"tokens"`
		} `json:"hyperliquid_info"`
	} `json:"mentions"`
}

// Processor turns the raw feed into mentions and searchable chunks.
type Processor struct {
	logger *log.Logger
}

func NewProcessor() *Processor {
	return &Processor{logger: log.New(log.Writer(), "[INGEST] ", log.LstdFlags)}
}

// ProcessFile parses a mentions JSON file. Entries without a publication
// id are skipped with a warning; a bad timestamp leaves PublishedAt nil
// rather than dropping the mention.
func (p *Processor) ProcessFile(path string) ([]models.Mention, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mentions file: %w", err)
	}
	return p.Process(data)
}

// Process parses raw feed bytes.
func (p *Processor) Process(data []byte) ([]models.Mention, error) {
	var f feed
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding mentions file: %w", err)
	}

	mentions := make([]models.Mention, 0, len(f.Mentions))
	for i, raw := range f.Mentions {
		if strings.TrimSpace(raw.Publication.ID) == "" {
			p.logger.Printf("skipping mention %d: missing publication id", i)
			continue
		}
		m := models.Mention{
			ID:          raw.Publication.ID,
			Title:       raw.Publication.Title,
			Summary:     raw.Publication.Summary,
			Content:     raw.Publication.Content,
			URL:         raw.Publication.URL,
			ChannelName: raw.Channel.Name,
			ChannelType: models.ParseChannelType(raw.Channel.Type),
			SourceName:  raw.SourceEntity.Name,
			Tokens:      raw.HyperliquidInfo.Tokens,
		}
		if raw.Publication.PublishedAt != "" {
			if ts, err := dateparse.ParseAny(raw.Publication.PublishedAt); err == nil {
				m.PublishedAt = &ts
			} else {
				p.logger.Printf("mention %s: unparseable published_at %q", m.ID, raw.Publication.PublishedAt)
			}
		}
		mentions = append(mentions, m)
	}
	return mentions, nil
}

// Chunks builds the searchable chunks for a mention set: a primary chunk
// from title+summary, plus a content chunk when body text exists. Both
// carry the full metadata so hits are self-describing.
func (p *Processor) Chunks(mentions []models.Mention) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(mentions)*2)
	for _, m := range mentions {
		meta := models.ChunkMetadata{
			Title:       m.Title,
			URL:         m.URL,
			ChannelName: m.ChannelName,
			ChannelType: string(m.ChannelType),
			SourceName:  m.SourceName,
			Tokens:      m.Tokens,
		}
		if m.PublishedAt != nil {
			meta.PublishedAt = m.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}

		primary := strings.TrimSpace(strings.TrimSpace(m.Title) + "\n\n" + strings.TrimSpace(m.Summary))
		if primary != "" {
			chunks = append(chunks, models.Chunk{
				ID:        m.ID + "_primary",
				MentionID: m.ID,
				Type:      "primary",
				Text:      primary,
				Metadata:  meta,
			})
		}
		if strings.TrimSpace(m.Content) != "" {
			chunks = append(chunks, models.Chunk{
				ID:        m.ID + "_content",
				MentionID: m.ID,
				Type:      "content",
				Text:      m.Content,
				Metadata:  meta,
			})
		}
	}
	return chunks
}
