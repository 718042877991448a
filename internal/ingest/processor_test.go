package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleFeed = `{
  "mentions": [
    {
      "publication": {
        "id": "pub-1",
        "title": "HyperLiquid vault deposits surge",
        "summary": "Deposits doubled over the week.",
        "content": "Full article body about vault deposits.",
        "url": "https://example.com/vaults",
        "published_at": "2026-07-01T09:00:00Z"
      },
      "channel": {"name": "CoinDesk", "type": "news"},
      "source_entity": {"name": "CoinDesk"},
      "hyperliquid_info": {"tokens": ["HYPE"]}
    },
    {
      "publication": {
        "id": "",
        "title": "no id here"
      }
    },
    {
      "publication": {
        "id": "pub-2",
        "title": "Tweet about HYPE",
        "summary": "",
        "published_at": "not a timestamp"
      },
      "channel": {"name": "twitter", "type": "social"}
    }
  ]
}`

func TestProcessSkipsMentionsWithoutID(t *testing.T) {
	p := NewProcessor()
	mentions, err := p.Process([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions after skipping, got %d", len(mentions))
	}
	if mentions[0].ID != "pub-1" || mentions[1].ID != "pub-2" {
		t.Fatalf("unexpected mention ids: %q, %q", mentions[0].ID, mentions[1].ID)
	}
}

func TestProcessParsesFields(t *testing.T) {
	p := NewProcessor()
	mentions, err := p.Process([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := mentions[0]
	if m.PublishedAt == nil {
		t.Fatalf("expected parsed publish date")
	}
	if string(m.ChannelType) != "news" {
		t.Fatalf("unexpected channel type %q", m.ChannelType)
	}
	if len(m.Tokens) != 1 || m.Tokens[0] != "HYPE" {
		t.Fatalf("unexpected tokens %v", m.Tokens)
	}
}

func TestProcessToleratesBadTimestamp(t *testing.T) {
	p := NewProcessor()
	mentions, err := p.Process([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mentions[1].PublishedAt != nil {
		t.Fatalf("bad timestamp must leave PublishedAt nil")
	}
}

func TestProcessRejectsMalformedJSON(t *testing.T) {
	p := NewProcessor()
	if _, err := p.Process([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentions.json")
	if err := os.WriteFile(path, []byte(sampleFeed), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	p := NewProcessor()
	mentions, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(mentions))
	}

	if _, err := p.ProcessFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestChunksLayout(t *testing.T) {
	p := NewProcessor()
	mentions, err := p.Process([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := p.Chunks(mentions)
	// pub-1 yields primary+content, pub-2 only primary (empty content).
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].ID != "pub-1_primary" || chunks[0].Type != "primary" {
		t.Fatalf("unexpected first chunk: %+v", chunks[0])
	}
	if chunks[1].ID != "pub-1_content" || chunks[1].Type != "content" {
		t.Fatalf("unexpected second chunk: %+v", chunks[1])
	}
	if chunks[0].Metadata.PublishedAt == "" {
		t.Fatalf("primary chunk must carry the publish date")
	}
	if chunks[2].MentionID != "pub-2" {
		t.Fatalf("unexpected third chunk: %+v", chunks[2])
	}
}
