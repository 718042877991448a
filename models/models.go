package models

import (
	"errors"
	"strings"
	"time"
)

// ErrMentionNotFound is returned when a mention cannot be located by id.
var ErrMentionNotFound = errors.New("mention not found")

// ChannelType categorises the publication channel of a mention.
type ChannelType string

const (
	ChannelNews     ChannelType = "news"
	ChannelOfficial ChannelType = "official"
	ChannelSocial   ChannelType = "social"
	ChannelUnknown  ChannelType = "unknown"
)

// ParseChannelType maps a raw channel string onto a known ChannelType.
// Unrecognised values collapse to ChannelUnknown rather than erroring.
func ParseChannelType(s string) ChannelType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "news", "media", "press":
		return ChannelNews
	case "official", "blog", "announcement":
		return ChannelOfficial
	case "social", "twitter", "x", "telegram", "discord", "reddit":
		return ChannelSocial
	default:
		return ChannelUnknown
	}
}

// Mention is a single piece of text about the protocol, as delivered by the
// upstream mentions feed. PublishedAt is nil when the feed did not carry a
// usable timestamp.
type Mention struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	Content     string      `json:"content"`
	URL         string      `json:"url"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
	ChannelName string      `json:"channel_name"`
	ChannelType ChannelType `json:"channel_type"`
	SourceName  string      `json:"source_name"`
	Tokens      []string    `json:"tokens,omitempty"`
}

// Chunk is the unit written to the vector index. A mention produces a
// primary chunk (title + summary) and, when body text exists, a content
// chunk. Both carry the full mention metadata so hits are self-describing.
type Chunk struct {
	ID        string
	MentionID string
	Type      string // "primary" or "content"
	Text      string
	Metadata  ChunkMetadata
}

// ChunkMetadata is the attribute set stored alongside each vector.
type ChunkMetadata struct {
	Title       string
	URL         string
	PublishedAt string // RFC3339, empty when unknown
	ChannelName string
	ChannelType string
	SourceName  string
	Tokens      []string
}
