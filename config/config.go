package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the mention search service.
type Config struct {
	General     GeneralConfig     `mapstructure:"general"`
	Server      ServerConfig      `mapstructure:"server"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Rerank      RerankConfig      `mapstructure:"rerank"`
	Search      SearchConfig      `mapstructure:"search"`
	Storage     StorageConfig     `mapstructure:"storage"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// EmbeddingConfig contains embedding provider settings.
type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider"` // only "openai" today
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BatchSize int           `mapstructure:"batch_size"`
	Dims      int           `mapstructure:"dims"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func (c EmbeddingConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("embedding.api_key required (or HYPERSCOUT_EMBEDDING_API_KEY)")
	}
	if c.BatchSize <= 0 || c.BatchSize > 2048 {
		return fmt.Errorf("embedding.batch_size must be in (0,2048], got %d", c.BatchSize)
	}
	return nil
}

// VectorStoreConfig contains the Turbopuffer namespace settings.
type VectorStoreConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Namespace string        `mapstructure:"namespace"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
}

func (c VectorStoreConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("vector_store.api_key required (or HYPERSCOUT_VECTOR_STORE_API_KEY)")
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return errors.New("vector_store.namespace required")
	}
	return nil
}

// RerankConfig contains the Cohere rerank service settings.
type RerankConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BaseDelay      time.Duration `mapstructure:"base_delay"`
	RelevanceFloor float64       `mapstructure:"relevance_floor"`
	MaxDocChars    int           `mapstructure:"max_doc_chars"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func (c RerankConfig) Validate() error {
	if c.RelevanceFloor < 0 || c.RelevanceFloor > 1 {
		return fmt.Errorf("rerank.relevance_floor must be in [0,1], got %v", c.RelevanceFloor)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("rerank.max_attempts must be > 0, got %d", c.MaxAttempts)
	}
	return nil
}

// SearchConfig contains ranking weights and fan-out settings.
type SearchConfig struct {
	Weights     WeightsConfig `mapstructure:"weights"`
	VariantTopK int           `mapstructure:"variant_top_k"`
	MaxVariants int           `mapstructure:"max_variants"`
	HistorySize int           `mapstructure:"history_size"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// WeightsConfig holds the hybrid score weights. They must be non-negative
// and need not sum to one.
type WeightsConfig struct {
	Relevance  float64 `mapstructure:"relevance"`
	Recency    float64 `mapstructure:"recency"`
	Importance float64 `mapstructure:"importance"`
}

func (c SearchConfig) Validate() error {
	if c.Weights.Relevance < 0 || c.Weights.Recency < 0 || c.Weights.Importance < 0 {
		return errors.New("search.weights must be non-negative")
	}
	if c.VariantTopK <= 0 || c.VariantTopK > 50 {
		return fmt.Errorf("search.variant_top_k must be in [1,50], got %d", c.VariantTopK)
	}
	if c.MaxVariants < 0 || c.MaxVariants > 4 {
		return fmt.Errorf("search.max_variants must be in [0,4], got %d", c.MaxVariants)
	}
	return nil
}

// StorageConfig contains optional storage settings.
type StorageConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings. Leaving host empty
// disables the search-response cache.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a Redis cache is configured at all.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Host) != "" }

func (r RedisConfig) Validate() error {
	if !r.Enabled() {
		return nil
	}
	if strings.TrimSpace(r.Port) == "" {
		return errors.New("storage.redis.port required when host is set")
	}
	return nil
}

// LoadConfig loads config from file. An absent config file is not fatal:
// defaults plus HYPERSCOUT_* environment variables are enough to run.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.default_timeout", 30*time.Second)
	viper.SetDefault("server.address", ":10020")
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.batch_size", 100)
	viper.SetDefault("embedding.dims", 1536)
	viper.SetDefault("embedding.timeout", 30*time.Second)
	viper.SetDefault("vector_store.base_url", "https://api.turbopuffer.com")
	viper.SetDefault("vector_store.namespace", "hyperliquid-mentions")
	viper.SetDefault("vector_store.timeout", 20*time.Second)
	viper.SetDefault("vector_store.retries", 2)
	viper.SetDefault("rerank.base_url", "https://api.cohere.com")
	viper.SetDefault("rerank.model", "rerank-english-v3.0")
	viper.SetDefault("rerank.max_attempts", 3)
	viper.SetDefault("rerank.base_delay", 500*time.Millisecond)
	viper.SetDefault("rerank.relevance_floor", 0.1)
	viper.SetDefault("rerank.max_doc_chars", 1000)
	viper.SetDefault("rerank.timeout", 30*time.Second)
	viper.SetDefault("search.weights.relevance", 0.5)
	viper.SetDefault("search.weights.recency", 0.3)
	viper.SetDefault("search.weights.importance", 0.2)
	viper.SetDefault("search.variant_top_k", 8)
	viper.SetDefault("search.max_variants", 3)
	viper.SetDefault("search.history_size", 100)
	viper.SetDefault("search.cache_ttl", 5*time.Minute)
	viper.SetDefault("storage.redis.timeout", 5*time.Second)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("HYPERSCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Search.Validate(); err != nil {
		panic(err)
	}
	if err := config.Rerank.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Redis.Validate(); err != nil {
		panic(err)
	}
	return &config
}
