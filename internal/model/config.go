package model

import "time"

// Config is the complete runtime configuration, explicitly constructed and
// passed down; no package keeps global state.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Index       IndexConfig       `yaml:"index"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Clauses     ClauseConfig      `yaml:"clauses"`
	Trust       TrustConfig       `yaml:"trust"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// HTTPConfig controls document fetching.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots"`
	RatePerHost   float64       `yaml:"rate_per_host"` // Requests per second per host
	RateBurst     int           `yaml:"rate_burst"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty"`
}

// LLMConfig selects and tunes the generative collaborator.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "gemini", "openai", "ollama"
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"-"` // Environment only, never persisted
	BaseURL     string  `yaml:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout"` // Seconds
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// EmbeddingConfig selects the embedding collaborator.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"`
}

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	Backend     string `yaml:"backend"` // "memory" or "postgres"
	PostgresURL string `yaml:"postgres_url,omitempty"`
	Table       string `yaml:"table,omitempty"`
}

// ChunkingConfig controls document segmentation. Overlap must be smaller
// than Size; the chunker enforces this at construction.
type ChunkingConfig struct {
	Size    int `yaml:"size"`    // Words per chunk
	Overlap int `yaml:"overlap"` // Words shared between consecutive chunks
}

// RetrievalConfig controls candidate selection per question.
type RetrievalConfig struct {
	ShortlistK       int     `yaml:"shortlist_k"`
	TopK             int     `yaml:"top_k"`
	MinCombinedScore float64 `yaml:"min_combined_score"`
}

// ClauseConfig controls clause matching.
type ClauseConfig struct {
	TopK         int     `yaml:"top_k"`
	MinRelevance float64 `yaml:"min_relevance"`
}

// TrustConfig maps document sources to trust weights. Known (public)
// sources carry a lower weight than unknown (private) ones.
type TrustConfig struct {
	KnownDomains          []string `yaml:"known_domains"`
	KnownDocumentWeight   float64  `yaml:"known_document_weight"`
	UnknownDocumentWeight float64  `yaml:"unknown_document_weight"`
	DefaultQuestionWeight float64  `yaml:"default_question_weight"`
}

// CacheConfig controls the layered fetch/embedding cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig bounds the fan-out width of each parallel stage.
type ConcurrencyConfig struct {
	DocumentWorkers int `yaml:"document_workers"`
	QuestionWorkers int `yaml:"question_workers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       60 * time.Second,
			UserAgent:     "policyq/0.1 (+https://github.com/Vaibhav-Uniyal/policyq)",
			MaxBodyBytes:  10 * 1024 * 1024,
			RespectRobots: false,
			RatePerHost:   4,
			RateBurst:     5,
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Timeout:     30,
			MaxTokens:   2000,
			Temperature: 0.1,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			Timeout:   30,
		},
		Index: IndexConfig{
			Backend: "memory",
			Table:   "policyq_chunks",
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalConfig{
			ShortlistK:       10,
			TopK:             5,
			MinCombinedScore: 0.3,
		},
		Clauses: ClauseConfig{
			TopK:         3,
			MinRelevance: 0.5,
		},
		Trust: TrustConfig{
			KnownDomains: []string{
				"hackrx.blob.core.windows.net",
				"public.policy.com",
				"insurance.gov",
				"localhost",
			},
			KnownDocumentWeight:   0.5,
			UnknownDocumentWeight: 2.0,
			DefaultQuestionWeight: 1.0,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			DocumentWorkers: 5,
			QuestionWorkers: 5,
		},
	}
}
