// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigError marks a fatal configuration problem. The server refuses to
// start on one; nothing is deferred to first use.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

type Config struct {
	Server   ServerConfig
	Qdrant   QdrantConfig
	OpenAI   OpenAIConfig
	Cohere   CohereConfig
	Pipeline PipelineConfig
	Ingest   IngestConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Mode         string // "debug" or "release"
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     string
}

type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Timeout    time.Duration
	Collection string
}

type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

type CohereConfig struct {
	APIKey string
	Model  string
}

type PipelineConfig struct {
	TopK           int
	EntityTopK     int
	MaxEntities    int
	CandidateLimit int
	MaxSnippetLen  int
	SafetyEnabled  bool
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Load reads configuration from the environment with defaults for local
// development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "8000"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getDurationEnv("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("WRITE_TIMEOUT", 120*time.Second),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
		},
		Qdrant: QdrantConfig{
			Host:       getEnv("QDRANT_HOST", "localhost"),
			Port:       getIntEnv("QDRANT_PORT", 6333),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			UseTLS:     getBoolEnv("QDRANT_USE_TLS", false),
			Timeout:    getDurationEnv("QDRANT_TIMEOUT", 30*time.Second),
			Collection: getEnv("QDRANT_COLLECTION", "multi_doc_rag"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Cohere: CohereConfig{
			APIKey: getEnv("COHERE_API_KEY", ""),
			Model:  getEnv("COHERE_RERANK_MODEL", "rerank-english-v3.0"),
		},
		Pipeline: PipelineConfig{
			TopK:           getIntEnv("PIPELINE_TOP_K", 5),
			EntityTopK:     getIntEnv("PIPELINE_ENTITY_TOP_K", 3),
			MaxEntities:    getIntEnv("PIPELINE_MAX_ENTITIES", 3),
			CandidateLimit: getIntEnv("RETRIEVAL_CANDIDATE_LIMIT", 20),
			MaxSnippetLen:  getIntEnv("RETRIEVAL_MAX_SNIPPET_LEN", 1500),
			SafetyEnabled:  getBoolEnv("SAFETY_ENABLED", true),
		},
		Ingest: IngestConfig{
			ChunkSize:    getIntEnv("INGEST_CHUNK_SIZE", 1000),
			ChunkOverlap: getIntEnv("INGEST_CHUNK_OVERLAP", 200),
		},
	}
}

// Validate checks the settings the server cannot run without. Returns a
// *ConfigError describing the first problem found.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return &ConfigError{Field: "OPENAI_API_KEY", Reason: "must be set"}
	}
	if c.Cohere.APIKey == "" {
		return &ConfigError{Field: "COHERE_API_KEY", Reason: "must be set"}
	}
	if c.Qdrant.Host == "" {
		return &ConfigError{Field: "QDRANT_HOST", Reason: "must not be empty"}
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return &ConfigError{Field: "QDRANT_PORT", Reason: "must be a valid port"}
	}
	if c.Pipeline.TopK <= 0 {
		return &ConfigError{Field: "PIPELINE_TOP_K", Reason: "must be positive"}
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return &ConfigError{Field: "INGEST_CHUNK_OVERLAP", Reason: "must be smaller than chunk size"}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
