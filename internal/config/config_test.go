package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Load()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Cohere.APIKey = "co-test"
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6333, cfg.Qdrant.Port)
	assert.Equal(t, "multi_doc_rag", cfg.Qdrant.Collection)
	assert.Equal(t, 30*time.Second, cfg.Qdrant.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, "rerank-english-v3.0", cfg.Cohere.Model)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 3, cfg.Pipeline.EntityTopK)
	assert.Equal(t, 20, cfg.Pipeline.CandidateLimit)
	assert.Equal(t, 1500, cfg.Pipeline.MaxSnippetLen)
	assert.True(t, cfg.Pipeline.SafetyEnabled)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 200, cfg.Ingest.ChunkOverlap)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("QDRANT_PORT", "7333")
	t.Setenv("SAFETY_ENABLED", "false")
	t.Setenv("QDRANT_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, 7333, cfg.Qdrant.Port)
	assert.False(t, cfg.Pipeline.SafetyEnabled)
	assert.Equal(t, 5*time.Second, cfg.Qdrant.Timeout)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("QDRANT_PORT", "not-a-number")
	t.Setenv("SAFETY_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 6333, cfg.Qdrant.Port)
	assert.True(t, cfg.Pipeline.SafetyEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing openai key", func(c *Config) { c.OpenAI.APIKey = "" }, "OPENAI_API_KEY"},
		{"missing cohere key", func(c *Config) { c.Cohere.APIKey = "" }, "COHERE_API_KEY"},
		{"empty qdrant host", func(c *Config) { c.Qdrant.Host = "" }, "QDRANT_HOST"},
		{"bad qdrant port", func(c *Config) { c.Qdrant.Port = 0 }, "QDRANT_PORT"},
		{"zero top k", func(c *Config) { c.Pipeline.TopK = 0 }, "PIPELINE_TOP_K"},
		{"overlap exceeds size", func(c *Config) { c.Ingest.ChunkOverlap = 1000 }, "INGEST_CHUNK_OVERLAP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}
