package qdrant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, 6333, config.HTTPPort)
	assert.Empty(t, config.APIKey)
	assert.False(t, config.UseTLS)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, "multi_doc_rag", config.Collection)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid default config",
			modify:      func(c *Config) {},
			expectError: false,
		},
		{
			name: "empty host",
			modify: func(c *Config) {
				c.Host = ""
			},
			expectError: true,
			errorMsg:    "host is required",
		},
		{
			name: "invalid http port",
			modify: func(c *Config) {
				c.HTTPPort = 0
			},
			expectError: true,
			errorMsg:    "http_port must be between 1 and 65535",
		},
		{
			name: "port too large",
			modify: func(c *Config) {
				c.HTTPPort = 70000
			},
			expectError: true,
			errorMsg:    "http_port must be between 1 and 65535",
		},
		{
			name: "zero timeout",
			modify: func(c *Config) {
				c.Timeout = 0
			},
			expectError: true,
			errorMsg:    "timeout must be positive",
		},
		{
			name: "empty collection",
			modify: func(c *Config) {
				c.Collection = ""
			},
			expectError: true,
			errorMsg:    "collection is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigGetHTTPURL(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "http://localhost:6333", config.GetHTTPURL())

	config.UseTLS = true
	config.Host = "qdrant.internal"
	config.HTTPPort = 443
	assert.Equal(t, "https://qdrant.internal:443", config.GetHTTPURL())
}
