package qdrant

import (
	"fmt"
	"time"
)

// Config holds Qdrant connection settings.
type Config struct {
	Host       string        `json:"host"`
	HTTPPort   int           `json:"http_port"`
	APIKey     string        `json:"api_key"`
	UseTLS     bool          `json:"use_tls"`
	Timeout    time.Duration `json:"timeout"`
	Collection string        `json:"collection"`
}

// DefaultConfig returns default Qdrant configuration for a local instance.
func DefaultConfig() *Config {
	return &Config{
		Host:       "localhost",
		HTTPPort:   6333,
		UseTLS:     false,
		Timeout:    30 * time.Second,
		Collection: "multi_doc_rag",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	return nil
}

// GetHTTPURL builds the base URL for HTTP requests.
func (c *Config) GetHTTPURL() string {
	scheme := "http"
	if c.UseTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.HTTPPort)
}
