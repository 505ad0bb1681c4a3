// Package qdrant provides an HTTP client for the Qdrant vector database,
// covering the operations the retrieval pipeline needs: vector search,
// full-text scroll, point counts and ingestion upserts.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
)

// Client provides an interface to interact with Qdrant. It is safe for
// concurrent use by many in-flight requests; one instance is constructed at
// startup and shared process-wide.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logrus.Logger
	mu         sync.RWMutex
	connected  bool
}

// NewClient creates a new Qdrant client. An invalid configuration is a fatal
// error surfaced here rather than deferred to the first query.
func NewClient(config *Config, logger *logrus.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Connect verifies connectivity to Qdrant.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.healthCheckLocked(ctx); err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	c.connected = true
	c.logger.WithField("url", c.config.GetHTTPURL()).Info("Connected to Qdrant")
	return nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// HealthCheck checks the health of Qdrant.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthCheckLocked(ctx)
}

func (c *Client) healthCheckLocked(ctx context.Context) error {
	// The root endpoint works across Qdrant versions; 1.16+ dropped /health.
	url := c.config.GetHTTPURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.APIKey != "" {
		req.Header.Set("api-key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	url := fmt.Sprintf("%s%s", c.config.GetHTTPURL(), path)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("api-key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Distance metrics supported for collections.
const (
	DistanceCosine = "Cosine"
	DistanceDot    = "Dot"
	DistanceEuclid = "Euclid"
)

// CollectionConfig describes a collection to create.
type CollectionConfig struct {
	Name       string `json:"name"`
	VectorSize int    `json:"vector_size"`
	Distance   string `json:"distance"`
}

// CreateCollection creates a new collection.
func (c *Client) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	if config == nil || config.Name == "" {
		return fmt.Errorf("collection name is required")
	}
	distance := config.Distance
	if distance == "" {
		distance = DistanceCosine
	}

	reqBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     config.VectorSize,
			"distance": distance,
		},
	}

	path := fmt.Sprintf("/collections/%s", config.Name)
	if _, err := c.doRequest(ctx, http.MethodPut, path, reqBody); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	c.logger.WithField("collection", config.Name).Info("Created Qdrant collection")
	return nil
}

// CollectionExists checks if a collection exists.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	path := fmt.Sprintf("/collections/%s/exists", name)
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}

	var response struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}

	return response.Result.Exists, nil
}

// Point represents a point to upsert.
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ScoredPoint represents a search hit.
type ScoredPoint struct {
	ID      interface{}            `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// UpsertPoints inserts or updates points in a collection.
func (c *Client) UpsertPoints(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	reqBody := map[string]interface{}{
		"points": points,
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", collection)
	if _, err := c.doRequest(ctx, http.MethodPut, path, reqBody); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"collection": collection,
		"count":      len(points),
	}).Debug("Upserted points")
	return nil
}

// SearchOptions configures a vector search.
type SearchOptions struct {
	Limit          int
	ScoreThreshold float32
	WithPayload    bool
	Filter         map[string]interface{}
}

// Search performs a vector similarity search.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, opts *SearchOptions) ([]ScoredPoint, error) {
	if opts == nil {
		opts = &SearchOptions{Limit: 10, WithPayload: true}
	}

	reqBody := map[string]interface{}{
		"vector":       vector,
		"limit":        opts.Limit,
		"with_payload": opts.WithPayload,
	}

	if opts.ScoreThreshold > 0 {
		reqBody["score_threshold"] = opts.ScoreThreshold
	}
	if opts.Filter != nil {
		reqBody["filter"] = opts.Filter
	}

	path := fmt.Sprintf("/collections/%s/points/search", collection)
	respBody, err := c.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var response struct {
		Result []ScoredPoint `json:"result"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return response.Result, nil
}

// TextMatchFilter builds a full-text match filter on the given payload field.
func TextMatchFilter(field, text string) map[string]interface{} {
	return map[string]interface{}{
		"must": []map[string]interface{}{
			{
				"key":   field,
				"match": map[string]interface{}{"text": text},
			},
		},
	}
}

// Scroll pages through points matching an optional filter, without vectors.
func (c *Client) Scroll(ctx context.Context, collection string, limit int, filter map[string]interface{}) ([]ScoredPoint, error) {
	reqBody := map[string]interface{}{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}

	if filter != nil {
		reqBody["filter"] = filter
	}

	path := fmt.Sprintf("/collections/%s/points/scroll", collection)
	respBody, err := c.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to scroll points: %w", err)
	}

	var response struct {
		Result struct {
			Points []struct {
				ID      interface{}            `json:"id"`
				Payload map[string]interface{} `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	points := make([]ScoredPoint, len(response.Result.Points))
	for i, r := range response.Result.Points {
		points[i] = ScoredPoint{
			ID:      r.ID,
			Payload: r.Payload,
		}
	}

	return points, nil
}

// CountPoints returns the number of points in a collection.
func (c *Client) CountPoints(ctx context.Context, collection string) (int64, error) {
	reqBody := map[string]interface{}{
		"exact": true,
	}

	path := fmt.Sprintf("/collections/%s/points/count", collection)
	respBody, err := c.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}

	var response struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	return response.Result.Count, nil
}
