package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultCohereEndpoint = "https://api.cohere.ai/v1/rerank"

// CohereReranker scores candidates with Cohere's rerank API.
type CohereReranker struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewCohereReranker creates a Cohere reranker.
func NewCohereReranker(apiKey, model string, logger *logrus.Logger) *CohereReranker {
	if model == "" {
		model = "rerank-english-v3.0"
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &CohereReranker{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultCohereEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SetEndpoint overrides the API endpoint. Used in tests.
func (r *CohereReranker) SetEndpoint(endpoint string) {
	r.endpoint = endpoint
}

// Rerank submits the candidate documents with the query and returns the
// top-n ordering.
func (r *CohereReranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RankedDocument, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	reqBody := map[string]interface{}{
		"model":            r.model,
		"query":            query,
		"documents":        documents,
		"top_n":            topN,
		"return_documents": false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Cohere returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Results []RankedDocument `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, doc := range response.Results {
		if doc.Index < 0 || doc.Index >= len(documents) {
			return nil, fmt.Errorf("rerank index %d out of range", doc.Index)
		}
	}

	return response.Results, nil
}
