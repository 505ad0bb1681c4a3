package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIConfig configures the OpenAI-backed collaborators.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

// DefaultOpenAIConfig returns default model choices.
func DefaultOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
	}
}

// OpenAIClient implements Completer and Embedder against the OpenAI API.
type OpenAIClient struct {
	client *openai.Client
	config *OpenAIConfig
	logger *logrus.Logger
	dim    int
}

// NewOpenAIClient creates an OpenAI client. A missing API key is a fatal
// configuration error.
func NewOpenAIClient(config *OpenAIConfig, logger *logrus.Logger) (*OpenAIClient, error) {
	if config == nil {
		config = DefaultOpenAIConfig()
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = "text-embedding-3-small"
	}
	if logger == nil {
		logger = logrus.New()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	dim := 1536
	if config.EmbeddingModel == "text-embedding-3-large" {
		dim = 3072
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
		dim:    dim,
	}, nil
}

// Complete sends a single-turn chat completion with temperature 0.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// EmbedQuery generates an embedding for a single query string.
func (c *OpenAIClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if query == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	vectors, err := c.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Embed generates embeddings for a batch of texts.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.config.EmbeddingModel),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		copy(v, d.Embedding)
		l2normalize(v)
		vectors[i] = v
	}
	return vectors, nil
}

// Dimension returns the embedding dimension.
func (c *OpenAIClient) Dimension() int {
	return c.dim
}

// l2normalize normalizes a vector to unit length, which keeps cosine
// similarity well behaved in the index.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
