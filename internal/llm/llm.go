// Package llm wraps the language-model collaborators used by the pipeline:
// deterministic-preferring text completion and query/document embeddings.
package llm

import "context"

// Completer produces a text completion for a prompt. Implementations should
// prefer deterministic output (temperature 0) since callers parse the result
// as structured JSON.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder generates vector embeddings.
type Embedder interface {
	// EmbedQuery generates an embedding for a single query string.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	// Embed generates embeddings for a batch of texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the embedding dimension.
	Dimension() int
}
