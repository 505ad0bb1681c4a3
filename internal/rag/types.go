// Package rag implements hybrid (vector + keyword) retrieval over a Qdrant
// collection with rerank-based fusion.
package rag

import (
	"context"

	"github.com/sabiqmohd/agentic-retrieval/internal/vectordb/qdrant"
)

// RetrievedChunk is one retrieval result handed to the answer synthesizer.
// Content is already truncated to the configured snippet bound.
type RetrievedChunk struct {
	Document       string  `json:"document"`
	ChunkID        string  `json:"chunk_id"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Index is the subset of the Qdrant client the retriever depends on.
type Index interface {
	Search(ctx context.Context, collection string, vector []float32, opts *qdrant.SearchOptions) ([]qdrant.ScoredPoint, error)
	Scroll(ctx context.Context, collection string, limit int, filter map[string]interface{}) ([]qdrant.ScoredPoint, error)
	CountPoints(ctx context.Context, collection string) (int64, error)
}

// QueryEmbedder embeds a query string for the semantic branch.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// RankedDocument is one entry of a reranker response, referring back into the
// submitted document list by index.
type RankedDocument struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Reranker scores candidate documents against a query.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RankedDocument, error)
}
