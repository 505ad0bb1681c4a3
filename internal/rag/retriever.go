package rag

import (
	"context"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
	"github.com/sabiqmohd/agentic-retrieval/internal/vectordb/qdrant"
)

// RetrieverConfig configures hybrid retrieval.
type RetrieverConfig struct {
	// Collection is the Qdrant collection to query.
	Collection string `json:"collection"`
	// CandidateLimit caps each branch (semantic and keyword) before fusion.
	CandidateLimit int `json:"candidate_limit"`
	// MaxSnippetLen bounds the content returned per chunk.
	MaxSnippetLen int `json:"max_snippet_len"`
}

// DefaultRetrieverConfig returns default retrieval settings.
func DefaultRetrieverConfig() *RetrieverConfig {
	return &RetrieverConfig{
		Collection:     "multi_doc_rag",
		CandidateLimit: 20,
		MaxSnippetLen:  1500,
	}
}

// HybridRetriever merges semantic and keyword candidates from the index,
// deduplicates them and delegates ordering to the reranker. It holds no
// per-request state and is safe for concurrent use.
type HybridRetriever struct {
	index     Index
	embedder  QueryEmbedder
	reranker  Reranker
	config    *RetrieverConfig
	collector *metrics.Collector
	logger    *logrus.Logger
}

// NewHybridRetriever creates a hybrid retriever. collector may be nil.
func NewHybridRetriever(index Index, embedder QueryEmbedder, reranker Reranker, config *RetrieverConfig, collector *metrics.Collector, logger *logrus.Logger) *HybridRetriever {
	if config == nil {
		config = DefaultRetrieverConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &HybridRetriever{
		index:     index,
		embedder:  embedder,
		reranker:  reranker,
		config:    config,
		collector: collector,
		logger:    logger,
	}
}

// Retrieve runs hybrid retrieval for a query. Every collaborator failure is
// absorbed here: an unreachable or empty index, a failed embedding and a
// failed rerank all degrade to an empty result set so the outer pipeline can
// continue with "no context".
func (h *HybridRetriever) Retrieve(ctx context.Context, query string, topK int) []RetrievedChunk {
	count, err := h.index.CountPoints(ctx, h.config.Collection)
	if err != nil {
		h.logger.WithError(err).WithField("collection", h.config.Collection).
			Warn("Index unreachable, returning no results")
		h.collector.CollaboratorError("index")
		return nil
	}
	if count == 0 {
		h.logger.WithField("collection", h.config.Collection).
			Warn("Collection is empty, returning no results")
		return nil
	}

	// Semantic branch.
	var semantic []qdrant.ScoredPoint
	vector, err := h.embedder.EmbedQuery(ctx, query)
	if err != nil {
		h.logger.WithError(err).Warn("Query embedding failed, skipping semantic branch")
		h.collector.CollaboratorError("embedder")
	} else {
		semantic, err = h.index.Search(ctx, h.config.Collection, vector, &qdrant.SearchOptions{
			Limit:       h.config.CandidateLimit,
			WithPayload: true,
		})
		if err != nil {
			h.logger.WithError(err).Warn("Semantic search failed")
			h.collector.CollaboratorError("index")
			semantic = nil
		}
	}

	// Keyword branch.
	keyword, err := h.index.Scroll(ctx, h.config.Collection, h.config.CandidateLimit,
		qdrant.TextMatchFilter("text", query))
	if err != nil {
		h.logger.WithError(err).Warn("Keyword search failed")
		h.collector.CollaboratorError("index")
		keyword = nil
	}

	// Fuse and deduplicate by chunk id, first seen wins. Semantic candidates
	// are fused before keyword candidates so duplicate entries cannot drift.
	var candidates []candidate
	seen := make(map[string]bool)
	for _, point := range append(semantic, keyword...) {
		c := normalizePayload(point.Payload)
		if c == nil {
			continue
		}
		if seen[c.chunkID] {
			continue
		}
		seen[c.chunkID] = true
		candidates = append(candidates, *c)
	}

	h.logger.WithFields(logrus.Fields{
		"semantic":   len(semantic),
		"keyword":    len(keyword),
		"candidates": len(candidates),
	}).Debug("Fused retrieval candidates")

	if len(candidates) == 0 {
		return nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.text
	}

	ranked, err := h.reranker.Rerank(ctx, query, documents, topK)
	if err != nil {
		// No fallback to an unranked ordering: an unranked candidate list is
		// worse than telling the synthesizer there is no context.
		h.logger.WithError(err).Warn("Reranking failed, returning no results")
		h.collector.CollaboratorError("reranker")
		return nil
	}

	results := make([]RetrievedChunk, 0, len(ranked))
	for _, doc := range ranked {
		if doc.Index < 0 || doc.Index >= len(candidates) {
			h.logger.WithField("index", doc.Index).Warn("Rerank index out of range, dropping")
			continue
		}
		c := candidates[doc.Index]
		results = append(results, RetrievedChunk{
			Document:       c.document,
			ChunkID:        c.chunkID,
			Content:        truncate(c.text, h.config.MaxSnippetLen),
			RelevanceScore: doc.RelevanceScore,
		})
	}

	return results
}

// truncate cuts s to at most maxLen bytes, backing off to a rune boundary so
// the snippet stays valid UTF-8.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
