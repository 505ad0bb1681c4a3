package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/vectordb/qdrant"
)

// Store is the vector index surface the indexer writes to.
type Store interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, config *qdrant.CollectionConfig) error
	UpsertPoints(ctx context.Context, collection string, points []qdrant.Point) error
}

// Embedder batch-embeds chunk texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Result summarizes one indexed document.
type Result struct {
	Document   string `json:"document"`
	ChunkCount int    `json:"chunk_count"`
}

// Indexer chunks documents, embeds the chunks and upserts them.
type Indexer struct {
	store      Store
	embedder   Embedder
	chunker    *Chunker
	collection string
	logger     *logrus.Logger
}

// NewIndexer creates a document indexer.
func NewIndexer(store Store, embedder Embedder, chunker *Chunker, collection string, logger *logrus.Logger) *Indexer {
	if chunker == nil {
		chunker = NewChunker(nil)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Indexer{
		store:      store,
		embedder:   embedder,
		chunker:    chunker,
		collection: collection,
		logger:     logger,
	}
}

// EnsureCollection creates the collection if it does not exist, sized to the
// embedder's vector dimension with cosine distance.
func (i *Indexer) EnsureCollection(ctx context.Context) error {
	exists, err := i.store.CollectionExists(ctx, i.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", i.collection, err)
	}
	if exists {
		return nil
	}

	return i.store.CreateCollection(ctx, &qdrant.CollectionConfig{
		Name:       i.collection,
		VectorSize: i.embedder.Dimension(),
		Distance:   qdrant.DistanceCosine,
	})
}

// IndexDocument chunks, embeds and upserts one document. Every chunk carries
// the payload shape retrieval normalizes: chunk_id, text, filename,
// chunk_index.
func (i *Indexer) IndexDocument(ctx context.Context, doc *Document) (*Result, error) {
	chunks := i.chunker.Chunk(doc.Name, doc.Text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s produced no chunks", doc.Name)
	}

	texts := make([]string, len(chunks))
	for n, chunk := range chunks {
		texts[n] = chunk.Text
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed document %s: %w", doc.Name, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	points := make([]qdrant.Point, len(chunks))
	for n, chunk := range chunks {
		points[n] = qdrant.Point{
			ID:     uuid.NewString(),
			Vector: vectors[n],
			Payload: map[string]interface{}{
				"chunk_id":    chunk.ChunkID,
				"text":        chunk.Text,
				"filename":    chunk.Filename,
				"chunk_index": chunk.Index,
			},
		}
	}

	if err := i.store.UpsertPoints(ctx, i.collection, points); err != nil {
		return nil, fmt.Errorf("failed to upsert document %s: %w", doc.Name, err)
	}

	i.logger.WithFields(logrus.Fields{
		"document": doc.Name,
		"chunks":   len(chunks),
	}).Info("Indexed document")

	return &Result{Document: doc.Name, ChunkCount: len(chunks)}, nil
}
