// Package ingest loads documents, splits them into overlapping chunks and
// indexes the chunks into the vector collection.
package ingest

import (
	"fmt"
	"strings"
)

// Chunk is one indexable piece of a document.
type Chunk struct {
	ChunkID  string `json:"chunk_id"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
	Index    int    `json:"chunk_index"`
}

// ChunkerConfig configures chunking behavior.
type ChunkerConfig struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

// DefaultChunkerConfig returns default chunker configuration.
func DefaultChunkerConfig() *ChunkerConfig {
	return &ChunkerConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// Chunker splits document text into fixed-size character chunks with overlap,
// preferring to break at paragraph then sentence boundaries.
type Chunker struct {
	config *ChunkerConfig
}

// NewChunker creates a chunker. Invalid settings fall back to defaults.
func NewChunker(config *ChunkerConfig) *Chunker {
	if config == nil || config.ChunkSize <= 0 || config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		config = DefaultChunkerConfig()
	}
	return &Chunker{config: config}
}

// Chunk splits text into chunks, assigning ids of the form <doc>-c<N>.
func (c *Chunker) Chunk(docName, text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := start + c.config.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}

		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			chunks = append(chunks, Chunk{
				ChunkID:  fmt.Sprintf("%s-c%d", docName, len(chunks)),
				Text:     piece,
				Filename: docName,
				Index:    len(chunks),
			})
		}

		if end == len(text) {
			break
		}
		next := end - c.config.ChunkOverlap
		// Overlap must never move the window backwards.
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// breakPoint searches backwards from the size limit for a paragraph break,
// then a sentence break. The window never shrinks below half the chunk size.
func (c *Chunker) breakPoint(text string, start, end int) int {
	floor := start + c.config.ChunkSize/2

	if i := strings.LastIndex(text[floor:end], "\n\n"); i >= 0 {
		return floor + i + 2
	}
	if i := strings.LastIndex(text[floor:end], ". "); i >= 0 {
		return floor + i + 2
	}
	return end
}
