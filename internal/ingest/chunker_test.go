package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChunkerConfig(t *testing.T) {
	config := DefaultChunkerConfig()
	assert.Equal(t, 1000, config.ChunkSize)
	assert.Equal(t, 200, config.ChunkOverlap)
}

func TestNewChunkerRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *ChunkerConfig
	}{
		{"nil", nil},
		{"zero size", &ChunkerConfig{ChunkSize: 0, ChunkOverlap: 0}},
		{"negative overlap", &ChunkerConfig{ChunkSize: 100, ChunkOverlap: -1}},
		{"overlap equals size", &ChunkerConfig{ChunkSize: 100, ChunkOverlap: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunker := NewChunker(tt.config)
			assert.Equal(t, 1000, chunker.config.ChunkSize)
		})
	}
}

func TestChunkShortDocument(t *testing.T) {
	chunker := NewChunker(nil)

	chunks := chunker.Chunk("report", "A short document.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "report-c0", chunks[0].ChunkID)
	assert.Equal(t, "A short document.", chunks[0].Text)
	assert.Equal(t, "report", chunks[0].Filename)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunkEmptyDocument(t *testing.T) {
	chunker := NewChunker(nil)
	assert.Nil(t, chunker.Chunk("report", "   \n\t  "))
}

func TestChunkIDsAndIndexesAreSequential(t *testing.T) {
	chunker := NewChunker(&ChunkerConfig{ChunkSize: 50, ChunkOverlap: 10})

	text := strings.Repeat("some words in a sentence. ", 20)
	chunks := chunker.Chunk("doc", text)

	require.Greater(t, len(chunks), 2)
	for i, chunk := range chunks {
		assert.Equal(t, fmt.Sprintf("doc-c%d", i), chunk.ChunkID)
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, "doc", chunk.Filename)
	}
}

func TestChunkRespectsSizeLimit(t *testing.T) {
	chunker := NewChunker(&ChunkerConfig{ChunkSize: 100, ChunkOverlap: 20})

	text := strings.Repeat("abcdefghij", 100)
	chunks := chunker.Chunk("doc", text)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 100)
	}
}

func TestChunkOverlapCoversWholeText(t *testing.T) {
	chunker := NewChunker(&ChunkerConfig{ChunkSize: 100, ChunkOverlap: 20})

	text := strings.Repeat("x", 95) + "MARKER" + strings.Repeat("y", 95)
	chunks := chunker.Chunk("doc", text)

	// The marker straddles the first window boundary; the overlap guarantees
	// some chunk still contains it whole.
	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk.Text, "MARKER") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestChunkPrefersParagraphBreak(t *testing.T) {
	chunker := NewChunker(&ChunkerConfig{ChunkSize: 100, ChunkOverlap: 10})

	text := strings.Repeat("a", 70) + "\n\n" + strings.Repeat("b", 100)
	chunks := chunker.Chunk("doc", text)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.Repeat("a", 70), chunks[0].Text)
}

func TestChunkPrefersSentenceBreak(t *testing.T) {
	chunker := NewChunker(&ChunkerConfig{ChunkSize: 100, ChunkOverlap: 10})

	text := strings.Repeat("a", 70) + ". " + strings.Repeat("b", 100)
	chunks := chunker.Chunk("doc", text)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.Repeat("a", 70)+".", chunks[0].Text)
}
