package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/ingest"
)

// DocumentIndexer is the ingestion surface the handler depends on.
type DocumentIndexer interface {
	EnsureCollection(ctx context.Context) error
	IndexDocument(ctx context.Context, doc *ingest.Document) (*ingest.Result, error)
}

// IngestHandler handles document upload requests.
type IngestHandler struct {
	indexer DocumentIndexer
	logger  *logrus.Logger
}

// NewIngestHandler creates an ingestion handler.
func NewIngestHandler(indexer DocumentIndexer, logger *logrus.Logger) *IngestHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &IngestHandler{indexer: indexer, logger: logger}
}

// IngestResponse summarizes an upload.
type IngestResponse struct {
	Documents  []string `json:"document_ids"`
	ChunkCount int      `json:"chunk_count"`
	Status     string   `json:"status"`
}

// Ingest godoc
// @Summary Upload and index plain-text documents
// @Router /api/v1/ingest [post]
func (h *IngestHandler) Ingest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart form with files is required"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files provided"})
		return
	}

	if err := h.indexer.EnsureCollection(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to ensure collection")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "vector store unavailable"})
		return
	}

	var (
		documents  []string
		chunkCount int
	)
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read upload " + fileHeader.Filename})
			return
		}

		doc, err := ingest.LoadDocument(fileHeader.Filename, file)
		file.Close()
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			return
		}

		result, err := h.indexer.IndexDocument(c.Request.Context(), doc)
		if err != nil {
			h.logger.WithError(err).WithField("document", doc.Name).Error("Indexing failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to index " + doc.Name})
			return
		}

		documents = append(documents, result.Document)
		chunkCount += result.ChunkCount
	}

	c.JSON(http.StatusOK, IngestResponse{
		Documents:  documents,
		ChunkCount: chunkCount,
		Status:     "indexed",
	})
}
