// Package handlers exposes the question answering service over HTTP.
package handlers

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/agents"
)

const maxSourceSnippetLen = 500

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QueryHandler handles question answering requests.
type QueryHandler struct {
	pipeline      *agents.Pipeline
	safetyEnabled bool
	logger        *logrus.Logger
}

// NewQueryHandler creates a query handler. safetyEnabled is the service-wide
// default; requests may override it per call.
func NewQueryHandler(pipeline *agents.Pipeline, safetyEnabled bool, logger *logrus.Logger) *QueryHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &QueryHandler{pipeline: pipeline, safetyEnabled: safetyEnabled, logger: logger}
}

// QueryRequest is the question answering request body.
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
	Safety   *bool  `json:"safety,omitempty"`
}

// SourceResponse is one retrieved chunk backing the answer, truncated for
// transport.
type SourceResponse struct {
	Document       string  `json:"document"`
	ChunkID        string  `json:"chunk_id"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// QueryResponse is the question answering response body.
type QueryResponse struct {
	Answer             string            `json:"answer"`
	Sources            []SourceResponse  `json:"sources"`
	Citations          []agents.Citation `json:"citations"`
	Confidence         float64           `json:"confidence"`
	VerificationPassed bool              `json:"verification_passed"`
	QueryType          string            `json:"query_type"`
}

// truncateSnippet cuts content to at most maxLen bytes on a rune boundary,
// keeping the snippet valid UTF-8.
func truncateSnippet(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Query godoc
// @Summary Answer a question over the indexed documents
// @Router /api/v1/query [post]
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "question is required"})
		return
	}

	safety := h.safetyEnabled
	if req.Safety != nil {
		safety = *req.Safety
	}

	state := h.pipeline.Run(c.Request.Context(), req.Question, safety)

	sources := make([]SourceResponse, len(state.RetrievedChunks))
	for i, chunk := range state.RetrievedChunks {
		snippet := truncateSnippet(chunk.Content, maxSourceSnippetLen)
		sources[i] = SourceResponse{
			Document:       chunk.Document,
			ChunkID:        chunk.ChunkID,
			Snippet:        snippet,
			RelevanceScore: chunk.RelevanceScore,
		}
	}

	status := http.StatusOK
	if state.Stage == agents.StageBlocked {
		status = http.StatusForbidden
	}

	c.JSON(status, QueryResponse{
		Answer:             state.Answer,
		Sources:            sources,
		Citations:          state.Citations,
		Confidence:         state.ConfidenceScore,
		VerificationPassed: state.VerificationPassed,
		QueryType:          state.QueryType,
	})
}
