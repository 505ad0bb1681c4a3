package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
)

func testRouter() *Router {
	completer := &scriptedCompleter{
		safety:    `{"is_safe": true}`,
		classify:  `{"query_type": "factual", "entities": [], "requires_calculation": false}`,
		synthesis: `{"answer": "a", "citations": [], "confidence_score": 0.8, "has_sufficient_context": true}`,
	}
	logger := quietLogger()
	return NewRouter(
		NewQueryHandler(testPipeline(completer, nil), true, logger),
		NewIngestHandler(&mockIndexer{}, logger),
		NewHealthHandler(&mockIndexHealth{}),
		metrics.NewCollector(),
		logger,
	)
}

func TestRouterRoutes(t *testing.T) {
	engine := testRouter().Engine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterAssignsRequestID(t *testing.T) {
	engine := testRouter().Engine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterPropagatesRequestID(t *testing.T) {
	engine := testRouter().Engine()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
