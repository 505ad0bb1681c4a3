package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
)

// Router wires the HTTP surface.
type Router struct {
	query     *QueryHandler
	ingest    *IngestHandler
	health    *HealthHandler
	collector *metrics.Collector
	logger    *logrus.Logger
}

// NewRouter creates the router.
func NewRouter(query *QueryHandler, ingestHandler *IngestHandler, health *HealthHandler, collector *metrics.Collector, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	return &Router{
		query:     query,
		ingest:    ingestHandler,
		health:    health,
		collector: collector,
		logger:    logger,
	}
}

// Engine builds the gin engine with middleware and routes registered.
func (r *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(r.requestID())
	engine.Use(r.requestLogging())

	engine.GET("/health", r.health.Health)
	if r.collector != nil {
		engine.GET("/metrics", gin.WrapH(r.collector.Handler()))
	}

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/query", r.query.Query)
		v1.POST("/ingest", r.ingest.Ingest)
	}

	return engine
}

func (r *Router) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (r *Router) requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		if r.collector != nil {
			r.collector.RequestDuration.
				WithLabelValues(c.Request.Method, c.FullPath(), strconv.Itoa(status)).
				Observe(elapsed.Seconds())
		}

		r.logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"duration":   elapsed.String(),
		}).Info("Request completed")
	}
}
