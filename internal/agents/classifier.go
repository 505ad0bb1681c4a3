package agents

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/llm"
	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
)

const classifierPrompt = `Analyze the following user query and extract structured information.

Query: %s

Respond with a JSON object containing:
1. "query_type": One of "factual", "comparative", "summarization", "calculation"
2. "entities": List of key entities/topics to search for
3. "requires_calculation": true if the answer needs arithmetic computation

Respond ONLY with the JSON object, no additional text.`

// Classification is the structured metadata the classifier extracts from a
// query. MultiEntity is derived, not model-provided.
type Classification struct {
	QueryType           string   `json:"query_type"`
	Entities            []string `json:"entities"`
	RequiresCalculation bool     `json:"requires_calculation"`
	MultiEntity         bool     `json:"-"`
}

// defaultClassification is the documented fallback when the model response
// cannot be parsed or the model call fails.
func defaultClassification() Classification {
	return Classification{QueryType: QueryTypeFactual, Entities: []string{}}
}

// Classifier determines query intent via the language model.
type Classifier struct {
	completer llm.Completer
	collector *metrics.Collector
	logger    *logrus.Logger
}

// NewClassifier creates a query classifier. collector may be nil.
func NewClassifier(completer llm.Completer, collector *metrics.Collector, logger *logrus.Logger) *Classifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Classifier{completer: completer, collector: collector, logger: logger}
}

// Classify asks the model for query type, entities and the calculation flag.
// Every failure path degrades to the factual default; Classify never returns
// an error to the caller.
func (c *Classifier) Classify(ctx context.Context, query string) Classification {
	response, err := c.completer.Complete(ctx, fmt.Sprintf(classifierPrompt, query))
	if err != nil {
		c.logger.WithError(err).Warn("Query classification call failed, using factual default")
		c.collector.CollaboratorError("classifier")
		return defaultClassification()
	}

	var parsed Classification
	if err := decodeModelJSON(response, &parsed); err != nil {
		c.logger.WithError(err).WithField("raw", truncateForLog(response, 200)).
			Warn("Query classification parse failed, using factual default")
		c.collector.CollaboratorError("classifier")
		return defaultClassification()
	}

	switch parsed.QueryType {
	case QueryTypeFactual, QueryTypeComparative, QueryTypeSummarization, QueryTypeCalculation:
	default:
		parsed.QueryType = QueryTypeFactual
	}
	if parsed.Entities == nil {
		parsed.Entities = []string{}
	}

	parsed.MultiEntity = parsed.QueryType == QueryTypeComparative

	c.logger.WithFields(logrus.Fields{
		"query_type":           parsed.QueryType,
		"entities":             len(parsed.Entities),
		"requires_calculation": parsed.RequiresCalculation,
	}).Debug("Query classified")

	return parsed
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
