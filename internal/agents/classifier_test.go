package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
)

// completerFunc adapts a function to llm.Completer.
type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func staticCompleter(response string) completerFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return response, nil
	}
}

func failingCompleter(err error) completerFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return "", err
	}
}

func TestClassifyFactual(t *testing.T) {
	classifier := NewClassifier(staticCompleter(
		`{"query_type": "factual", "entities": ["revenue"], "requires_calculation": false}`,
	), nil, testLogger())

	c := classifier.Classify(context.Background(), "What was the revenue?")
	assert.Equal(t, QueryTypeFactual, c.QueryType)
	assert.Equal(t, []string{"revenue"}, c.Entities)
	assert.False(t, c.RequiresCalculation)
	assert.False(t, c.MultiEntity)
}

func TestClassifyComparativeSetsMultiEntity(t *testing.T) {
	classifier := NewClassifier(staticCompleter(
		`{"query_type": "comparative", "entities": ["Company A", "Company B"], "requires_calculation": false}`,
	), nil, testLogger())

	c := classifier.Classify(context.Background(), "Compare A and B")
	assert.Equal(t, QueryTypeComparative, c.QueryType)
	assert.True(t, c.MultiEntity)
}

func TestClassifyStripsCodeFences(t *testing.T) {
	classifier := NewClassifier(staticCompleter(
		"```json\n{\"query_type\": \"calculation\", \"entities\": [], \"requires_calculation\": true}\n```",
	), nil, testLogger())

	c := classifier.Classify(context.Background(), "What is 5 plus 3?")
	assert.Equal(t, QueryTypeCalculation, c.QueryType)
	assert.True(t, c.RequiresCalculation)
}

func TestClassifyMalformedJSONFallsBack(t *testing.T) {
	for _, response := range []string{
		"I think this is a factual query about revenue.",
		`{"query_type": "factual", "entities": [`,
		"",
	} {
		classifier := NewClassifier(staticCompleter(response), nil, testLogger())
		c := classifier.Classify(context.Background(), "anything")

		assert.Equal(t, QueryTypeFactual, c.QueryType, "response %q", response)
		assert.Empty(t, c.Entities)
		assert.False(t, c.RequiresCalculation)
		assert.False(t, c.MultiEntity)
	}
}

func TestClassifyCompleterErrorFallsBack(t *testing.T) {
	classifier := NewClassifier(failingCompleter(errors.New("model down")), nil, testLogger())

	c := classifier.Classify(context.Background(), "anything")
	assert.Equal(t, QueryTypeFactual, c.QueryType)
	assert.Empty(t, c.Entities)
}

func TestClassifyUnknownQueryTypeFallsBack(t *testing.T) {
	classifier := NewClassifier(staticCompleter(
		`{"query_type": "philosophical", "entities": ["life"], "requires_calculation": false}`,
	), nil, testLogger())

	c := classifier.Classify(context.Background(), "why?")
	assert.Equal(t, QueryTypeFactual, c.QueryType)
	// Entities from the model survive the type fallback.
	assert.Equal(t, []string{"life"}, c.Entities)
}

func TestClassifyNilEntitiesBecomesEmpty(t *testing.T) {
	classifier := NewClassifier(staticCompleter(
		`{"query_type": "summarization", "requires_calculation": false}`,
	), nil, testLogger())

	c := classifier.Classify(context.Background(), "summarize")
	assert.NotNil(t, c.Entities)
	assert.Empty(t, c.Entities)
}

func TestClassifyCountsAbsorbedFailures(t *testing.T) {
	collector := metrics.NewCollector()
	classifier := NewClassifier(failingCompleter(errors.New("model down")), collector, testLogger())

	classifier.Classify(context.Background(), "q")
	classifier.Classify(context.Background(), "q")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.CollaboratorErrors.WithLabelValues("classifier")))
}
