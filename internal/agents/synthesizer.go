package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/calc"
	"github.com/sabiqmohd/agentic-retrieval/internal/llm"
	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
	"github.com/sabiqmohd/agentic-retrieval/internal/rag"
)

const synthesisPrompt = `Based on the following retrieved context, answer the user's question.

Question: %s
Query Type: %s

Retrieved Context:
%s

%s

Instructions:
1. Synthesize a comprehensive answer using ONLY the provided context
2. For comparative queries, structure the answer to clearly compare the entities
3. Include specific quotes or data points from the context
4. If the context doesn't contain enough information, say so
5. Rate your confidence in the answer from 0.0 to 1.0 based on how well the context covers the question (0.3 = poor coverage, 1.0 = complete coverage)
6. DO NOT add information not present in the context - this is critical for hallucination prevention

Respond with a JSON object:
{
    "answer": "Your synthesized answer here",
    "citations": [
        {"document": "source.pdf", "chunk_id": "c1", "quote": "relevant quote"}
    ],
    "confidence_score": 0.85,
    "has_sufficient_context": true
}

Respond ONLY with the JSON object.`

const calculationInstruction = `
IMPORTANT: This query requires calculation.
The calculator has computed: %s = %g
Include this computed result in your answer.
`

// numberPattern matches numeric tokens, optionally preceded by a currency
// symbol and followed by a magnitude word. The magnitude suffix is recognized
// so "$5M" yields "5", but the value is deliberately not scaled by it; the
// computed expression stays in the units the query used.
var numberPattern = regexp.MustCompile(`\$?([\d,]+(?:\.\d+)?)\s*(?:million|M|billion|B)?`)

// operatorKeywords maps keyword families to two-operand expression templates.
// Families are checked in order; the first family with a keyword present in
// the query wins.
var operatorKeywords = []struct {
	words    []string
	template string
}{
	{[]string{"total", "sum", "add", "combined"}, "%s + %s"},
	{[]string{"difference", "subtract", "minus"}, "%s - %s"},
	{[]string{"multiply", "times", "product"}, "%s * %s"},
	{[]string{"divide", "ratio", "per"}, "%s / %s"},
	{[]string{"average", "mean"}, "(%s + %s) / 2"},
}

// Synthesis is the structured output of answer synthesis.
type Synthesis struct {
	Answer               string       `json:"answer"`
	Citations            []Citation   `json:"citations"`
	ConfidenceScore      float64      `json:"confidence_score"`
	HasSufficientContext bool         `json:"has_sufficient_context"`
	Calculation          *calc.Result `json:"-"`
}

// Synthesizer builds the grounded answer from retrieved context, invoking the
// arithmetic evaluator for calculation queries.
type Synthesizer struct {
	completer llm.Completer
	collector *metrics.Collector
	logger    *logrus.Logger
}

// NewSynthesizer creates an answer synthesizer. collector may be nil.
func NewSynthesizer(completer llm.Completer, collector *metrics.Collector, logger *logrus.Logger) *Synthesizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Synthesizer{completer: completer, collector: collector, logger: logger}
}

// Synthesize produces an answer with citations and a self-reported confidence
// score. Grounding is enforced by prompt instruction only; verification is the
// verifier's job. Synthesize never returns an error: a failed model call or
// unparseable response degrades to a documented fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, query, queryType string, chunks []rag.RetrievedChunk, requiresCalculation bool) Synthesis {
	contextBlock := formatContext(chunks)

	var calcResult *calc.Result
	calcInstruction := ""
	if requiresCalculation {
		calcResult = s.runCalculation(query, chunks)
		if calcResult != nil && calcResult.Success {
			calcInstruction = fmt.Sprintf(calculationInstruction, calcResult.Expression, *calcResult.Value)
		}
	}

	prompt := fmt.Sprintf(synthesisPrompt, query, queryType, contextBlock, calcInstruction)

	response, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).Warn("Synthesis call failed, using fallback answer")
		s.collector.CollaboratorError("synthesizer")
		return Synthesis{
			Answer:               "Unable to generate an answer from the available context.",
			Citations:            []Citation{},
			ConfidenceScore:      0.3,
			HasSufficientContext: len(chunks) > 0,
			Calculation:          calcResult,
		}
	}

	// Pointer fields distinguish absent self-assessment fields from explicit
	// zeros; absent ones default to moderate confidence and sufficient
	// context instead of values that would trip the verifier.
	var parsed struct {
		Answer               string     `json:"answer"`
		Citations            []Citation `json:"citations"`
		ConfidenceScore      *float64   `json:"confidence_score"`
		HasSufficientContext *bool      `json:"has_sufficient_context"`
	}
	if err := decodeModelJSON(response, &parsed); err != nil {
		s.logger.WithError(err).Warn("Synthesis parse failed, falling back to raw model text")
		s.collector.CollaboratorError("synthesizer")
		return Synthesis{
			Answer:               response,
			Citations:            []Citation{},
			ConfidenceScore:      0.3,
			HasSufficientContext: len(chunks) > 0,
			Calculation:          calcResult,
		}
	}

	result := Synthesis{
		Answer:               parsed.Answer,
		Citations:            parsed.Citations,
		ConfidenceScore:      0.5,
		HasSufficientContext: true,
		Calculation:          calcResult,
	}
	if parsed.ConfidenceScore != nil {
		result.ConfidenceScore = *parsed.ConfidenceScore
	}
	if parsed.HasSufficientContext != nil {
		result.HasSufficientContext = *parsed.HasSufficientContext
	}
	if result.Answer == "" {
		result.Answer = "Unable to generate answer."
	}
	if result.Citations == nil {
		result.Citations = []Citation{}
	}

	return result
}

// formatContext renders chunks as the enumerated context block the synthesis
// prompt expects. An empty chunk list yields an explicit marker, never an
// empty string.
func formatContext(chunks []rag.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No relevant context found."
	}

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = fmt.Sprintf("[%d] Source: %s (ID: %s)\nContent: %s\nRelevance: %.2f",
			i+1, chunk.Document, chunk.ChunkID, chunk.Content, chunk.RelevanceScore)
	}
	return strings.Join(parts, "\n\n")
}

// runCalculation extracts the first two numeric tokens from the query and the
// retrieved content, picks an operator from the query's keywords and runs the
// evaluator. Returns nil when fewer than two numbers are present.
func (s *Synthesizer) runCalculation(query string, chunks []rag.RetrievedChunk) *calc.Result {
	var sb strings.Builder
	sb.WriteString(query)
	for _, chunk := range chunks {
		sb.WriteString(" ")
		sb.WriteString(chunk.Content)
	}

	numbers := extractNumbers(sb.String(), 2)
	if len(numbers) < 2 {
		s.logger.Debug("Calculation requested but fewer than two numbers found")
		return nil
	}

	expression := buildExpression(query, numbers[0], numbers[1])
	result := calc.Evaluate(expression)

	if result.Success {
		s.logger.WithFields(logrus.Fields{
			"expression": result.Expression,
			"result":     *result.Value,
		}).Debug("Calculation completed")
	} else {
		s.logger.WithField("error", result.Error).Warn("Calculation failed")
	}

	return &result
}

// extractNumbers returns up to max numeric tokens with thousands separators
// stripped.
func extractNumbers(text string, max int) []string {
	matches := numberPattern.FindAllStringSubmatch(text, -1)
	numbers := make([]string, 0, max)
	for _, m := range matches {
		n := strings.ReplaceAll(m[1], ",", "")
		if n == "" {
			continue
		}
		numbers = append(numbers, n)
		if len(numbers) == max {
			break
		}
	}
	return numbers
}

// buildExpression selects the arithmetic operation from keywords in the
// query. No keyword match defaults to addition.
func buildExpression(query, a, b string) string {
	queryLower := strings.ToLower(query)
	for _, family := range operatorKeywords {
		for _, word := range family.words {
			if strings.Contains(queryLower, word) {
				return fmt.Sprintf(family.template, a, b)
			}
		}
	}
	return fmt.Sprintf("%s + %s", a, b)
}
