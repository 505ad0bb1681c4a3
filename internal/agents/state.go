// Package agents implements the three-stage question answering pipeline:
// query classification, hybrid retrieval and answer synthesis, framed by an
// input safety check and a hallucination guard.
package agents

import (
	"github.com/sabiqmohd/agentic-retrieval/internal/calc"
	"github.com/sabiqmohd/agentic-retrieval/internal/rag"
)

// Query types produced by the classifier.
const (
	QueryTypeFactual       = "factual"
	QueryTypeComparative   = "comparative"
	QueryTypeSummarization = "summarization"
	QueryTypeCalculation   = "calculation"
	// QueryTypeBlocked marks queries rejected by the safety pre-check.
	QueryTypeBlocked = "blocked"
)

// Stage identifies where a request is in the pipeline. The progression is
// strictly linear; conditional behavior (multi-entity retrieval, calculation)
// is driven by state fields inside a stage, never by branching the graph.
type Stage string

const (
	StageStart       Stage = "start"
	StageClassified  Stage = "classified"
	StageRetrieved   Stage = "retrieved"
	StageSynthesized Stage = "synthesized"
	StageVerified    Stage = "verified"
	StageDone        Stage = "done"
	StageBlocked     Stage = "blocked"
)

// Citation ties a piece of the answer back to a retrieved chunk.
type Citation struct {
	Document string `json:"document"`
	ChunkID  string `json:"chunk_id"`
	Quote    string `json:"quote"`
}

// PipelineState is created fresh per request and threaded through the
// stages. Each stage adds or revises the fields it owns and must not drop
// fields set by its predecessors; ConfidenceScore and VerificationPassed are
// the only fields a later stage (the verifier) overwrites.
type PipelineState struct {
	Query string `json:"query"`

	// Classification.
	QueryType           string   `json:"query_type"`
	Entities            []string `json:"entities"`
	MultiEntity         bool     `json:"multi_entity"`
	RequiresCalculation bool     `json:"requires_calculation"`

	// Retrieval.
	RetrievedChunks []rag.RetrievedChunk `json:"retrieved_chunks"`

	// Synthesis.
	CalculationResult *calc.Result `json:"calculation_result"`
	Answer            string       `json:"answer"`
	Citations         []Citation   `json:"citations"`

	// Verification.
	ConfidenceScore    float64 `json:"confidence_score"`
	VerificationPassed bool    `json:"verification_passed"`

	Stage Stage `json:"stage"`
}

// newPipelineState returns the default state for a query.
func newPipelineState(query string) *PipelineState {
	return &PipelineState{
		Query:           query,
		QueryType:       QueryTypeFactual,
		Entities:        []string{},
		RetrievedChunks: []rag.RetrievedChunk{},
		Citations:       []Citation{},
		Stage:           StageStart,
	}
}
