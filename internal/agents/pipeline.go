package agents

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
	"github.com/sabiqmohd/agentic-retrieval/internal/rag"
)

// Retriever is the retrieval collaborator the pipeline depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []rag.RetrievedChunk
}

// PipelineConfig configures the orchestrator.
type PipelineConfig struct {
	// TopK for a standard single-query retrieval.
	TopK int `json:"top_k"`
	// EntityTopK for each per-entity retrieval of a comparative query.
	EntityTopK int `json:"entity_top_k"`
	// MaxEntities caps per-entity lookups for comparative queries.
	MaxEntities int `json:"max_entities"`
}

// DefaultPipelineConfig returns default orchestration settings.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		TopK:        5,
		EntityTopK:  3,
		MaxEntities: 3,
	}
}

// Pipeline sequences the query answering stages over a fresh state per
// request: safety pre-check, classification, retrieval, synthesis,
// verification. It holds only process-wide collaborators and is safe for
// concurrent use.
type Pipeline struct {
	classifier  *Classifier
	retriever   Retriever
	synthesizer *Synthesizer
	safety      *SafetyChecker
	config      *PipelineConfig
	collector   *metrics.Collector
	logger      *logrus.Logger
}

// NewPipeline creates the pipeline orchestrator.
func NewPipeline(
	classifier *Classifier,
	retriever Retriever,
	synthesizer *Synthesizer,
	safety *SafetyChecker,
	config *PipelineConfig,
	collector *metrics.Collector,
	logger *logrus.Logger,
) *Pipeline {
	if config == nil {
		config = DefaultPipelineConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Pipeline{
		classifier:  classifier,
		retriever:   retriever,
		synthesizer: synthesizer,
		safety:      safety,
		config:      config,
		collector:   collector,
		logger:      logger,
	}
}

// Run executes a query through the pipeline and returns the terminal state.
// The stages advance strictly linearly; a blocked query short-circuits to a
// terminal blocked state before classification. Run never returns an error:
// degraded collaborators produce a degraded answer, and the confidence score
// plus verification flag communicate trust.
func (p *Pipeline) Run(ctx context.Context, query string, safetyEnabled bool) *PipelineState {
	state := newPipelineState(query)

	if safetyEnabled {
		validation := p.safety.ValidateInput(ctx, query)
		if validation.ShouldBlock {
			state.Stage = StageBlocked
			state.QueryType = QueryTypeBlocked
			state.Answer = fmt.Sprintf("Query blocked: %s", validation.Reason)
			state.ConfidenceScore = 0.0
			state.VerificationPassed = false
			p.countTerminal(StageBlocked)
			return state
		}
	}

	p.classify(ctx, state)
	p.retrieve(ctx, state)
	p.synthesize(ctx, state)

	if safetyEnabled {
		p.verify(state)
	}

	state.Stage = StageDone
	p.countTerminal(StageDone)
	return state
}

func (p *Pipeline) classify(ctx context.Context, state *PipelineState) {
	defer p.timeStage(StageClassified)()

	classification := p.classifier.Classify(ctx, state.Query)
	state.QueryType = classification.QueryType
	state.Entities = classification.Entities
	state.MultiEntity = classification.MultiEntity
	state.RequiresCalculation = classification.RequiresCalculation
	state.Stage = StageClassified
}

// retrieve performs standard retrieval, or a capped per-entity sweep for
// comparative queries with cross-call deduplication by chunk id.
func (p *Pipeline) retrieve(ctx context.Context, state *PipelineState) {
	defer p.timeStage(StageRetrieved)()

	var chunks []rag.RetrievedChunk

	if state.MultiEntity && len(state.Entities) >= 2 {
		entities := state.Entities
		if len(entities) > p.config.MaxEntities {
			entities = entities[:p.config.MaxEntities]
		}
		seen := make(map[string]bool)
		for _, entity := range entities {
			for _, chunk := range p.retriever.Retrieve(ctx, entity, p.config.EntityTopK) {
				if seen[chunk.ChunkID] {
					continue
				}
				seen[chunk.ChunkID] = true
				chunks = append(chunks, chunk)
			}
		}
	} else {
		chunks = p.retriever.Retrieve(ctx, state.Query, p.config.TopK)
	}

	// Calculation queries want numeric content up front.
	if state.RequiresCalculation {
		sortByNumericDensity(chunks)
	}

	if chunks == nil {
		chunks = []rag.RetrievedChunk{}
	}
	state.RetrievedChunks = chunks
	state.Stage = StageRetrieved

	p.logger.WithFields(logrus.Fields{
		"chunks":       len(chunks),
		"multi_entity": state.MultiEntity,
	}).Debug("Retrieval stage completed")
}

func (p *Pipeline) synthesize(ctx context.Context, state *PipelineState) {
	defer p.timeStage(StageSynthesized)()

	synthesis := p.synthesizer.Synthesize(ctx, state.Query, state.QueryType,
		state.RetrievedChunks, state.RequiresCalculation)

	state.CalculationResult = synthesis.Calculation
	state.Answer = synthesis.Answer
	state.Citations = synthesis.Citations
	state.ConfidenceScore = synthesis.ConfidenceScore
	state.VerificationPassed = synthesis.HasSufficientContext && synthesis.ConfidenceScore >= 0.4
	state.Stage = StageSynthesized
}

// verify runs the hallucination guard. It always runs when safety is enabled
// and unconditionally overwrites the confidence score and verification flag;
// this is mandatory post-processing, not an optional branch.
func (p *Pipeline) verify(state *PipelineState) {
	defer p.timeStage(StageVerified)()

	result := VerifyAnswer(state.Answer, state.RetrievedChunks, state.ConfidenceScore)
	state.ConfidenceScore = result.Confidence
	state.VerificationPassed = !result.HallucinationFlag
	state.Stage = StageVerified

	p.logger.WithFields(logrus.Fields{
		"passed":     state.VerificationPassed,
		"confidence": state.ConfidenceScore,
		"reason":     result.Reason,
	}).Debug("Verification stage completed")
}

var digitsPattern = regexp.MustCompile(`\d+\.?\d*`)

// sortByNumericDensity is a stable sort placing chunks with more numeric
// tokens first.
func sortByNumericDensity(chunks []rag.RetrievedChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return len(digitsPattern.FindAllString(chunks[i].Content, -1)) >
			len(digitsPattern.FindAllString(chunks[j].Content, -1))
	})
}

func (p *Pipeline) countTerminal(stage Stage) {
	if p.collector != nil {
		p.collector.PipelineRequests.WithLabelValues(string(stage)).Inc()
	}
}

func (p *Pipeline) timeStage(stage Stage) func() {
	if p.collector == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.collector.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	}
}
