package agents

import "github.com/sabiqmohd/agentic-retrieval/internal/rag"

// VerificationResult is the outcome of the hallucination guard.
type VerificationResult struct {
	HallucinationFlag bool    `json:"hallucination_flag"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
}

// VerifyAnswer applies the fixed heuristic guard to a synthesized answer.
// Rules are evaluated in order, first match wins:
//
//  1. confidence below 0.4 flags the answer and reduces confidence further
//  2. no source chunks flags the answer and zeroes confidence
//  3. otherwise the answer passes unchanged
//
// This is a heuristic guard, not claim-level fact checking: it never inspects
// the answer text against the sources.
func VerifyAnswer(answer string, chunks []rag.RetrievedChunk, confidenceScore float64) VerificationResult {
	if confidenceScore < 0.4 {
		return VerificationResult{
			HallucinationFlag: true,
			Confidence:        confidenceScore * 0.8,
			Reason:            "low confidence score indicates weak source grounding",
		}
	}

	if len(chunks) == 0 {
		return VerificationResult{
			HallucinationFlag: true,
			Confidence:        0.0,
			Reason:            "no source context provided",
		}
	}

	return VerificationResult{
		HallucinationFlag: false,
		Confidence:        confidenceScore,
		Reason:            "confidence and sources look reasonable",
	}
}
