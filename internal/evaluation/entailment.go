package evaluation

import (
	"context"
	"fmt"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// EntailmentScorer checks a response for hallucinations sentence by
// sentence using a pairwise NLI classifier: each sentence is scored
// against every context passage and the best-supporting passage decides
// the sentence's label. It is the alternate evidence path next to the
// LLM judge; when enabled, its per-claim scores supply
// confidence-of-correctness values to the scoring engine.
type EntailmentScorer struct {
	encoder ports.EncoderClient

	// entailmentThreshold: scores above it count as entailment.
	entailmentThreshold float64
	// contradictionThreshold: scores below it count as contradiction.
	contradictionThreshold float64
}

// NewEntailmentScorer creates a scorer with the given classification
// thresholds.
func NewEntailmentScorer(encoder ports.EncoderClient, entailmentThreshold, contradictionThreshold float64) *EntailmentScorer {
	return &EntailmentScorer{
		encoder:                encoder,
		entailmentThreshold:    entailmentThreshold,
		contradictionThreshold: contradictionThreshold,
	}
}

// Check scores every sentence of the response against every passage.
// A sentence whose best label is contradiction or neutral with a best
// score under the entailment threshold becomes a flagged claim. The
// aggregate confidence is the mean of per-sentence best scores.
//
// Check returns an error only for encoder failures; callers treat that as
// "no entailment evidence", never as a turn failure.
func (es *EntailmentScorer) Check(ctx context.Context, passages []string, response string) (domain.HallucinationCheck, error) {
	sentences := splitSentences(response)
	if len(sentences) == 0 {
		return domain.HallucinationCheck{
			HallucinatedClaims: []domain.EntailmentClaim{},
			AllSentences:       []domain.EntailmentResult{},
			Confidence:         1.0,
		}, nil
	}

	results := make([]domain.EntailmentResult, 0, len(sentences))
	claims := make([]domain.EntailmentClaim, 0)
	var confidenceSum float64

	for _, sentence := range sentences {
		bestScore := 0.0
		bestLabel := domain.LabelNeutral

		for _, passage := range passages {
			score, err := es.encoder.ScorePair(ctx, passage, sentence)
			if err != nil {
				return domain.HallucinationCheck{}, fmt.Errorf("entailment pair scoring failed: %w", err)
			}
			if score > bestScore {
				bestScore = score
				bestLabel = es.label(score)
			}
		}

		if bestLabel != domain.LabelEntailment && bestScore < es.entailmentThreshold {
			claims = append(claims, domain.EntailmentClaim{
				Claim: sentence,
				Score: bestScore,
				Label: bestLabel,
			})
		}

		results = append(results, domain.EntailmentResult{
			Sentence:        sentence,
			EntailmentScore: bestScore,
			Label:           bestLabel,
		})
		confidenceSum += bestScore
	}

	return domain.HallucinationCheck{
		HallucinationDetected: len(claims) > 0,
		HallucinatedClaims:    claims,
		AllSentences:          results,
		Confidence:            confidenceSum / float64(len(results)),
	}, nil
}

func (es *EntailmentScorer) label(score float64) string {
	switch {
	case score > es.entailmentThreshold:
		return domain.LabelEntailment
	case score < es.contradictionThreshold:
		return domain.LabelContradiction
	default:
		return domain.LabelNeutral
	}
}
