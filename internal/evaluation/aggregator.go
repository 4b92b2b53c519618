package evaluation

import (
	"github.com/ahrav/go-verdict/internal/domain"
)

// Aggregate rolls per-turn evaluations up into a conversation-level
// result. Every mean guards against the empty case by reporting 0, so a
// conversation with no pairable AI turns produces a well-formed result
// rather than NaN.
func Aggregate(conv domain.Conversation, evals []domain.TurnEvaluation) domain.EvaluationResult {
	if evals == nil {
		evals = []domain.TurnEvaluation{}
	}

	summary := domain.Summary{TotalEvaluations: len(evals)}
	var overallSum, relevanceSum, completenessSum, latencySum, costSum float64

	for _, e := range evals {
		if e.Judgment.Hallucination {
			summary.HallucinationsDetected++
		}
		if e.UsedLLM {
			summary.LLMCallsMade++
		}
		overallSum += e.Scores.Overall
		relevanceSum += e.Scores.Relevance
		completenessSum += e.Scores.Completeness
		latencySum += e.Metrics.LatencyMs
		costSum += e.Metrics.CostUSD
	}

	var overall float64
	if n := float64(len(evals)); n > 0 {
		overall = overallSum / n
		summary.AvgRelevance = round2(relevanceSum / n)
		summary.AvgCompleteness = round2(completenessSum / n)
		summary.AvgLatencyMs = round2(latencySum / n)
	}
	summary.TotalCost = round6(costSum)

	return domain.EvaluationResult{
		ConversationID:       conv.ChatID,
		UserID:               conv.UserID,
		TotalTurns:           len(conv.Turns),
		AIResponsesEvaluated: len(evals),
		Evaluations:          evals,
		OverallScore:         round2(overall),
		Summary:              summary,
	}
}
