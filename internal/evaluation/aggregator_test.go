package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-verdict/internal/domain"
)

func TestAggregateEmptyEvaluations(t *testing.T) {
	conv := domain.Conversation{ChatID: 5, UserID: 2, Turns: []domain.ConversationTurn{
		turn(0, domain.RoleAI, "Welcome!", "2026-03-01T10:00:00Z"),
	}}

	result := Aggregate(conv, nil)

	assert.Equal(t, 5, result.ConversationID)
	assert.Equal(t, 2, result.UserID)
	assert.Equal(t, 1, result.TotalTurns)
	assert.Equal(t, 0, result.AIResponsesEvaluated)
	assert.NotNil(t, result.Evaluations)
	assert.Empty(t, result.Evaluations)
	assert.Equal(t, 0.0, result.OverallScore)
	assert.Equal(t, 0.0, result.Summary.AvgRelevance)
	assert.Equal(t, 0.0, result.Summary.AvgLatencyMs)
	assert.Equal(t, 0.0, result.Summary.TotalCost)
}

func TestAggregateSummaryRollup(t *testing.T) {
	conv := domain.Conversation{ChatID: 1, UserID: 1, Turns: make([]domain.ConversationTurn, 4)}

	evals := []domain.TurnEvaluation{
		{
			Turn:     1,
			Judgment: domain.Judgment{Hallucination: true},
			Metrics:  domain.TurnMetrics{LatencyMs: 1000, CostUSD: 0.0001},
			Scores:   domain.TurnScores{Relevance: 0.8, Completeness: 0.6, Overall: 0.7},
			UsedLLM:  true,
		},
		{
			Turn:     3,
			Judgment: domain.Judgment{Hallucination: false},
			Metrics:  domain.TurnMetrics{LatencyMs: 3000, CostUSD: 0.0003},
			Scores:   domain.TurnScores{Relevance: 0.6, Completeness: 0.8, Overall: 0.9},
			UsedLLM:  true,
		},
	}

	result := Aggregate(conv, evals)

	assert.Equal(t, 2, result.AIResponsesEvaluated)
	assert.Equal(t, 2, result.Summary.TotalEvaluations)
	assert.Equal(t, 1, result.Summary.HallucinationsDetected)
	assert.Equal(t, 2, result.Summary.LLMCallsMade)
	assert.InDelta(t, 0.8, result.OverallScore, 1e-9)
	assert.InDelta(t, 0.7, result.Summary.AvgRelevance, 1e-9)
	assert.InDelta(t, 0.7, result.Summary.AvgCompleteness, 1e-9)
	assert.InDelta(t, 2000.0, result.Summary.AvgLatencyMs, 1e-9)
	assert.InDelta(t, 0.0004, result.Summary.TotalCost, 1e-9)
}
