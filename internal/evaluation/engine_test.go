package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-verdict/internal/domain"
)

func newTestEngine(t *testing.T, llm *fakeLLM, enc *fakeEncoder) *Engine {
	t.Helper()
	engine, err := NewEngine(llm, enc, nil, nil, DefaultConfig(), testLogger())
	require.NoError(t, err)
	return engine
}

func TestEngineEvaluateHappyPath(t *testing.T) {
	llm := &fakeLLM{response: cleanJudgeReply}
	engine := newTestEngine(t, llm, &fakeEncoder{})

	req := domain.EvaluationRequest{
		Conversation: sampleConversation(),
		Context: contextSetWith([]int{1},
			passage(1, "Checkout is at 12pm. Breakfast is included in all rates.", 20)),
	}

	result, err := engine.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 42, result.ConversationID)
	assert.Equal(t, 4, result.TotalTurns)
	assert.Equal(t, 2, result.AIResponsesEvaluated)
	assert.Equal(t, 2, result.Summary.LLMCallsMade)
	assert.Greater(t, result.OverallScore, 0.0)
}

func TestEngineEvaluateRejectsEmptyConversation(t *testing.T) {
	engine := newTestEngine(t, &fakeLLM{response: cleanJudgeReply}, &fakeEncoder{})

	_, err := engine.Evaluate(context.Background(), domain.EvaluationRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)
}

func TestEngineEvaluateRejectsUnknownRole(t *testing.T) {
	engine := newTestEngine(t, &fakeLLM{response: cleanJudgeReply}, &fakeEncoder{})

	req := domain.EvaluationRequest{
		Conversation: domain.Conversation{
			ChatID: 1,
			Turns:  []domain.ConversationTurn{turn(0, "Robot", "hello", "2026-03-01T10:00:00Z")},
		},
	}
	_, err := engine.Evaluate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 0
	_, err := NewEngine(&fakeLLM{}, &fakeEncoder{}, nil, nil, cfg, testLogger())
	assert.Error(t, err)
}

func TestNewEngineRejectsNilEncoder(t *testing.T) {
	_, err := NewEngine(&fakeLLM{}, nil, nil, nil, DefaultConfig(), testLogger())
	assert.Error(t, err)
}
