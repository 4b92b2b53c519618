package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTurnBefore(t *testing.T) {
	conv := Conversation{
		ChatID: 1,
		Turns: []ConversationTurn{
			{Turn: 0, Role: RoleUser, Message: "hello"},
			{Turn: 1, Role: RoleAI, Message: "hi there"},
			{Turn: 2, Role: RoleAI, Message: "anything else?"},
			{Turn: 4, Role: RoleAI, Message: "orphaned"},
		},
	}

	user, ok := conv.UserTurnBefore(conv.Turns[1])
	require.True(t, ok)
	assert.Equal(t, "hello", user.Message)

	// Preceding ordinal exists but has the AI role.
	_, ok = conv.UserTurnBefore(conv.Turns[2])
	assert.False(t, ok)

	// Preceding ordinal missing entirely.
	_, ok = conv.UserTurnBefore(conv.Turns[3])
	assert.False(t, ok)
}

func TestAITurns(t *testing.T) {
	conv := Conversation{
		Turns: []ConversationTurn{
			{Turn: 0, Role: RoleUser},
			{Turn: 1, Role: RoleAI},
			{Turn: 2, Role: RoleUser},
			{Turn: 3, Role: RoleAI},
		},
	}
	got := conv.AITurns()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Turn)
	assert.Equal(t, 3, got[1].Turn)
}

func TestUsedPassagesResolvesInOrder(t *testing.T) {
	cs := ContextSet{
		Data: ContextData{
			VectorData: []ContextPassage{
				{ID: 1, Text: "one"},
				{ID: 2, Text: "two"},
				{ID: 3, Text: "three"},
			},
			Sources: ContextSources{VectorsUsed: []int{3, 1}},
		},
	}

	used := cs.UsedPassages()
	require.Len(t, used, 2)
	assert.Equal(t, "three", used[0].Text)
	assert.Equal(t, "one", used[1].Text)
}

func TestUsedPassagesDropsUnknownIDs(t *testing.T) {
	cs := ContextSet{
		Data: ContextData{
			VectorData: []ContextPassage{{ID: 1, Text: "one"}},
			Sources:    ContextSources{VectorsUsed: []int{99, 1}},
		},
	}
	used := cs.UsedPassages()
	require.Len(t, used, 1)
	assert.Equal(t, 1, used[0].ID)
}

func TestUsedPassagesEmptyWhenNoneMarked(t *testing.T) {
	cs := ContextSet{
		Data: ContextData{
			VectorData: []ContextPassage{{ID: 1, Text: "one"}},
		},
	}
	assert.Empty(t, cs.UsedPassages())
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     EvaluationRequest
		wantErr bool
	}{
		{
			name:    "empty conversation",
			req:     EvaluationRequest{},
			wantErr: true,
		},
		{
			name: "unknown role",
			req: EvaluationRequest{
				Conversation: Conversation{Turns: []ConversationTurn{
					{Turn: 0, Role: "Moderator", Message: "hi"},
				}},
			},
			wantErr: true,
		},
		{
			name: "valid",
			req: EvaluationRequest{
				Conversation: Conversation{Turns: []ConversationTurn{
					{Turn: 0, Role: RoleUser, Message: "hi"},
					{Turn: 1, Role: RoleAI, Message: "hello"},
				}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedRequest))
				var reqErr *RequestError
				assert.True(t, errors.As(err, &reqErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNeutralJudgment(t *testing.T) {
	j := NeutralJudgment()
	assert.False(t, j.Hallucination)
	assert.Equal(t, 0.5, j.RelevanceScore)
	assert.Equal(t, 0.5, j.CompletenessScore)
	assert.True(t, j.RelevancePresent)
	assert.NotNil(t, j.HallucinatedClaims)
	assert.Empty(t, j.HallucinatedClaims)
	assert.Equal(t, MethodLLMJudge, j.Method)
}

func TestErrorJudgmentCarriesDetail(t *testing.T) {
	j := ErrorJudgment(errors.New("dial tcp: refused"))
	assert.Equal(t, MethodLLMJudgeError, j.Method)
	assert.Contains(t, j.Error, "refused")
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, 0.0, ClampUnit(-1))
	assert.Equal(t, 1.0, ClampUnit(3))
	assert.Equal(t, 0.4, ClampUnit(0.4))
}
