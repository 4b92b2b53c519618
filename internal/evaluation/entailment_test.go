package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-verdict/internal/domain"
)

func TestEntailmentCheckFlagsUnsupportedSentences(t *testing.T) {
	premise := "Checkout is at noon and breakfast costs twelve dollars."
	response := "Checkout happens at noon every day. Breakfast is completely free of charge."

	enc := &fakeEncoder{pairScores: map[string]float64{
		premise + "|Checkout happens at noon every day":   0.92,
		premise + "|Breakfast is completely free of charge": 0.12,
	}}

	es := NewEntailmentScorer(enc, DefaultEntailmentThreshold, DefaultContradictionThreshold)
	check, err := es.Check(context.Background(), []string{premise}, response)
	require.NoError(t, err)

	assert.True(t, check.HallucinationDetected)
	require.Len(t, check.HallucinatedClaims, 1)
	assert.Equal(t, "Breakfast is completely free of charge", check.HallucinatedClaims[0].Claim)
	assert.Equal(t, domain.LabelContradiction, check.HallucinatedClaims[0].Label)
	assert.Len(t, check.AllSentences, 2)
	assert.InDelta(t, (0.92+0.12)/2, check.Confidence, 1e-9)
}

func TestEntailmentCheckBestPassageWins(t *testing.T) {
	response := "The spa is open until nine in the evening."
	enc := &fakeEncoder{pairScores: map[string]float64{
		"passage one|The spa is open until nine in the evening": 0.2,
		"passage two|The spa is open until nine in the evening": 0.85,
	}}

	es := NewEntailmentScorer(enc, DefaultEntailmentThreshold, DefaultContradictionThreshold)
	check, err := es.Check(context.Background(), []string{"passage one", "passage two"}, response)
	require.NoError(t, err)

	assert.False(t, check.HallucinationDetected)
	require.Len(t, check.AllSentences, 1)
	assert.Equal(t, 0.85, check.AllSentences[0].EntailmentScore)
	assert.Equal(t, domain.LabelEntailment, check.AllSentences[0].Label)
}

func TestEntailmentCheckEmptyResponse(t *testing.T) {
	es := NewEntailmentScorer(&fakeEncoder{}, DefaultEntailmentThreshold, DefaultContradictionThreshold)
	check, err := es.Check(context.Background(), []string{"passage"}, "ok!")
	require.NoError(t, err)

	assert.False(t, check.HallucinationDetected)
	assert.Empty(t, check.HallucinatedClaims)
	assert.Equal(t, 1.0, check.Confidence)
}

func TestEntailmentCheckEncoderFailure(t *testing.T) {
	enc := &fakeEncoder{pairErr: errors.New("encoder down")}
	es := NewEntailmentScorer(enc, DefaultEntailmentThreshold, DefaultContradictionThreshold)

	_, err := es.Check(context.Background(), []string{"passage"}, "The gym is on the second floor.")
	assert.Error(t, err)
}
