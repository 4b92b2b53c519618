package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-verdict/internal/domain"
)

func TestSelectNoCandidates(t *testing.T) {
	s := NewSimilaritySelector(&fakeEncoder{}, DefaultChunkSize, testLogger())

	_, ok := s.Select(context.Background(), "any query", nil)
	assert.False(t, ok)
}

func TestSelectSingleCandidateSkipsModelCall(t *testing.T) {
	enc := &fakeEncoder{}
	s := NewSimilaritySelector(enc, DefaultChunkSize, testLogger())

	sel, ok := s.Select(context.Background(), "query", []domain.ContextPassage{passage(7, "only passage", 10)})
	require.True(t, ok)
	assert.Equal(t, 7, sel.Passage.ID)
	assert.Equal(t, 1.0, sel.Score)
	assert.Zero(t, enc.embedCalls, "single candidate must not call the encoder")
}

func TestSelectPicksBestChunk(t *testing.T) {
	query := "what time is checkout"
	// Candidate 1's second chunk aligns with the query vector; candidate 2
	// never does, despite being first in input order... order must not win.
	enc := &fakeEncoder{embeddings: map[string][]float32{
		query: {1, 0, 0},
	}}

	// Build two passages of two chunks each with a small chunk size so the
	// chunking path is exercised.
	p1 := passage(1, "alpha beta gamma delta", 10)
	p2 := passage(2, "epsilon zeta eta theta", 10)
	enc.embeddings["alpha beta"] = []float32{0, 1, 0}
	enc.embeddings["gamma delta"] = []float32{0.9, 0.1, 0}
	enc.embeddings["epsilon zeta"] = []float32{0, 0, 1}
	enc.embeddings["eta theta"] = []float32{0.2, 0.8, 0}

	s := NewSimilaritySelector(enc, 2, testLogger())
	sel, ok := s.Select(context.Background(), query, []domain.ContextPassage{p2, p1})
	require.True(t, ok)
	assert.Equal(t, 1, sel.Passage.ID)
	assert.Greater(t, sel.Score, 0.9)
}

func TestSelectTieBreaksTowardFirstCandidate(t *testing.T) {
	query := "q"
	enc := &fakeEncoder{embeddings: map[string][]float32{
		query: {1, 0, 0},
		"aaa": {1, 0, 0},
		"bbb": {1, 0, 0},
	}}

	s := NewSimilaritySelector(enc, 5, testLogger())
	sel, ok := s.Select(context.Background(), query, []domain.ContextPassage{
		passage(10, "aaa", 1),
		passage(20, "bbb", 1),
	})
	require.True(t, ok)
	assert.Equal(t, 10, sel.Passage.ID)
}

func TestSelectFallsBackOnEncoderFailure(t *testing.T) {
	enc := &fakeEncoder{embedErr: errors.New("encoder down")}
	s := NewSimilaritySelector(enc, DefaultChunkSize, testLogger())

	candidates := []domain.ContextPassage{passage(1, "first", 1), passage(2, "second", 1)}
	sel, ok := s.Select(context.Background(), "query", candidates)
	require.True(t, ok, "encoder failure must not surface as a missing selection")
	assert.Equal(t, 1, sel.Passage.ID)
	assert.Equal(t, 0.0, sel.Score)
}

func TestChunkWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"empty", "   ", 3, nil},
		{"single chunk", "a b", 3, []string{"a b"}},
		{"exact multiple", "a b c d", 2, []string{"a b", "c d"}},
		{"trailing remainder", "a b c d e", 2, []string{"a b", "c d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunkWords(tt.text, tt.size))
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}), "mismatched lengths score 0")
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}), "zero vector scores 0")
}
