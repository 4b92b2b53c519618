package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ahrav/go-verdict/internal/domain"
)

// fakeEncoder serves canned embeddings and pair scores for selector and
// entailment tests.
type fakeEncoder struct {
	mu sync.Mutex

	// embeddings maps input text to its vector.
	embeddings map[string][]float32
	// pairScores maps "premise|hypothesis" to a score.
	pairScores map[string]float64

	embedErr error
	pairErr  error

	embedCalls int
	pairCalls  int
}

func (f *fakeEncoder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, ok := f.embeddings[t]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEncoder) ScorePair(_ context.Context, premise, hypothesis string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairCalls++
	if f.pairErr != nil {
		return 0, f.pairErr
	}
	if s, ok := f.pairScores[premise+"|"+hypothesis]; ok {
		return s, nil
	}
	return 0.9, nil
}

// fakeLLM returns a fixed response or error for judge tests.
type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, _ map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) EstimateTokens(text string) (int, error) { return len(text) / 4, nil }

func (f *fakeLLM) GetModel() string { return "fake-judge" }

// fixedSeverity classifies every claim at the same weight.
type fixedSeverity struct{ weight float64 }

func (f fixedSeverity) Severity(string) float64 { return f.weight }

func testLogger() *slog.Logger { return slog.Default() }

func passage(id int, text string, tokens int) domain.ContextPassage {
	return domain.ContextPassage{
		ID:     id,
		Text:   text,
		Tokens: tokens,
	}
}

func turn(ordinal int, role, message, createdAt string) domain.ConversationTurn {
	return domain.ConversationTurn{
		Turn:      ordinal,
		SenderID:  ordinal + 100,
		Role:      role,
		Message:   message,
		CreatedAt: createdAt,
	}
}

func contextSetWith(used []int, passages ...domain.ContextPassage) domain.ContextSet {
	return domain.ContextSet{
		Status:     "success",
		StatusCode: 200,
		Data: domain.ContextData{
			VectorData: passages,
			Sources:    domain.ContextSources{VectorsUsed: used},
		},
	}
}

// uniqueText generates distinct passage text of n words.
func uniqueText(tag string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s%d", tag, i)
	}
	return out
}
