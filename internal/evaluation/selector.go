package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// Selection is the outcome of a similarity selection: the winning passage
// and its MaxSim score.
type Selection struct {
	// Passage is the selected context passage.
	Passage domain.ContextPassage

	// Score is the maximum chunk cosine similarity against the query.
	// A single-candidate selection scores 1.0 by definition.
	Score float64
}

// SimilaritySelector picks the context passage most relevant to a query
// using MaxSim: each candidate is split into fixed-size word chunks, all
// chunks are embedded, and the candidate whose best chunk scores highest
// wins. Taking the per-chunk maximum rewards passages where any localized
// segment strongly matches, avoiding dilution from long unrelated text.
//
// The selector never returns an error: when the encoder is unavailable it
// falls back to the first candidate deterministically.
type SimilaritySelector struct {
	encoder   ports.EncoderClient
	chunkSize int
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewSimilaritySelector creates a selector with the given chunk size.
// A non-positive chunk size falls back to DefaultChunkSize.
func NewSimilaritySelector(encoder ports.EncoderClient, chunkSize int, logger *slog.Logger) *SimilaritySelector {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SimilaritySelector{
		encoder:   encoder,
		chunkSize: chunkSize,
		logger:    logger,
		tracer:    otel.Tracer("similarity-selector"),
	}
}

// Select returns the most relevant candidate and its score, or ok=false
// when there are no candidates. One candidate returns immediately with
// score 1.0, skipping the model call. Ties break toward the first
// candidate in input order.
func (s *SimilaritySelector) Select(ctx context.Context, query string, candidates []domain.ContextPassage) (Selection, bool) {
	if len(candidates) == 0 {
		return Selection{}, false
	}
	if len(candidates) == 1 {
		return Selection{Passage: candidates[0], Score: 1.0}, true
	}

	ctx, span := s.tracer.Start(ctx, "SimilaritySelector.Select",
		trace.WithAttributes(
			attribute.Int("selector.candidates", len(candidates)),
			attribute.Int("selector.chunk_size", s.chunkSize),
		),
	)
	defer span.End()

	sel, err := s.maxSim(ctx, query, candidates)
	if err != nil {
		// Encoder unavailability must never surface to the caller; the
		// first candidate is the deterministic fallback.
		span.RecordError(err)
		s.logger.Warn("embedding call failed, falling back to first passage",
			"error", err, "candidates", len(candidates))
		return Selection{Passage: candidates[0], Score: 0}, true
	}

	span.SetAttributes(
		attribute.Int("selector.selected_id", sel.Passage.ID),
		attribute.Float64("selector.max_sim", sel.Score),
	)
	return sel, true
}

func (s *SimilaritySelector) maxSim(ctx context.Context, query string, candidates []domain.ContextPassage) (Selection, error) {
	// One batch call embeds the query and every chunk of every candidate.
	// chunkOwner[i] maps chunk i back to its candidate.
	texts := []string{query}
	var chunkOwner []int
	for ci, cand := range candidates {
		for _, chunk := range chunkWords(cand.Text, s.chunkSize) {
			texts = append(texts, chunk)
			chunkOwner = append(chunkOwner, ci)
		}
	}

	embeddings, err := s.encoder.EmbedBatch(ctx, texts)
	if err != nil {
		return Selection{}, err
	}
	if len(embeddings) != len(texts) {
		return Selection{}, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}

	queryVec := embeddings[0]
	best := make([]float64, len(candidates))
	for i := range best {
		best[i] = math.Inf(-1)
	}
	for i, owner := range chunkOwner {
		if sim := cosineSimilarity(queryVec, embeddings[i+1]); sim > best[owner] {
			best[owner] = sim
		}
	}
	// Candidates with no chunks (empty text) score 0, matching the
	// behavior of scoring an empty passage rather than excluding it.
	for i := range best {
		if math.IsInf(best[i], -1) {
			best[i] = 0
		}
	}

	// First candidate with the maximum score wins; input order is stable.
	winner := 0
	for i := 1; i < len(best); i++ {
		if best[i] > best[winner] {
			winner = i
		}
	}
	return Selection{Passage: candidates[winner], Score: best[winner]}, nil
}

// chunkWords splits text into whitespace-delimited chunks of size words.
// The last chunk may be shorter. Empty text yields no chunks.
func chunkWords(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
