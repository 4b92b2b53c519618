package evaluation

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// Engine is the top-level entry point for conversation evaluation. It
// validates the request, orchestrates the per-turn pipelines, and
// aggregates the results. One Engine is safe for concurrent use across
// requests.
type Engine struct {
	orchestrator *Orchestrator
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewEngine builds a fully wired engine from its infrastructure
// collaborators. The encoder drives both context selection and the
// optional entailment scorer; the metrics collector may be nil.
func NewEngine(
	llm ports.LLMClient,
	encoder ports.EncoderClient,
	classifier ports.SeverityClassifier,
	metrics ports.MetricsCollector,
	cfg Config,
	logger *slog.Logger,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if encoder == nil {
		return nil, fmt.Errorf("encoder client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	judge, err := NewJudgeClient(llm, cfg, logger)
	if err != nil {
		return nil, err
	}

	selector := NewSimilaritySelector(encoder, cfg.ChunkSize, logger)
	scoring := NewScoringEngine(classifier, cfg)

	var entailment *EntailmentScorer
	if cfg.EnableEntailment {
		entailment = NewEntailmentScorer(encoder, cfg.EntailmentThreshold, cfg.ContradictionThreshold)
	}

	return &Engine{
		orchestrator: NewOrchestrator(selector, judge, entailment, scoring, cfg, logger, metrics),
		logger:       logger,
		tracer:       otel.Tracer("evaluation-engine"),
	}, nil
}

// Evaluate runs the full pipeline for one request. Request validation is
// the only fatal error class; everything downstream degrades per turn.
func (e *Engine) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Evaluate",
		trace.WithAttributes(
			attribute.Int("conversation.chat_id", req.Conversation.ChatID),
			attribute.Int("conversation.user_id", req.Conversation.UserID),
		),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return domain.EvaluationResult{}, err
	}

	evals := e.orchestrator.EvaluateTurns(ctx, req.Conversation, req.Context)
	result := Aggregate(req.Conversation, evals)

	e.logger.Info("conversation evaluated",
		"chat_id", result.ConversationID,
		"turns", result.TotalTurns,
		"evaluated", result.AIResponsesEvaluated,
		"overall_score", result.OverallScore,
		"hallucinations", result.Summary.HallucinationsDetected,
	)
	span.SetAttributes(
		attribute.Int("evaluation.evaluated", result.AIResponsesEvaluated),
		attribute.Float64("evaluation.overall_score", result.OverallScore),
	)
	return result, nil
}
