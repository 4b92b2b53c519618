package evaluation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// Orchestrator runs the per-turn evaluation pipeline over every AI turn of
// a conversation with bounded concurrency. Turn failures degrade in place
// (neutral judgments, dropped entailment evidence) rather than aborting
// siblings; the only fatal error class is request validation, which is the
// engine's concern, not the orchestrator's.
type Orchestrator struct {
	selector   *SimilaritySelector
	judge      *JudgeClient
	entailment *EntailmentScorer
	scoring    *ScoringEngine

	maxConcurrency  int
	costPer1KTokens float64

	logger  *slog.Logger
	tracer  trace.Tracer
	metrics ports.MetricsCollector
}

// NewOrchestrator wires the pipeline stages together. The entailment
// scorer and metrics collector are optional; nil disables them.
func NewOrchestrator(
	selector *SimilaritySelector,
	judge *JudgeClient,
	entailment *EntailmentScorer,
	scoring *ScoringEngine,
	cfg Config,
	logger *slog.Logger,
	metrics ports.MetricsCollector,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	costPer1K := cfg.CostPer1KTokens
	if costPer1K < 0 {
		costPer1K = DefaultCostPer1KTokens
	}
	return &Orchestrator{
		selector:        selector,
		judge:           judge,
		entailment:      entailment,
		scoring:         scoring,
		maxConcurrency:  maxConcurrency,
		costPer1KTokens: costPer1K,
		logger:          logger,
		tracer:          otel.Tracer("evaluation-orchestrator"),
		metrics:         metrics,
	}
}

// turnPair is an AI turn matched with its preceding user turn.
type turnPair struct {
	user domain.ConversationTurn
	ai   domain.ConversationTurn
}

// EvaluateTurns evaluates every pairable AI turn of the conversation and
// returns the per-turn results in conversation order, regardless of
// completion order. AI turns without a user turn at the preceding ordinal
// are skipped with a log line. The slice may be empty; it is never nil.
func (o *Orchestrator) EvaluateTurns(ctx context.Context, conv domain.Conversation, contextSet domain.ContextSet) []domain.TurnEvaluation {
	ctx, span := o.tracer.Start(ctx, "Orchestrator.EvaluateTurns",
		trace.WithAttributes(
			attribute.Int("conversation.chat_id", conv.ChatID),
			attribute.Int("conversation.turns", len(conv.Turns)),
		),
	)
	defer span.End()

	used := contextSet.UsedPassages()

	var pairs []turnPair
	for _, ai := range conv.AITurns() {
		user, ok := conv.UserTurnBefore(ai)
		if !ok {
			o.logger.Info("skipping AI turn without preceding user turn",
				"chat_id", conv.ChatID, "turn", ai.Turn)
			o.count("evaluation_turns_skipped_total", 1)
			continue
		}
		pairs = append(pairs, turnPair{user: user, ai: ai})
	}

	span.SetAttributes(attribute.Int("evaluation.pairs", len(pairs)))
	if len(pairs) == 0 {
		return []domain.TurnEvaluation{}
	}

	// Results are written by pair index under the mutex, so output order is
	// conversation order no matter which goroutine finishes first.
	results := make([]domain.TurnEvaluation, len(pairs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrency)

	for i, pair := range pairs {
		g.Go(func() error {
			eval := o.evaluateTurn(gctx, pair, used)
			mu.Lock()
			results[i] = eval
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; degradation happens per turn.
	_ = g.Wait()

	o.count("evaluation_turns_total", float64(len(results)))
	return results
}

// evaluateTurn runs the full pipeline for one turn pair: context selection,
// judge call, optional entailment check, metrics, and scoring.
func (o *Orchestrator) evaluateTurn(ctx context.Context, pair turnPair, used []domain.ContextPassage) domain.TurnEvaluation {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "Orchestrator.evaluateTurn",
		trace.WithAttributes(attribute.Int("turn", pair.ai.Turn)),
	)
	defer span.End()

	// The judge sees only the single most relevant passage; cost accounting
	// below still charges for the full used set, which is what retrieval
	// actually consumed.
	var judgePassages []domain.ContextPassage
	if sel, ok := o.selector.Select(ctx, pair.user.Message, used); ok {
		judgePassages = []domain.ContextPassage{sel.Passage}
		span.SetAttributes(
			attribute.Int("selector.passage_id", sel.Passage.ID),
			attribute.Float64("selector.score", sel.Score),
		)
	}

	judgment := o.judge.Judge(ctx, pair.user.Message, pair.ai.Message, judgePassages)
	if judgment.Method == domain.MethodLLMJudgeError {
		o.count("evaluation_judge_errors_total", 1)
	}

	var entailmentCheck *domain.HallucinationCheck
	if o.entailment != nil {
		texts := make([]string, len(used))
		for i, p := range used {
			texts[i] = p.Text
		}
		check, err := o.entailment.Check(ctx, texts, pair.ai.Message)
		if err != nil {
			// Entailment is optional evidence; losing it only means claims
			// keep their default zero confidence.
			o.logger.Warn("entailment check failed, continuing without evidence",
				"turn", pair.ai.Turn, "error", err)
			o.count("evaluation_entailment_errors_total", 1)
		} else {
			entailmentCheck = &check
		}
	}

	metrics := ComputeTurnMetrics(pair.user.CreatedAt, pair.ai.CreatedAt, used, o.costPer1KTokens)
	scores := o.scoring.Score(pair.user.Message, pair.ai.Message, judgment, metrics, entailmentCheck)

	if o.metrics != nil {
		o.metrics.RecordLatency("evaluate_turn", time.Since(start), nil)
		o.metrics.RecordHistogram("evaluation_overall_score", scores.Overall, nil)
	}
	span.SetAttributes(attribute.Float64("scores.overall", scores.Overall))

	return domain.TurnEvaluation{
		Turn:            pair.ai.Turn,
		UserQuery:       pair.user.Message,
		AIResponse:      pair.ai.Message,
		EntailmentCheck: entailmentCheck,
		Judgment:        judgment,
		Metrics:         metrics,
		Scores:          scores,
		UsedLLM:         true,
	}
}

func (o *Orchestrator) count(metric string, v float64) {
	if o.metrics != nil {
		o.metrics.RecordCounter(metric, v, nil)
	}
}
