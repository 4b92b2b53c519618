package domain

// TurnMetrics holds the operational measurements for one evaluated turn.
// It is produced by a pure function and safe to compute on empty context.
type TurnMetrics struct {
	// LatencyMs is the delta between the user turn and AI turn timestamps
	// in milliseconds, never negative, zero when either timestamp fails to
	// parse.
	LatencyMs float64 `json:"latency_ms"`

	// CostUSD estimates the context cost in currency units, proportional to
	// the token counts of the used passages.
	CostUSD float64 `json:"cost_usd"`

	// TokensUsed is the summed token count of the used passages.
	TokensUsed int `json:"tokens_used"`
}

// TurnScores are the five dimension scores plus the weighted overall score
// for one turn. All values are on the 0-1 scale; display layers may
// multiply by 100.
type TurnScores struct {
	Relevance     float64 `json:"relevance"`
	Completeness  float64 `json:"completeness"`
	Hallucination float64 `json:"hallucination"`
	Latency       float64 `json:"latency"`
	Cost          float64 `json:"cost"`
	Overall       float64 `json:"overall"`
}

// TurnEvaluation aggregates everything known about one evaluated turn pair.
// The orchestrator creates it, never mutates it after return, and the
// aggregator consumes it.
type TurnEvaluation struct {
	// Turn is the ordinal of the evaluated AI turn.
	Turn int `json:"turn"`

	// UserQuery is the preceding user turn's message.
	UserQuery string `json:"user_query"`

	// AIResponse is the evaluated AI turn's message.
	AIResponse string `json:"ai_response"`

	// EntailmentCheck carries the optional entailment evidence. Nil when
	// the entailment scorer is disabled.
	EntailmentCheck *HallucinationCheck `json:"entailment_check,omitempty"`

	// Judgment is the judge-model verdict, or its neutral substitute.
	Judgment Judgment `json:"llm_judgment"`

	// Metrics are the operational measurements for the turn.
	Metrics TurnMetrics `json:"metrics"`

	// Scores are the derived dimension scores and overall score.
	Scores TurnScores `json:"scores"`

	// UsedLLM reports whether a judge call was attempted for this turn.
	UsedLLM bool `json:"used_llm"`
}

// Summary rolls up conversation-level statistics across all evaluated
// turns. Every mean is 0 when no turns were evaluated.
type Summary struct {
	TotalEvaluations       int     `json:"total_evaluations"`
	HallucinationsDetected int     `json:"hallucinations_detected"`
	LLMCallsMade           int     `json:"llm_calls_made"`
	AvgRelevance           float64 `json:"avg_relevance"`
	AvgCompleteness        float64 `json:"avg_completeness"`
	TotalCost              float64 `json:"total_cost"`
	AvgLatencyMs           float64 `json:"avg_latency_ms"`
}

// EvaluationResult is the aggregate outcome for one evaluation request.
// It is transient: persistence belongs to external collaborators.
type EvaluationResult struct {
	ConversationID       int              `json:"conversation_id"`
	UserID               int              `json:"user_id"`
	TotalTurns           int              `json:"total_turns"`
	AIResponsesEvaluated int              `json:"ai_responses_evaluated"`
	Evaluations          []TurnEvaluation `json:"evaluations"`

	// OverallScore is the mean of per-turn overall scores, on the same 0-1
	// scale as TurnScores.
	OverallScore float64 `json:"overall_score"`

	Summary Summary `json:"summary"`
}
