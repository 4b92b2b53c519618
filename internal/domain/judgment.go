package domain

// Provenance tags recording how a Judgment was produced.
const (
	// MethodLLMJudge marks a judgment parsed from a successful judge call.
	MethodLLMJudge = "llm_judge"

	// MethodLLMJudgeError marks a neutral default judgment substituted after
	// a judge transport failure.
	MethodLLMJudgeError = "llm_judge_error"
)

// Judgment is the normalized output of one judge-model call for one turn.
// It is created once per turn and never mutated afterwards. When the judge
// is unreachable or its output unparseable, a neutral default takes its
// place so that a single judge failure never aborts sibling turns.
type Judgment struct {
	// Hallucination reports whether the response contains information not
	// supported by the supplied context.
	Hallucination bool `json:"hallucination"`

	// HallucinatedClaims lists the unsupported claims as plain text,
	// regardless of the structure the judge model returned them in.
	HallucinatedClaims []string `json:"hallucinated_claims"`

	// RelevanceScore rates how well the response addresses the query, in
	// [0, 1].
	RelevanceScore float64 `json:"relevance_score"`

	// RelevancePresent records whether the judge actually supplied a
	// relevance score; the scoring engine substitutes its own fallback when
	// it did not.
	RelevancePresent bool `json:"-"`

	// CompletenessScore rates how completely the response covers the query,
	// in [0, 1].
	CompletenessScore float64 `json:"completeness_score"`

	// CompletenessPresent records whether the judge supplied a completeness
	// score.
	CompletenessPresent bool `json:"-"`

	// MissingInfo lists information the judge considered absent from the
	// response, as plain text.
	MissingInfo []string `json:"missing_info"`

	// Method is the provenance tag, MethodLLMJudge or MethodLLMJudgeError.
	Method string `json:"method"`

	// Error carries the transport error detail when Method is
	// MethodLLMJudgeError.
	Error string `json:"error,omitempty"`
}

// NeutralJudgment returns the safe default substituted when the judge's
// reply cannot be parsed: no hallucination flagged, both scores at 0.5,
// empty claim and missing-info lists.
func NeutralJudgment() Judgment {
	return Judgment{
		Hallucination:       false,
		HallucinatedClaims:  []string{},
		RelevanceScore:      0.5,
		RelevancePresent:    true,
		CompletenessScore:   0.5,
		CompletenessPresent: true,
		MissingInfo:         []string{},
		Method:              MethodLLMJudge,
	}
}

// ErrorJudgment returns the neutral default tagged with the transport error
// that prevented a real judgment from being produced.
func ErrorJudgment(err error) Judgment {
	j := NeutralJudgment()
	j.Method = MethodLLMJudgeError
	if err != nil {
		j.Error = err.Error()
	}
	return j
}

// Clamp bounds both judge scores to [0, 1]. Judgments are always clamped
// before they reach the scoring engine.
func (j Judgment) Clamp() Judgment {
	j.RelevanceScore = ClampUnit(j.RelevanceScore)
	j.CompletenessScore = ClampUnit(j.CompletenessScore)
	return j
}

// ClampUnit bounds v to the closed interval [0, 1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EntailmentLabels classify a sentence's relationship to context.
const (
	LabelEntailment    = "entailment"
	LabelNeutral       = "neutral"
	LabelContradiction = "contradiction"
)

// EntailmentResult scores one response sentence against the context pool.
type EntailmentResult struct {
	// Sentence is the response sentence under test.
	Sentence string `json:"sentence"`

	// EntailmentScore is the best support found across all passages, in
	// [0, 1].
	EntailmentScore float64 `json:"entailment_score"`

	// Label is the classification for the best-supporting passage.
	Label string `json:"label"`
}

// EntailmentClaim is a sentence the entailment scorer flagged as
// unsupported, with its best score and label retained as evidence.
type EntailmentClaim struct {
	Claim string  `json:"claim"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// HallucinationCheck is the entailment scorer's verdict for a whole
// response: the flagged claims, the per-sentence detail, and an aggregate
// confidence. It is an optional evidence source alongside the judge.
type HallucinationCheck struct {
	HallucinationDetected bool               `json:"hallucination_detected"`
	HallucinatedClaims    []EntailmentClaim  `json:"hallucinated_claims"`
	AllSentences          []EntailmentResult `json:"all_sentences"`
	Confidence            float64            `json:"confidence"`
}
