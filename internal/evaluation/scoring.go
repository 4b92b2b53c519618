package evaluation

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-verdict/internal/domain"
	"github.com/ahrav/go-verdict/internal/ports"
)

// Fixed dimension weights for the overall score. These coefficients are a
// compatibility contract: hallucination-freedom and completeness dominate,
// latency and cost act as tie-breakers. Do not tune.
const (
	WeightRelevance     = 0.2
	WeightCompleteness  = 0.3
	WeightHallucination = 0.4
	WeightLatency       = 0.05
	WeightCost          = 0.05
)

const (
	// DefaultLatencySLAMs is the latency at which the latency score decays
	// to zero.
	DefaultLatencySLAMs = 10000.0

	// DefaultMaxCostUSD is the cost at which the cost score decays to zero.
	DefaultMaxCostUSD = 0.001

	// relevanceFallback substitutes for a judge that returned no relevance
	// score at all.
	relevanceFallback = 0.8

	// completenessFallback substitutes for a missing completeness score.
	completenessFallback = 0.5

	// maxSeverityTier normalizes per-claim penalties so that a single
	// maximum-severity hallucination zeroes its claim's share of the score.
	maxSeverityTier = 1.0

	// minExpectedWords floors the expected response length used by the
	// completeness length factor.
	minExpectedWords = 30

	// queryWordMultiplier scales the query length into an expected
	// response length.
	queryWordMultiplier = 5
)

// ScoringEngine combines judge output, entailment evidence, and
// operational metrics into the five dimension scores and the weighted
// overall score. Scoring is deterministic: the same inputs always produce
// the same TurnScores.
type ScoringEngine struct {
	classifier ports.SeverityClassifier

	slaMs               float64
	maxCostUSD          float64
	claimMatchThreshold float64
}

// NewScoringEngine creates a scoring engine. A nil classifier falls back
// to the default keyword classifier; non-positive bounds fall back to the
// documented defaults.
func NewScoringEngine(classifier ports.SeverityClassifier, cfg Config) *ScoringEngine {
	if classifier == nil {
		classifier = NewKeywordSeverityClassifier()
	}
	slaMs := cfg.LatencySLAMs
	if slaMs <= 0 {
		slaMs = DefaultLatencySLAMs
	}
	maxCost := cfg.MaxCostUSD
	if maxCost <= 0 {
		maxCost = DefaultMaxCostUSD
	}
	threshold := cfg.ClaimMatchThreshold
	if threshold <= 0 {
		threshold = DefaultClaimMatchThreshold
	}
	return &ScoringEngine{
		classifier:          classifier,
		slaMs:               slaMs,
		maxCostUSD:          maxCost,
		claimMatchThreshold: threshold,
	}
}

// Score derives the per-dimension scores for one turn. The entailment
// check is optional evidence; when present, its per-claim scores are used
// as confidence-of-correctness for matching judge claims.
func (se *ScoringEngine) Score(query, response string, judgment domain.Judgment, metrics domain.TurnMetrics, entailment *domain.HallucinationCheck) domain.TurnScores {
	scores := domain.TurnScores{
		Relevance:     se.relevanceScore(judgment),
		Completeness:  se.completenessScore(query, response, judgment),
		Hallucination: se.hallucinationScore(response, judgment.HallucinatedClaims, entailment),
		Latency:       se.latencyScore(metrics.LatencyMs),
		Cost:          se.costScore(metrics.CostUSD),
	}
	scores.Overall = Overall(scores.Relevance, scores.Completeness, scores.Hallucination, scores.Latency, scores.Cost)
	return scores
}

// Overall applies the fixed dimension weights. Exposed separately so the
// weighting contract is testable in isolation.
func Overall(relevance, completeness, hallucination, latency, cost float64) float64 {
	return WeightRelevance*relevance +
		WeightCompleteness*completeness +
		WeightHallucination*hallucination +
		WeightLatency*latency +
		WeightCost*cost
}

// relevanceScore passes the judge's relevance through, substituting the
// fallback when the judge omitted the field entirely.
func (se *ScoringEngine) relevanceScore(judgment domain.Judgment) float64 {
	if !judgment.RelevancePresent {
		return relevanceFallback
	}
	return domain.ClampUnit(judgment.RelevanceScore)
}

// completenessScore attenuates the judge's completeness by a response
// length adequacy factor. A response far shorter than expected for the
// query is penalized, but never to zero: the judge score already carries
// partial credit.
func (se *ScoringEngine) completenessScore(query, response string, judgment domain.Judgment) float64 {
	base := completenessFallback
	if judgment.CompletenessPresent {
		base = domain.ClampUnit(judgment.CompletenessScore)
	}

	expected := float64(len(strings.Fields(query)) * queryWordMultiplier)
	if expected < minExpectedWords {
		expected = minExpectedWords
	}
	lengthFactor := float64(len(strings.Fields(response))) / expected
	if lengthFactor > 1 {
		lengthFactor = 1
	}

	return domain.ClampUnit(base * (0.7 + 0.3*lengthFactor))
}

// hallucinationScore computes the severity-weighted hallucination penalty.
//
// No flagged claims means a perfect score. If the response contains no
// factual sentences (everything is opinion-marked), nothing falsifiable
// was claimed and the score is also perfect. Otherwise each claim
// contributes severity x (1 - confidence), where confidence defaults to 0
// for a judge-flagged claim and is borrowed from matching entailment
// evidence when available. The summed penalty is normalized against the
// maximum severity tier per claim, so one medical-tier hallucination
// outweighs several logistics-tier ones.
func (se *ScoringEngine) hallucinationScore(response string, claims []string, entailment *domain.HallucinationCheck) float64 {
	if len(claims) == 0 {
		return 1.0
	}
	if len(factualSentences(response)) == 0 {
		return 1.0
	}

	var penalty float64
	for _, claim := range claims {
		severity := se.classifier.Severity(claim)
		confidence := se.claimConfidence(claim, entailment)
		penalty += severity * (1 - confidence)
	}
	penalty /= float64(len(claims)) * maxSeverityTier

	return domain.ClampUnit(1 - penalty)
}

// claimConfidence looks up entailment evidence for a judge claim. Flagged
// claims carry confidence 0 by default; when the entailment scorer saw a
// sufficiently similar sentence, its score substitutes as the claim's
// probability of being correct.
func (se *ScoringEngine) claimConfidence(claim string, entailment *domain.HallucinationCheck) float64 {
	if entailment == nil {
		return 0
	}
	bestSim := 0.0
	confidence := 0.0
	for _, ec := range entailment.HallucinatedClaims {
		if sim := stringSimilarity(claim, ec.Claim); sim >= se.claimMatchThreshold && sim > bestSim {
			bestSim = sim
			confidence = domain.ClampUnit(ec.Score)
		}
	}
	return confidence
}

// latencyScore decays linearly from 1 at zero latency to 0 at the SLA
// boundary, never going negative.
func (se *ScoringEngine) latencyScore(latencyMs float64) float64 {
	score := 1 - latencyMs/se.slaMs
	if score < 0 {
		return 0
	}
	return score
}

// costScore decays linearly from 1 at zero cost to 0 at the configured
// maximum, never going negative.
func (se *ScoringEngine) costScore(costUSD float64) float64 {
	score := 1 - costUSD/se.maxCostUSD
	if score < 0 {
		return 0
	}
	return score
}

// stringSimilarity is a normalized Levenshtein similarity in [0, 1],
// case-folded, 1.0 for identical strings.
func stringSimilarity(a, b string) float64 {
	a = foldCaser.String(strings.TrimSpace(a))
	b = foldCaser.String(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	sim := 1.0 - float64(distance)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}
