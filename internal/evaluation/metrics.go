package evaluation

import (
	"math"
	"time"

	"github.com/ahrav/go-verdict/internal/domain"
)

// timestampLayouts are tried in order when parsing turn timestamps.
// Upstream producers are inconsistent about fractional seconds and zone
// notation.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ComputeTurnMetrics derives the operational metrics for one turn pair.
// Latency is the delta between the user and AI turn timestamps; a
// timestamp that fails to parse yields latency 0 rather than an error, and
// negative deltas clamp to 0. Cost is proportional to the summed token
// counts of the used passages. Pure function: no network calls, safe on
// empty passage lists.
func ComputeTurnMetrics(userTimestamp, aiTimestamp string, used []domain.ContextPassage, costPer1KTokens float64) domain.TurnMetrics {
	var latencyMs float64
	userAt, errUser := parseTimestamp(userTimestamp)
	aiAt, errAI := parseTimestamp(aiTimestamp)
	if errUser == nil && errAI == nil {
		latencyMs = float64(aiAt.Sub(userAt)) / float64(time.Millisecond)
		if latencyMs < 0 {
			latencyMs = 0
		}
	}

	tokens := 0
	for _, p := range used {
		tokens += p.Tokens
	}
	cost := float64(tokens) / 1000 * costPer1KTokens

	return domain.TurnMetrics{
		LatencyMs:  round2(latencyMs),
		CostUSD:    round6(cost),
		TokensUsed: tokens,
	}
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
