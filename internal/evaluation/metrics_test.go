package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-verdict/internal/domain"
)

func TestComputeTurnMetricsLatency(t *testing.T) {
	m := ComputeTurnMetrics(
		"2026-03-01T10:00:00Z",
		"2026-03-01T10:00:02.5Z",
		nil, DefaultCostPer1KTokens,
	)
	assert.Equal(t, 2500.0, m.LatencyMs)
}

func TestComputeTurnMetricsUnparseableTimestamp(t *testing.T) {
	m := ComputeTurnMetrics("not a time", "2026-03-01T10:00:02Z", nil, DefaultCostPer1KTokens)
	assert.Equal(t, 0.0, m.LatencyMs, "parse failure yields zero, not an error")
}

func TestComputeTurnMetricsNegativeDeltaClamps(t *testing.T) {
	m := ComputeTurnMetrics("2026-03-01T10:00:05Z", "2026-03-01T10:00:00Z", nil, DefaultCostPer1KTokens)
	assert.Equal(t, 0.0, m.LatencyMs)
}

func TestComputeTurnMetricsAcceptsBareLayouts(t *testing.T) {
	m := ComputeTurnMetrics("2026-03-01 10:00:00", "2026-03-01T10:00:01", nil, DefaultCostPer1KTokens)
	assert.Equal(t, 1000.0, m.LatencyMs)
}

func TestComputeTurnMetricsCost(t *testing.T) {
	used := []domain.ContextPassage{
		passage(1, "a", 300),
		passage(2, "b", 200),
	}
	m := ComputeTurnMetrics("2026-03-01T10:00:00Z", "2026-03-01T10:00:01Z", used, 0.0001)

	assert.Equal(t, 500, m.TokensUsed)
	// 500 tokens / 1000 * 0.0001 = 0.00005
	assert.Equal(t, 0.00005, m.CostUSD)
}

func TestComputeTurnMetricsEmptyContext(t *testing.T) {
	m := ComputeTurnMetrics("2026-03-01T10:00:00Z", "2026-03-01T10:00:01Z", nil, 0.0001)
	assert.Equal(t, 0, m.TokensUsed)
	assert.Equal(t, 0.0, m.CostUSD)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.2349))
	assert.Equal(t, 0.000056, round6(0.00005649))
}
