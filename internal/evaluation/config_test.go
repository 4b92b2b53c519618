package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EntailmentThreshold = 0.2
	cfg.ContradictionThreshold = 0.6
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.JudgeTemperature = 1.5
	assert.Error(t, cfg.Validate())
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("max_concurrency: 3\nchunk_size: 50\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.Equal(t, 50, cfg.ChunkSize)
	assert.Equal(t, DefaultJudgeMaxTokens, cfg.JudgeMaxTokens, "unset fields keep defaults")
}

func TestParseConfigRejectsUnknownFields(t *testing.T) {
	_, err := ParseConfig([]byte("max_concurency: 3\n"))
	assert.Error(t, err, "typos must fail loudly")
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	_, err := ParseConfig([]byte("judge_max_tokens: 5\n"))
	assert.Error(t, err)
}
