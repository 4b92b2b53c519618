// Package evaluation implements the turn evaluation pipeline: similarity
// based context selection, LLM-judge judgment with defensive parsing,
// operational metrics, severity-weighted scoring, and the orchestration
// that runs per-turn pipelines concurrently and rolls them up into a
// conversation-level result.
package evaluation

import (
	"bytes"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Default pipeline tunables. Batch size and thresholds are tunables, not
// contracts; the scoring weights in scoring.go are contracts.
const (
	// DefaultChunkSize is the word count per passage chunk for MaxSim.
	DefaultChunkSize = 100

	// DefaultMaxConcurrency bounds in-flight turn pipelines, and therefore
	// peak concurrent judge calls.
	DefaultMaxConcurrency = 10

	// DefaultJudgeMaxTokens bounds judge generation length.
	DefaultJudgeMaxTokens = 150

	// DefaultJudgeTemperature keeps judge sampling near-deterministic.
	DefaultJudgeTemperature = 0.1

	// DefaultJudgeContextWindow is the judge context window hint.
	DefaultJudgeContextWindow = 4096

	// DefaultCostPer1KTokens is the cost rate applied to used-context
	// tokens.
	DefaultCostPer1KTokens = 0.0001

	// DefaultEntailmentThreshold is the minimum pair score counted as
	// entailment.
	DefaultEntailmentThreshold = 0.5

	// DefaultContradictionThreshold is the maximum pair score counted as
	// contradiction.
	DefaultContradictionThreshold = 0.3

	// DefaultClaimMatchThreshold is the minimum normalized string
	// similarity for pairing a judge claim with entailment evidence.
	DefaultClaimMatchThreshold = 0.8
)

// Config holds the pipeline tunables for one evaluation engine instance.
// All fields are validated at engine construction.
type Config struct {
	// ChunkSize is the number of whitespace-delimited words per passage
	// chunk when computing MaxSim.
	ChunkSize int `yaml:"chunk_size" validate:"min=1,max=2000"`

	// MaxConcurrency limits the number of turn pipelines in flight at
	// once. Sequential execution is too slow when the judge dominates
	// latency; unbounded parallelism risks overwhelming the judge service.
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1,max=100"`

	// JudgeMaxTokens bounds the judge's generation length.
	JudgeMaxTokens int `yaml:"judge_max_tokens" validate:"min=50,max=2000"`

	// JudgeTemperature controls judge sampling randomness.
	JudgeTemperature float64 `yaml:"judge_temperature" validate:"min=0,max=1"`

	// JudgeContextWindow is passed through to providers that accept a
	// context window hint.
	JudgeContextWindow int `yaml:"judge_context_window" validate:"min=512"`

	// CostPer1KTokens converts used-context token counts into currency
	// units.
	CostPer1KTokens float64 `yaml:"cost_per_1k_tokens" validate:"min=0"`

	// LatencySLAMs is the latency at which the latency score reaches zero.
	LatencySLAMs float64 `yaml:"latency_sla_ms" validate:"gt=0"`

	// MaxCostUSD is the cost at which the cost score reaches zero.
	MaxCostUSD float64 `yaml:"max_cost_usd" validate:"gt=0"`

	// EnableEntailment turns on the sentence-level entailment scorer as an
	// additional evidence source.
	EnableEntailment bool `yaml:"enable_entailment"`

	// EntailmentThreshold classifies pair scores above it as entailment.
	EntailmentThreshold float64 `yaml:"entailment_threshold" validate:"min=0,max=1"`

	// ContradictionThreshold classifies pair scores below it as
	// contradiction.
	ContradictionThreshold float64 `yaml:"contradiction_threshold" validate:"min=0,max=1"`

	// ClaimMatchThreshold is the minimum similarity for matching judge
	// claims to entailment claims when borrowing confidence values.
	ClaimMatchThreshold float64 `yaml:"claim_match_threshold" validate:"min=0,max=1"`
}

// DefaultConfig returns a Config with production defaults matching the
// documented pipeline behavior.
func DefaultConfig() Config {
	return Config{
		ChunkSize:              DefaultChunkSize,
		MaxConcurrency:         DefaultMaxConcurrency,
		JudgeMaxTokens:         DefaultJudgeMaxTokens,
		JudgeTemperature:       DefaultJudgeTemperature,
		JudgeContextWindow:     DefaultJudgeContextWindow,
		CostPer1KTokens:        DefaultCostPer1KTokens,
		LatencySLAMs:           DefaultLatencySLAMs,
		MaxCostUSD:             DefaultMaxCostUSD,
		EnableEntailment:       false,
		EntailmentThreshold:    DefaultEntailmentThreshold,
		ContradictionThreshold: DefaultContradictionThreshold,
		ClaimMatchThreshold:    DefaultClaimMatchThreshold,
	}
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if c.ContradictionThreshold > c.EntailmentThreshold {
		return fmt.Errorf("contradiction threshold %.2f exceeds entailment threshold %.2f",
			c.ContradictionThreshold, c.EntailmentThreshold)
	}
	return nil
}

// ParseConfig decodes a YAML document into a Config, starting from
// defaults and rejecting unknown fields so typos fail loudly.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config (check for typos): %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
