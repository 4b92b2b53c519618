package llm

import "sync"

// DefaultMaxTokens bounds generation length when the caller does not
// specify one.
const DefaultMaxTokens = 1024

// BaseProvider supplies thread-safe model name management shared by all
// providers.
type BaseProvider struct {
	mu    sync.RWMutex
	model string
}

// GetModel returns the configured model name. Safe for concurrent use.
func (b *BaseProvider) GetModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// SetModel updates the model name. Safe for concurrent use.
func (b *BaseProvider) SetModel(model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
}

// RequestOptions is the standardized parameter set extracted from the
// options map before a provider call.
type RequestOptions struct {
	// MaxTokens bounds generation length.
	MaxTokens int
	// Model overrides the provider's configured model for this request.
	Model string
	// Temperature controls sampling randomness; nil keeps the provider
	// default.
	Temperature *float64
	// TopP enables nucleus sampling; nil keeps the provider default.
	TopP *float64
	// ContextWindow hints the model context size for providers that
	// accept one (Ollama's num_ctx).
	ContextWindow int
	// Format requests a structured output mode; "json" asks the provider
	// for strict JSON output where supported.
	Format string
	// System carries an optional system prompt.
	System string
	// Extra holds provider-specific options outside the standard set.
	Extra map[string]any
}

// standardOptionKeys are consumed by ParseRequestOptions; everything else
// lands in Extra.
var standardOptionKeys = map[string]bool{
	"max_tokens":     true,
	"model":          true,
	"temperature":    true,
	"top_p":          true,
	"context_window": true,
	"format":         true,
	"system":         true,
}

// ParseRequestOptions extracts standardized parameters from an options
// map, applying defaults for missing or invalid entries and collecting
// unrecognized keys into Extra.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens:     optionalInt(opts, "max_tokens", DefaultMaxTokens),
		Model:         optionalString(opts, "model", defaultModel),
		ContextWindow: optionalInt(opts, "context_window", 0),
		Format:        optionalString(opts, "format", ""),
		System:        optionalString(opts, "system", ""),
		Extra:         make(map[string]any),
	}

	if temp, ok := optionalFloat64(opts, "temperature"); ok {
		options.Temperature = &temp
	}
	if topP, ok := optionalFloat64(opts, "top_p"); ok {
		options.TopP = &topP
	}

	for k, v := range opts {
		if !standardOptionKeys[k] {
			options.Extra[k] = v
		}
	}
	return options
}

func optionalInt(opts map[string]any, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return def
}

func optionalString(opts map[string]any, key, def string) string {
	if s, ok := opts[key].(string); ok && s != "" {
		return s
	}
	return def
}

func optionalFloat64(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// clampFloat restricts v to [min, max].
func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// TokenCounter estimates token counts when a provider does not report
// usage. The ratio is an approximation suitable for English text.
type TokenCounter struct {
	CharactersPerToken float64
}

// NewTokenCounter creates a counter with the default ratio.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{CharactersPerToken: 4.0}
}

// EstimateTokens approximates the token count of text.
func (tc *TokenCounter) EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(len(text)) / tc.CharactersPerToken)
}

// GetTokenCount prefers the provider-reported count, falling back to
// estimation when it is absent.
func (tc *TokenCounter) GetTokenCount(actualCount int, text string) int {
	if actualCount > 0 {
		return actualCount
	}
	return tc.EstimateTokens(text)
}
