// Package ports declares the interfaces between the evaluation engine and
// its infrastructure collaborators: the judge model, the embedding/NLI
// encoder service, severity classification, and metrics collection.
// Implementations live under infrastructure/.
package ports

import (
	"context"
	"time"
)

// LLMClient defines the interface for interacting with the judge model
// provider. Implementations handle provider-specific details like
// authentication, request formatting, and response parsing, and must be
// safe for concurrent use.
type LLMClient interface {
	// Complete sends a completion request to the judge provider and returns
	// the generated text. The options map carries provider-specific
	// generation parameters; common options include:
	//   - "temperature": float64 (0.0-1.0)
	//   - "max_tokens": int
	//   - "format": string ("json" requests structured output)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a text.
	// Useful for cost estimation and staying within model limits.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier used by this client.
	GetModel() string
}

// EncoderClient defines the interface to the embedding/NLI encoder
// service. Both operations are short-lived network calls; callers supply
// their own fallback behavior on failure because encoder unavailability
// must never fail an evaluation.
type EncoderClient interface {
	// EmbedBatch returns one embedding vector per input text, in input
	// order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ScorePair returns the entailment probability that the hypothesis is
	// supported by the premise, scaled to [0, 1].
	ScorePair(ctx context.Context, premise, hypothesis string) (float64, error)
}

// SeverityClassifier assigns a domain-risk weight to a hallucinated claim.
// The default implementation is a keyword heuristic; the interface exists
// so a stronger classifier can be substituted without touching the scoring
// engine.
type SeverityClassifier interface {
	// Severity returns the risk weight for the claim text, in (0, 1].
	Severity(claim string) float64
}

// MetricsCollector defines the interface for recording operational metrics.
// Implementations integrate with observability platforms such as
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram distribution.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
