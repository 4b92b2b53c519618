// Package llm provides the judge-model client used by the evaluation
// pipeline. It abstracts several providers (Ollama, OpenAI, Anthropic,
// Google) behind a common interface and layers cross-cutting concerns such
// as rate limiting, retries, timeouts, and metrics through a middleware
// chain.
//
// Basic usage:
//
//	client, err := llm.NewClient("ollama", llm.ClientConfig{
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3.1:8b",
//	})
//	reply, err := client.Complete(ctx, prompt, map[string]any{"format": "json"})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-verdict/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. Middleware
// wraps any conforming implementation, so providers stay free of
// cross-cutting concerns.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the response
	// text plus input/output token counts. The opts map carries
	// generation parameters such as "temperature", "max_tokens",
	// "context_window", and "format".
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel updates the model for subsequent requests.
	SetModel(model string)
}

// TokenEstimator provides pluggable token estimation for cost accounting
// when the provider does not report usage.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// ClientConfig holds everything needed to construct a judge client.
type ClientConfig struct {
	// APIKey authenticates requests. Local providers such as Ollama do
	// not require one.
	APIKey string

	// Model names the judge model.
	Model string

	// BaseURL overrides the provider's default endpoint. Required for
	// Ollama, optional elsewhere.
	BaseURL string

	// Timeout bounds a single request. Zero means the provider default;
	// judge calls against local models are allowed to be very slow.
	Timeout time.Duration

	// TokenEstimator supplies custom token counting. Nil selects a
	// character-based estimator.
	TokenEstimator TokenEstimator

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// Middleware wraps a CoreLLM to add cross-cutting behavior.
type Middleware func(CoreLLM) CoreLLM

// Client adapts a middleware-wrapped CoreLLM to the ports.LLMClient
// interface consumed by the evaluation engine.
type Client struct {
	core      CoreLLM
	estimator TokenEstimator
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient assembles a provider with its middleware chain. The provider
// type must have been registered; unknown types fail fast.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Apply middleware in reverse order so the first middleware is the
	// outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	estimator := config.TokenEstimator
	if estimator == nil {
		estimator = &SimpleTokenEstimator{}
	}

	return &Client{core: core, estimator: estimator}, nil
}

// Complete sends a prompt and returns the response text, discarding token
// usage for callers that do not track it.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt and returns token usage alongside the
// response text.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// EstimateTokens approximates the token count of the given text.
func (c *Client) EstimateTokens(text string) (int, error) {
	return c.estimator.EstimateTokens(text), nil
}

// GetModel returns the configured model name.
func (c *Client) GetModel() string { return c.core.GetModel() }

// SimpleTokenEstimator approximates 4 characters per token, which holds
// reasonably for English text.
type SimpleTokenEstimator struct{}

func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ProviderFactory creates a CoreLLM from configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a type name.
// Providers in this package self-register from init.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
