package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Ollama provider constants.
const (
	// OllamaDefaultModel is a reasonable local judge model.
	OllamaDefaultModel = "llama3.1:8b"

	// OllamaDefaultBaseURL targets a local Ollama daemon.
	OllamaDefaultBaseURL = "http://localhost:11434"

	// ollamaRequestTimeout is deliberately enormous. Local models on CPU
	// can take minutes per judgment; the pipeline's resilience comes from
	// degrading per turn, not from cutting the judge off early.
	ollamaRequestTimeout = 7200 * time.Second

	// ollamaConnectTimeout fails fast when the daemon is not running.
	ollamaConnectTimeout = 10 * time.Second
)

// Fixed sampling parameters for judge generations. Low temperature and
// tight nucleus/top-k sampling keep judgments near-deterministic.
const (
	ollamaTopK          = 10
	ollamaTopP          = 0.9
	ollamaRepeatPenalty = 1.1
)

func init() {
	RegisterProviderFactory("ollama", newOllamaProvider)
}

// ollamaProvider implements CoreLLM against Ollama's /api/generate
// endpoint. No API key is required; the daemon is assumed local or on a
// trusted network.
type ollamaProvider struct {
	BaseProvider
	baseURL         string
	httpClient      *http.Client
	tokenCounter    *TokenCounter
	errorClassifier *ErrorClassifier
}

func newOllamaProvider(config ClientConfig) (CoreLLM, error) {
	model := config.Model
	if model == "" {
		model = OllamaDefaultModel
	}
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = OllamaDefaultBaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = ollamaRequestTimeout
	}

	return &ollamaProvider{
		BaseProvider: BaseProvider{model: model},
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: ollamaConnectTimeout}).DialContext,
			},
		},
		tokenCounter:    NewTokenCounter(),
		errorClassifier: &ErrorClassifier{Provider: "ollama"},
	}, nil
}

// ollamaGenerateRequest is the /api/generate request body. Streaming is
// always disabled; the judge needs the complete reply to parse it.
type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

// DoRequest sends a single non-streaming generation request.
func (p *ollamaProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := ParseRequestOptions(opts, p.GetModel())

	body := ollamaGenerateRequest{
		Model:   options.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: p.buildModelOptions(options),
	}
	if options.Format == "json" {
		body.Format = "json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to encode ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, 0, p.errorClassifier.ClassifyContextError(ctx.Err())
		}
		return "", 0, 0, NewProviderError("ollama", ErrorTypeNetwork, 0, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, 0, NewProviderError("ollama", ErrorTypeNetwork, 0, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, 0, p.errorClassifier.ClassifyHTTPError(resp.StatusCode, strings.TrimSpace(string(raw)), nil)
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", 0, 0, NewProviderError("ollama", ErrorTypeServerError, resp.StatusCode, "malformed response body", err)
	}
	if out.Error != "" {
		return "", 0, 0, NewProviderError("ollama", ErrorTypeServerError, resp.StatusCode, out.Error, nil)
	}
	if out.Response == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	tokensIn := p.tokenCounter.GetTokenCount(out.PromptEvalCount, prompt)
	tokensOut := p.tokenCounter.GetTokenCount(out.EvalCount, out.Response)
	return out.Response, tokensIn, tokensOut, nil
}

// buildModelOptions maps standardized options onto Ollama's options block.
// num_predict and num_ctx come from the caller; sampling parameters are
// fixed to keep judgments reproducible.
func (p *ollamaProvider) buildModelOptions(options RequestOptions) map[string]any {
	modelOpts := map[string]any{
		"top_k":          ollamaTopK,
		"top_p":          ollamaTopP,
		"repeat_penalty": ollamaRepeatPenalty,
	}
	if options.MaxTokens > 0 {
		modelOpts["num_predict"] = options.MaxTokens
	}
	if options.Temperature != nil {
		modelOpts["temperature"] = clampFloat(*options.Temperature, 0.0, 1.0)
	}
	if options.ContextWindow > 0 {
		modelOpts["num_ctx"] = options.ContextWindow
	}
	if options.TopP != nil {
		modelOpts["top_p"] = clampFloat(*options.TopP, 0.0, 1.0)
	}
	return modelOpts
}
