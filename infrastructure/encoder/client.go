// Package encoder provides the HTTP client for the embedding/NLI encoder
// sidecar. The sidecar hosts the sentence-embedding model used for MaxSim
// context selection and the cross-encoder used for entailment scoring.
package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ahrav/go-verdict/internal/ports"
)

// DefaultTimeout bounds one encoder call. Embedding and pair scoring are
// short model invocations, unlike judge generations.
const DefaultTimeout = 30 * time.Second

// Client talks to the encoder sidecar over HTTP and implements
// ports.EncoderClient. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.EncoderClient = (*Client)(nil)

// NewClient creates an encoder client for the given base URL. A
// non-positive timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("encoder base URL cannot be empty")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedBatch returns one embedding per input text, in input order. An
// empty input short-circuits without a network call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embedResponse
	if err := c.post(ctx, "/embed", embedRequest{Texts: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("encoder returned %d embeddings for %d texts", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}

type scorePairRequest struct {
	Premise    string `json:"premise"`
	Hypothesis string `json:"hypothesis"`
}

type scorePairResponse struct {
	Score float64 `json:"score"`
}

// ScorePair returns the entailment probability that the hypothesis is
// supported by the premise, in [0, 1].
func (c *Client) ScorePair(ctx context.Context, premise, hypothesis string) (float64, error) {
	var out scorePairResponse
	if err := c.post(ctx, "/score-pair", scorePairRequest{Premise: premise, Hypothesis: hypothesis}, &out); err != nil {
		return 0, err
	}
	if out.Score < 0 || out.Score > 1 {
		return 0, fmt.Errorf("encoder returned out-of-range score %f", out.Score)
	}
	return out.Score, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode encoder request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build encoder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("encoder request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read encoder response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("encoder %s returned HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed encoder response from %s: %w", path, err)
	}
	return nil
}
