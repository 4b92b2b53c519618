package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaDoRequest(t *testing.T) {
	var captured ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response:        `{"hallucination": false}`,
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       40,
		})
	}))
	defer srv.Close()

	core, err := newOllamaProvider(ClientConfig{Model: "llama3.1:8b", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, tokensIn, tokensOut, err := core.DoRequest(context.Background(), "judge this", map[string]any{
		"temperature":    0.1,
		"max_tokens":     150,
		"context_window": 4096,
		"format":         "json",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"hallucination": false}`, resp)
	assert.Equal(t, 120, tokensIn)
	assert.Equal(t, 40, tokensOut)

	assert.Equal(t, "llama3.1:8b", captured.Model)
	assert.Equal(t, "judge this", captured.Prompt)
	assert.False(t, captured.Stream)
	assert.Equal(t, "json", captured.Format)
	assert.Equal(t, float64(150), captured.Options["num_predict"])
	assert.Equal(t, float64(4096), captured.Options["num_ctx"])
	assert.Equal(t, 0.1, captured.Options["temperature"])
	assert.Equal(t, float64(ollamaTopK), captured.Options["top_k"])
	assert.Equal(t, ollamaTopP, captured.Options["top_p"])
	assert.Equal(t, ollamaRepeatPenalty, captured.Options["repeat_penalty"])
}

func TestOllamaDoRequestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	core, err := newOllamaProvider(ClientConfig{Model: "missing", BaseURL: srv.URL})
	require.NoError(t, err)

	_, _, _, err = core.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrorTypeNotFound, provErr.Type)
	assert.False(t, provErr.IsRetryable())
}

func TestOllamaDoRequestBodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Error: "out of memory"})
	}))
	defer srv.Close()

	core, err := newOllamaProvider(ClientConfig{Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)

	_, _, _, err = core.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestOllamaDoRequestUnreachable(t *testing.T) {
	core, err := newOllamaProvider(ClientConfig{Model: "m", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, _, _, err = core.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrorTypeNetwork, provErr.Type)
	assert.True(t, provErr.IsRetryable())
}

func TestOllamaDefaults(t *testing.T) {
	core, err := newOllamaProvider(ClientConfig{})
	require.NoError(t, err)
	assert.Equal(t, OllamaDefaultModel, core.GetModel())
}
