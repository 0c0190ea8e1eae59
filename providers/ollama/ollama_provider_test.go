package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codectx/codectx/providers/models"
	"github.com/codectx/codectx/token_management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OllamaConfig {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	provider := NewOllamaSummaryProvider(&OllamaConfig{
		BaseURL:         server.URL,
		Model:           "llama3.1",
		TokenManagement: token_management.NewTokenManager(),
	})
	return provider.(*OllamaConfig)
}

func TestSummarize_Success(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3.1", req.Model)

		resp := ollamaChatResponse{
			Message:         models.Message{Role: "assistant", Content: "- **Role**: helper"},
			Done:            true,
			PromptEvalCount: 80,
			EvalCount:       20,
		}
		json.NewEncoder(w).Encode(resp)
	})

	out, err := provider.Summarize(context.Background(), "util.py", "def helper(): pass")
	require.NoError(t, err)
	assert.Equal(t, "- **Role**: helper", out)

	total, _, _ := provider.TokenManagement.GetCurrentTokenUsage()
	assert.Equal(t, 100, total)
}

func TestSummarize_ServerErrorIsTransient(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := provider.Summarize(context.Background(), "a.py", "x")
	var reqErr *models.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, reqErr.Retryable())
}

func TestSummarize_BadRequestIsTerminal(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("model not found"))
	})

	_, err := provider.Summarize(context.Background(), "a.py", "x")
	var reqErr *models.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.False(t, reqErr.Retryable())
}

func TestNewOllamaSummaryProvider_Defaults(t *testing.T) {
	provider := NewOllamaSummaryProvider(&OllamaConfig{}).(*OllamaConfig)
	assert.Equal(t, "http://localhost:11434/api", provider.BaseURL)
	assert.Equal(t, "llama3.1", provider.Model)
}
