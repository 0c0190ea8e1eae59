package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/codectx/codectx/embed_data"
	"github.com/codectx/codectx/providers/contracts"
	"github.com/codectx/codectx/providers/models"
	contracts2 "github.com/codectx/codectx/token_management/contracts"
)

// OllamaConfig implements the summary provider against a local ollama
// instance. No API key is needed.
type OllamaConfig struct {
	BaseURL         string
	Model           string
	Client          *http.Client
	TokenManagement contracts2.ITokenManagement
}

// Defaults used when the config leaves endpoint or model empty.
const (
	DefaultBaseURL = "http://localhost:11434/api"
	DefaultModel   = "llama3.1"
)

type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
	Stream   bool             `json:"stream"`
}

type ollamaChatResponse struct {
	Message         models.Message `json:"message"`
	Done            bool           `json:"done"`
	PromptEvalCount int            `json:"prompt_eval_count"`
	EvalCount       int            `json:"eval_count"`
}

// NewOllamaSummaryProvider initializes a provider against a local
// ollama endpoint.
func NewOllamaSummaryProvider(config *OllamaConfig) contracts.ISummaryProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	client := config.Client
	if client == nil {
		client = &http.Client{}
	}
	return &OllamaConfig{
		BaseURL:         baseURL,
		Model:           model,
		Client:          client,
		TokenManagement: config.TokenManagement,
	}
}

func (ollamaProvider *OllamaConfig) Summarize(ctx context.Context, relPath string, content string) (string, error) {
	userInput := fmt.Sprintf("File: %s\n\n%s", relPath, content)
	reqBody := ollamaChatRequest{
		Model: ollamaProvider.Model,
		Messages: []models.Message{
			{Role: "system", Content: string(embed_data.SummarizeSystemPrompt)},
			{Role: "user", Content: userInput},
		},
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat", ollamaProvider.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ollamaProvider.Client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		// A local instance that is down or restarting may come back.
		return "", &models.RequestError{Message: err.Error(), Transient: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.RequestError{Message: err.Error(), Transient: true}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &models.RequestError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Transient:  resp.StatusCode >= 500,
		}
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("error parsing response: %v", err)
	}

	if ollamaProvider.TokenManagement != nil && chatResp.PromptEvalCount > 0 {
		ollamaProvider.TokenManagement.UsedTokens(chatResp.PromptEvalCount, chatResp.EvalCount)
	}
	return chatResp.Message.Content, nil
}
