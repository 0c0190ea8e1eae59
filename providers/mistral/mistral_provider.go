package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/codectx/codectx/embed_data"
	"github.com/codectx/codectx/providers/contracts"
	"github.com/codectx/codectx/providers/models"
	contracts2 "github.com/codectx/codectx/token_management/contracts"
)

// MistralConfig implements the summary provider against a
// Mistral-compatible chat completion API.
type MistralConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	Client          *http.Client
	TokenManagement contracts2.ITokenManagement
}

// Defaults used when the config leaves endpoint or model empty.
const (
	DefaultBaseURL = "https://codestral.mistral.ai/v1"
	DefaultModel   = "codestral-latest"
)

// NewMistralSummaryProvider initializes a provider, filling in the
// default endpoint and model where the config leaves them empty.
func NewMistralSummaryProvider(config *MistralConfig) contracts.ISummaryProvider {
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
	return &MistralConfig{
		BaseURL:         baseURL,
		Model:           model,
		ApiKey:          config.ApiKey,
		Client:          client,
		TokenManagement: config.TokenManagement,
	}
}

func (mistralProvider *MistralConfig) Summarize(ctx context.Context, relPath string, content string) (string, error) {
	userInput := fmt.Sprintf("File: %s\n\n%s", relPath, content)
	reqBody := models.ChatCompletionRequest{
		Model: mistralProvider.Model,
		Messages: []models.Message{
			{Role: "system", Content: string(embed_data.SummarizeSystemPrompt)},
			{Role: "user", Content: userInput},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", mistralProvider.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", mistralProvider.ApiKey))

	resp, err := mistralProvider.Client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		// Transport failures and timeouts are transient.
		return "", &models.RequestError{Message: err.Error(), Transient: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.RequestError{Message: err.Error(), Transient: true}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp, body)
	}

	var completion models.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("error parsing response: %v", err)
	}
	if len(completion.Choices) == 0 {
		return "", &models.RequestError{Message: "response contained no choices", Transient: false}
	}

	if mistralProvider.TokenManagement != nil {
		mistralProvider.TokenManagement.UsedTokens(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}
	return completion.Choices[0].Message.Content, nil
}

func classifyStatus(resp *http.Response, body []byte) error {
	message := apiErrorMessage(body)

	reqErr := &models.RequestError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		reqErr.Transient = true
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			reqErr.Hint = time.Duration(secs) * time.Second
		}
	case resp.StatusCode >= 500:
		reqErr.Transient = true
	}
	return reqErr
}

func apiErrorMessage(body []byte) string {
	var apiError models.AIError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error.Message != "" {
		return apiError.Error.Message
	}
	if len(body) > 0 {
		return string(body)
	}
	return "no error detail"
}
