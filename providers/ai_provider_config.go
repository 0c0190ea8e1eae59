package providers

import (
	"fmt"

	"github.com/codectx/codectx/providers/contracts"
	"github.com/codectx/codectx/providers/mistral"
	"github.com/codectx/codectx/providers/ollama"
	general_token_management "github.com/codectx/codectx/token_management/contracts"
)

// AIProviderConfig selects and configures the summary backend.
type AIProviderConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
	ApiKey   string `mapstructure:"api_key"`
}

// SummaryProviderFactory creates the provider named in the config.
// Empty endpoint and model are resolved to the provider's defaults and
// written back, so callers report the values actually in use.
func SummaryProviderFactory(config *AIProviderConfig, tokenManagement general_token_management.ITokenManagement) (contracts.ISummaryProvider, error) {
	switch config.Provider {
	case "mistral", "":
		if config.BaseURL == "" {
			config.BaseURL = mistral.DefaultBaseURL
		}
		if config.Model == "" {
			config.Model = mistral.DefaultModel
		}
		return mistral.NewMistralSummaryProvider(&mistral.MistralConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          config.ApiKey,
			TokenManagement: tokenManagement,
		}), nil
	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = ollama.DefaultBaseURL
		}
		if config.Model == "" {
			config.Model = ollama.DefaultModel
		}
		return ollama.NewOllamaSummaryProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
