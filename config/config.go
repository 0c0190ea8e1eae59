package config

import (
	"fmt"
	"time"

	"github.com/codectx/codectx/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file
type Config struct {
	TokenThreshold   int                         `mapstructure:"token_threshold"`
	MaxFileSizeMB    int                         `mapstructure:"max_file_size_mb"`
	Concurrency      int                         `mapstructure:"concurrency"`
	RetryAttempts    int                         `mapstructure:"retry_attempts"`
	TimeoutSeconds   int                         `mapstructure:"timeout_seconds"`
	OutputFile       string                      `mapstructure:"output_file"`
	IgnorePatterns   []string                    `mapstructure:"ignore_patterns"`
	AIProviderConfig *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	TokenThreshold: 200,
	MaxFileSizeMB:  10,
	Concurrency:    5,
	RetryAttempts:  3,
	TimeoutSeconds: 30,
	OutputFile:     "codectx.md",
	AIProviderConfig: &providers.AIProviderConfig{
		Provider: "mistral",
		// BaseURL and Model left empty here pick up the selected
		// provider's own defaults.
		BaseURL: "",
		Model:   "",
		ApiKey:  "",
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		viper.SetConfigName("codectx-config")
		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			// No config file is fine; defaults apply.
			viper.SetConfigType("json")
			_ = viper.ReadInConfig()
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return config, nil
}

// Validate rejects settings that would make a run meaningless. The API
// key is only required when the AI provider will actually be called.
func (c *Config) Validate(needsAPIKey bool) error {
	if c.TokenThreshold < 0 {
		return fmt.Errorf("token_threshold must not be negative")
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max_file_size_mb must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output_file must not be empty")
	}
	if needsAPIKey && c.AIProviderConfig.ApiKey == "" {
		return fmt.Errorf("api key is required (set CODECTX_API_KEY or --api_key)")
	}
	return nil
}

// Timeout returns the per-attempt timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxFileSizeBytes returns the file size cap in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("token_threshold", DefaultConfig.TokenThreshold)
	viper.SetDefault("max_file_size_mb", DefaultConfig.MaxFileSizeMB)
	viper.SetDefault("concurrency", DefaultConfig.Concurrency)
	viper.SetDefault("retry_attempts", DefaultConfig.RetryAttempts)
	viper.SetDefault("timeout_seconds", DefaultConfig.TimeoutSeconds)
	viper.SetDefault("output_file", DefaultConfig.OutputFile)
	viper.SetDefault("ignore_patterns", DefaultConfig.IgnorePatterns)
	viper.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	viper.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	viper.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	viper.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("token_threshold", "CODECTX_TOKEN_THRESHOLD")
	_ = viper.BindEnv("output_file", "CODECTX_OUTPUT_FILE")
	_ = viper.BindEnv("ai_provider_config.provider", "CODECTX_PROVIDER")
	_ = viper.BindEnv("ai_provider_config.base_url", "CODECTX_API_URL")
	_ = viper.BindEnv("ai_provider_config.model", "CODECTX_MODEL")
	_ = viper.BindEnv("ai_provider_config.api_key", "CODECTX_API_KEY")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("token_threshold", rootCmd.PersistentFlags().Lookup("token_threshold"))
	_ = viper.BindPFlag("max_file_size_mb", rootCmd.PersistentFlags().Lookup("max_file_size_mb"))
	_ = viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	_ = viper.BindPFlag("retry_attempts", rootCmd.PersistentFlags().Lookup("retry_attempts"))
	_ = viper.BindPFlag("timeout_seconds", rootCmd.PersistentFlags().Lookup("timeout_seconds"))
	_ = viper.BindPFlag("output_file", rootCmd.PersistentFlags().Lookup("output_file"))
	_ = viper.BindPFlag("ignore_patterns", rootCmd.PersistentFlags().Lookup("ignore_patterns"))
	_ = viper.BindPFlag("ai_provider_config.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("ai_provider_config.base_url", rootCmd.PersistentFlags().Lookup("base_url"))
	_ = viper.BindPFlag("ai_provider_config.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("ai_provider_config.api_key", rootCmd.PersistentFlags().Lookup("api_key"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().Int("token_threshold", DefaultConfig.TokenThreshold, "Files estimated below this token count are embedded verbatim instead of summarized.")
	rootCmd.PersistentFlags().Int("max_file_size_mb", DefaultConfig.MaxFileSizeMB, "Files larger than this are skipped.")
	rootCmd.PersistentFlags().Int("concurrency", DefaultConfig.Concurrency, "Maximum number of files processed in parallel.")
	rootCmd.PersistentFlags().Int("retry_attempts", DefaultConfig.RetryAttempts, "Attempts per file before a transient failure is given up on.")
	rootCmd.PersistentFlags().Int("timeout_seconds", DefaultConfig.TimeoutSeconds, "Timeout for a single processing attempt.")
	rootCmd.PersistentFlags().String("output_file", DefaultConfig.OutputFile, "Name of the generated context document.")
	rootCmd.PersistentFlags().StringSlice("ignore_patterns", nil, "Extra ignore patterns, in addition to defaults and .codectxignore.")

	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider (e.g., 'mistral', 'ollama').")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of the AI provider. Empty picks the provider's default endpoint.")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The name of the model used for summaries. Empty picks the provider's default model.")
	rootCmd.PersistentFlags().String("api_key", DefaultConfig.AIProviderConfig.ApiKey, "The API key used to authenticate with the AI provider.")
}
