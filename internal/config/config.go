// Package config loads SalesDesk settings from flags, environment, .env files,
// an optional config file and a TOML secrets store.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"salesdesk/internal/logger"
	"salesdesk/internal/services"
	"salesdesk/pkg/salestypes"
)

// Configuration keys shared with the CLI flag bindings.
const (
	KeyConfigFile      = "config_file"
	KeyEnvFile         = "env_file"
	KeyProvider        = "provider"
	KeyModel           = "model"
	KeyDataFilePath    = "data_file_path"
	KeyTemperature     = "temperature"
	KeyTopP            = "top_p"
	KeyMaxOutputTokens = "max_output_tokens"
	KeyHistoryLimit    = "history_limit"
	KeyContextWindow   = "context_window"
	KeyListenAddr      = "listen_addr"
	KeySessionTTL      = "session_ttl"
	KeyRateLimitRPS    = "rate_limit_rps"
	KeyRateLimitBurst  = "rate_limit_burst"
	KeySecretsFile     = "secrets_file"
)

// Defaults.
const (
	DefaultModel        = "models/gemini-2.0-flash-001"
	DefaultDataFilePath = "ioniq.csv"
	DefaultSecretsFile  = ".streamlit/secrets.toml"
	DefaultListenAddr   = ":8501"
	DefaultSessionTTL   = 30 * time.Minute
)

var (
	// ErrMissingCredential is returned when no API key is found for the provider.
	ErrMissingCredential = errors.New("API credential not configured")

	// ErrInvalidConfig is returned when a setting has an unusable value.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds every setting needed to run a chat surface.
type Config struct {
	Provider        string
	Model           string
	DataFilePath    string
	APIKey          string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	HistoryLimit    int
	ContextWindow   int
	ListenAddr      string
	SessionTTL      time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	SecretsFile     string
}

// GenerationConfig returns the sampling parameters for every request.
func (c *Config) GenerationConfig() salestypes.GenerationConfig {
	return salestypes.GenerationConfig{
		Temperature:     c.Temperature,
		TopP:            c.TopP,
		MaxOutputTokens: c.MaxOutputTokens,
	}
}

// SetDefaults registers defaults and environment variable names on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEnvFile, ".env")
	v.SetDefault(KeyProvider, services.ProviderGemini)
	v.SetDefault(KeyDataFilePath, DefaultDataFilePath)
	v.SetDefault(KeyTemperature, salestypes.DefaultTemperature)
	v.SetDefault(KeyTopP, salestypes.DefaultTopP)
	v.SetDefault(KeyMaxOutputTokens, salestypes.DefaultMaxOutputTokens)
	v.SetDefault(KeyHistoryLimit, 40)
	v.SetDefault(KeyContextWindow, 4)
	v.SetDefault(KeyListenAddr, DefaultListenAddr)
	v.SetDefault(KeySessionTTL, DefaultSessionTTL)
	v.SetDefault(KeyRateLimitRPS, 1.0)
	v.SetDefault(KeyRateLimitBurst, 5)
	v.SetDefault(KeySecretsFile, DefaultSecretsFile)

	// The model and data path use unprefixed variable names.
	_ = v.BindEnv(KeyModel, "GENAI_MODEL")
	_ = v.BindEnv(KeyDataFilePath, "DATA_FILE_PATH")

	v.SetEnvPrefix("SALESDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load resolves the configuration held by v. Priority (highest to lowest):
// flags bound to v > environment > .env file > config file > defaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	if err := LoadDotEnv(v.GetString(KeyEnvFile)); err != nil {
		return nil, err
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider:        strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider))),
		Model:           strings.TrimSpace(v.GetString(KeyModel)),
		DataFilePath:    v.GetString(KeyDataFilePath),
		Temperature:     v.GetFloat64(KeyTemperature),
		TopP:            v.GetFloat64(KeyTopP),
		MaxOutputTokens: v.GetInt(KeyMaxOutputTokens),
		HistoryLimit:    v.GetInt(KeyHistoryLimit),
		ContextWindow:   v.GetInt(KeyContextWindow),
		ListenAddr:      v.GetString(KeyListenAddr),
		SessionTTL:      v.GetDuration(KeySessionTTL),
		RateLimitRPS:    v.GetFloat64(KeyRateLimitRPS),
		RateLimitBurst:  v.GetInt(KeyRateLimitBurst),
		SecretsFile:     v.GetString(KeySecretsFile),
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModelForProvider(cfg.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiKey, err := ResolveAPIKey(cfg.Provider, cfg.SecretsFile)
	if err != nil {
		return nil, err
	}
	cfg.APIKey = apiKey

	logger.Debug("Configuration loaded", "provider", cfg.Provider, "model", cfg.Model, "data_file", cfg.DataFilePath)
	return cfg, nil
}

// Validate checks that every setting is usable. It does not check the credential.
func (c *Config) Validate() error {
	if !services.IsSupportedProvider(c.Provider) {
		return fmt.Errorf("%w: unsupported provider %q (supported: %s)",
			ErrInvalidConfig, c.Provider, strings.Join(services.SupportedProviders(), ", "))
	}
	if c.DataFilePath == "" {
		return fmt.Errorf("%w: data file path is empty", ErrInvalidConfig)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("%w: history limit must be positive, got %d", ErrInvalidConfig, c.HistoryLimit)
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("%w: context window must not be negative, got %d", ErrInvalidConfig, c.ContextWindow)
	}
	if c.Temperature < 0 || c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("%w: temperature %.2f / top_p %.2f out of range", ErrInvalidConfig, c.Temperature, c.TopP)
	}
	return nil
}

// DefaultModelForProvider returns the model used when none is configured.
func DefaultModelForProvider(provider string) string {
	switch provider {
	case services.ProviderOpenAI:
		return "gpt-4o-mini"
	case services.ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return DefaultModel
	}
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env file %s: %w", path, err)
	}
	logger.Debug("Loaded .env file", "path", path)
	return nil
}

func readConfigFile(v *viper.Viper) error {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("salesdesk")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	logger.Debug("Config file loaded", "path", v.ConfigFileUsed())
	return nil
}
