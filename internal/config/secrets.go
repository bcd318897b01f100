package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"salesdesk/internal/logger"
	"salesdesk/internal/services"
)

// CredentialKeys returns the secret names checked for provider, in order.
func CredentialKeys(provider string) []string {
	switch provider {
	case services.ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	case services.ProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY"}
	default:
		return []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
	}
}

// LoadSecrets decodes the top-level string values of a TOML secrets file.
// A missing file yields an empty map.
func LoadSecrets(path string) (map[string]string, error) {
	secrets := make(map[string]string)
	if path == "" {
		return secrets, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return secrets, nil
	}

	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file %s: %w", path, err)
	}

	for key, value := range raw {
		if s, ok := value.(string); ok {
			secrets[key] = s
		}
	}
	return secrets, nil
}

// ResolveAPIKey finds the credential for provider in the secrets file first,
// then in the environment.
func ResolveAPIKey(provider, secretsFile string) (string, error) {
	secrets, err := LoadSecrets(secretsFile)
	if err != nil {
		return "", err
	}

	keys := CredentialKeys(provider)
	for _, key := range keys {
		if value := strings.TrimSpace(secrets[key]); value != "" {
			logger.Debug("API key found", "provider", provider, "source", "secrets", "name", key)
			return value, nil
		}
	}
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			logger.Debug("API key found", "provider", provider, "source", "env", "name", key)
			return value, nil
		}
	}

	return "", fmt.Errorf("%w: set %s in %s or the environment", ErrMissingCredential, keys[0], secretsFile)
}
