// Package salestypes defines LLM-related types and interfaces for SalesDesk.
// This file contains the generation parameters and the provider client abstraction.
package salestypes

import "context"

// Default sampling parameters. Low values keep sales answers consistent between turns.
const (
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.1
	DefaultMaxOutputTokens = 1024
)

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature float64
	TopP        float64

	// MaxOutputTokens is only sent to providers that require an explicit limit.
	MaxOutputTokens int
}

// DefaultGenerationConfig returns the fixed parameters used for every turn.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// InferenceClient defines the interface for LLM provider implementations.
// An implementation performs one synchronous generation request per call.
type InferenceClient interface {
	// Generate sends prompt to the given model and returns the raw text output.
	// A response without text yields an empty string and a nil error.
	Generate(ctx context.Context, model string, prompt string, cfg GenerationConfig) (string, error)

	// GetProviderName returns the name of the LLM provider (e.g., "gemini", "openai").
	GetProviderName() string

	// IsConfigured returns true if the client has valid configuration and can make requests.
	IsConfigured() bool
}

// ClientFactory manages the creation and caching of inference clients.
type ClientFactory interface {
	// GetClientForProvider returns a client for the given provider and API key,
	// creating it on first use.
	GetClientForProvider(provider, apiKey string) (InferenceClient, error)
}
