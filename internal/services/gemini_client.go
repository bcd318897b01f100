package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"salesdesk/internal/logger"
	"salesdesk/pkg/salestypes"

	"google.golang.org/genai"
)

// GeminiClient implements the InferenceClient interface for Google Gemini API.
// It provides lazy initialization of the Gemini client and handles
// all Gemini-specific communication logic.
type GeminiClient struct {
	apiKey         string
	client         *genai.Client
	debugTransport http.RoundTripper
	mu             sync.Mutex
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
// The actual Gemini client is created only when the first request is made.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		client: nil, // Will be initialized lazily
	}
}

// GetProviderName returns the provider name for this client.
func (c *GeminiClient) GetProviderName() string {
	return ProviderGemini
}

// IsConfigured returns true if the client has a valid API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *GeminiClient) SetDebugTransport(transport http.RoundTripper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugTransport = transport
	// Clear the existing client to force re-initialization with debug transport
	c.client = nil
}

// initializeClientIfNeeded initializes the Gemini client if it hasn't been initialized yet.
func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("google API key not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	if c.debugTransport != nil {
		clientConfig.HTTPClient = &http.Client{Transport: c.debugTransport}
		logger.Debug("Gemini client initialized with debug transport", "provider", ProviderGemini)
	} else {
		logger.Debug("Gemini client initialized", "provider", ProviderGemini)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c.client = client
	return nil
}

// Generate sends the prompt to Gemini as a single user content and returns the text of the reply.
func (c *GeminiClient) Generate(ctx context.Context, model string, prompt string, cfg salestypes.GenerationConfig) (string, error) {
	logger.Debug("Gemini Generate starting", "model", model, "prompt_length", len(prompt))

	if err := c.initializeClientIfNeeded(ctx); err != nil {
		return "", fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(prompt),
		c.buildGenerationConfig(cfg),
	)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	content := c.extractText(result)
	if content == "" {
		logger.Debug("Gemini response contains no text content")
	}

	logger.Debug("Gemini response received", "content_length", len(content))
	return content, nil
}

// buildGenerationConfig maps the sampling parameters onto a Gemini generation config.
func (c *GeminiClient) buildGenerationConfig(cfg salestypes.GenerationConfig) *genai.GenerateContentConfig {
	temperature := float32(cfg.Temperature)
	topP := float32(cfg.TopP)
	return &genai.GenerateContentConfig{
		Temperature: &temperature,
		TopP:        &topP,
	}
}

// extractText concatenates the non-thought text parts of every candidate.
func (c *GeminiClient) extractText(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}

	var contentBuilder strings.Builder
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" || part.Thought {
				continue
			}
			contentBuilder.WriteString(part.Text)
		}
	}
	return contentBuilder.String()
}
