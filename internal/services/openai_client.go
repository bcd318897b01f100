package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"salesdesk/internal/logger"
	"salesdesk/pkg/salestypes"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements the InferenceClient interface for OpenAI's API.
type OpenAIClient struct {
	apiKey         string
	client         *openai.Client
	debugTransport http.RoundTripper
	mu             sync.Mutex
}

// NewOpenAIClient creates a new OpenAI client with lazy initialization.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		client: nil, // Will be initialized lazily
	}
}

// GetProviderName returns the provider name for this client.
func (c *OpenAIClient) GetProviderName() string {
	return ProviderOpenAI
}

// IsConfigured returns true if the client has a valid API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *OpenAIClient) SetDebugTransport(transport http.RoundTripper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugTransport = transport
	c.client = nil
}

// initializeClientIfNeeded initializes the OpenAI client if it hasn't been initialized yet.
func (c *OpenAIClient) initializeClientIfNeeded() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	var options []option.RequestOption
	options = append(options, option.WithAPIKey(c.apiKey))

	if c.debugTransport != nil {
		options = append(options, option.WithHTTPClient(&http.Client{Transport: c.debugTransport}))
		logger.Debug("OpenAI client initialized with debug transport", "provider", ProviderOpenAI)
	} else {
		logger.Debug("OpenAI client initialized", "provider", ProviderOpenAI)
	}

	client := openai.NewClient(options...)
	c.client = &client
	return nil
}

// Generate sends the prompt as a single user message and returns the first choice's content.
func (c *OpenAIClient) Generate(ctx context.Context, model string, prompt string, cfg salestypes.GenerationConfig) (string, error) {
	logger.Debug("OpenAI Generate starting", "model", model, "prompt_length", len(prompt))

	if err := c.initializeClientIfNeeded(); err != nil {
		return "", fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(cfg.Temperature),
		TopP:        openai.Float(cfg.TopP),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		logger.Debug("OpenAI response contains no choices")
		return "", nil
	}

	content := completion.Choices[0].Message.Content
	logger.Debug("OpenAI response received", "content_length", len(content))
	return content, nil
}
