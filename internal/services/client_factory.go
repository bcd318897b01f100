package services

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"salesdesk/internal/logger"
	"salesdesk/pkg/salestypes"
)

// Supported provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// SupportedProviders lists every provider the factory can build, default first.
func SupportedProviders() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

// IsSupportedProvider reports whether provider names a known provider.
func IsSupportedProvider(provider string) bool {
	for _, p := range SupportedProviders() {
		if p == provider {
			return true
		}
	}
	return false
}

// debuggable is implemented by clients that accept a custom HTTP transport.
type debuggable interface {
	SetDebugTransport(transport http.RoundTripper)
}

// ClientFactoryService implements the ClientFactory interface.
// It manages the creation and caching of inference clients per provider and API key.
type ClientFactoryService struct {
	clients   map[string]salestypes.InferenceClient
	transport http.RoundTripper
	mutex     sync.RWMutex
}

// NewClientFactoryService creates a new ClientFactoryService instance.
func NewClientFactoryService() *ClientFactoryService {
	return &ClientFactoryService{
		clients: make(map[string]salestypes.InferenceClient),
	}
}

// SetTransport makes every client created afterwards send its requests through transport.
func (f *ClientFactoryService) SetTransport(transport http.RoundTripper) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.transport = transport
}

// GetClientForProvider returns an inference client for the specified provider and API key.
func (f *ClientFactoryService) GetClientForProvider(provider, apiKey string) (salestypes.InferenceClient, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty for provider '%s'", provider)
	}

	cacheKey := fmt.Sprintf("%s:%s", provider, apiKey)

	f.mutex.RLock()
	if client, exists := f.clients[cacheKey]; exists {
		f.mutex.RUnlock()
		logger.Debug("Returning cached provider client", "provider", provider)
		return client, nil
	}
	f.mutex.RUnlock()

	f.mutex.Lock()
	defer f.mutex.Unlock()

	// Double-check pattern
	if client, exists := f.clients[cacheKey]; exists {
		return client, nil
	}

	var client salestypes.InferenceClient
	switch provider {
	case ProviderGemini:
		client = NewGeminiClient(apiKey)
	case ProviderOpenAI:
		client = NewOpenAIClient(apiKey)
	case ProviderAnthropic:
		client = NewAnthropicClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider '%s'. Supported providers: %s",
			provider, strings.Join(SupportedProviders(), ", "))
	}

	if f.transport != nil {
		if d, ok := client.(debuggable); ok {
			d.SetDebugTransport(f.transport)
		}
	}

	f.clients[cacheKey] = client

	logger.Debug("Created new provider client", "provider", provider)
	return client, nil
}

// GetCachedClientCount returns the number of cached clients.
func (f *ClientFactoryService) GetCachedClientCount() int {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return len(f.clients)
}

// ClearCache removes all cached clients.
func (f *ClientFactoryService) ClearCache() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.clients = make(map[string]salestypes.InferenceClient)
	logger.Debug("Client cache cleared")
}
