// Package testutils provides fakes and fixtures shared by SalesDesk tests.
package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"salesdesk/pkg/salestypes"
)

// SampleCSV is a small dataset used across tests.
const SampleCSV = "trim,battery_kwh,range_km,price_usd\nStandard Range,63,354,41650\nLong Range,84,488,45500\n"

// Call records one Generate invocation.
type Call struct {
	Model  string
	Prompt string
	Config salestypes.GenerationConfig
}

// FakeClient is an InferenceClient returning scripted replies.
// When Block is set, Generate waits on it (or on ctx) before answering.
type FakeClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Block     chan struct{}
	Started   chan struct{}
	calls     []Call
}

// NewFakeClient returns a client that answers with responses in order,
// repeating the last one when they run out.
func NewFakeClient(responses ...string) *FakeClient {
	return &FakeClient{Responses: responses}
}

// Generate implements salestypes.InferenceClient.
func (f *FakeClient) Generate(ctx context.Context, model string, prompt string, cfg salestypes.GenerationConfig) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Model: model, Prompt: prompt, Config: cfg})
	index := len(f.calls) - 1
	block, started := f.Block, f.Started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	if index >= len(f.Responses) {
		index = len(f.Responses) - 1
	}
	return f.Responses[index], nil
}

// GetProviderName implements salestypes.InferenceClient.
func (f *FakeClient) GetProviderName() string {
	return "fake"
}

// IsConfigured implements salestypes.InferenceClient.
func (f *FakeClient) IsConfigured() bool {
	return true
}

// Calls returns a copy of the recorded invocations.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// FakeFactory hands out one client and counts requests for it.
type FakeFactory struct {
	mu       sync.Mutex
	Client   salestypes.InferenceClient
	Err      error
	requests int
}

// GetClientForProvider implements salestypes.ClientFactory.
func (f *FakeFactory) GetClientForProvider(provider, apiKey string) (salestypes.InferenceClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Client == nil {
		return nil, fmt.Errorf("no client for provider %s", provider)
	}
	return f.Client, nil
}

// Requests returns how many clients were requested.
func (f *FakeFactory) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// WriteDataset writes SampleCSV into a temporary directory and returns its path.
func WriteDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ioniq.csv")
	if err := os.WriteFile(path, []byte(SampleCSV), 0600); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}
