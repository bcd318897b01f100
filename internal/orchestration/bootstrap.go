package orchestration

import (
	"fmt"

	"salesdesk/internal/config"
	"salesdesk/internal/dataset"
	"salesdesk/internal/logger"
	"salesdesk/internal/prompt"
	"salesdesk/internal/session"
	"salesdesk/pkg/salestypes"
)

// Assistant holds the process-wide, read-only state shared by every conversation.
type Assistant struct {
	cfg       *config.Config
	dataset   *salestypes.Dataset
	assembler *prompt.Assembler
	client    salestypes.InferenceClient
}

// Bootstrap prepares an Assistant: it checks the credential, loads the dataset and
// obtains the provider client, in that order. It fails before any client exists if
// either of the first two steps fails.
func Bootstrap(cfg *config.Config, factory salestypes.ClientFactory) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %s", config.ErrMissingCredential, cfg.Provider)
	}

	ds, err := dataset.Load(cfg.DataFilePath)
	if err != nil {
		return nil, err
	}

	client, err := factory.GetClientForProvider(cfg.Provider, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	logger.Info("Assistant ready", "provider", cfg.Provider, "model", cfg.Model, "dataset", ds.Path)
	return &Assistant{
		cfg:       cfg,
		dataset:   ds,
		assembler: prompt.NewAssembler(prompt.SystemPrompt, ds),
		client:    client,
	}, nil
}

// Dataset returns the loaded dataset.
func (a *Assistant) Dataset() *salestypes.Dataset {
	return a.dataset
}

// Config returns the configuration the assistant was built from.
func (a *Assistant) Config() *config.Config {
	return a.cfg
}

// NewConversation returns a pipeline with an empty history for one session.
func (a *Assistant) NewConversation() *Pipeline {
	return NewPipeline(PipelineConfig{
		Assembler:     a.assembler,
		Client:        a.client,
		Model:         a.cfg.Model,
		Generation:    a.cfg.GenerationConfig(),
		Store:         session.NewStore(a.cfg.HistoryLimit),
		ContextWindow: a.cfg.ContextWindow,
	})
}
