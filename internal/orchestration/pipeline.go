// Package orchestration runs the per-turn pipeline: assemble the prompt, call the
// model, clean the reply and record the exchange.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"salesdesk/internal/logger"
	"salesdesk/internal/prompt"
	"salesdesk/internal/session"
	"salesdesk/internal/stringprocessing"
	"salesdesk/pkg/salestypes"
)

var (
	// ErrEmptyQuestion is returned for blank input; nothing is stored.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrTurnInProgress is returned by TryHandleTurn while another turn is running.
	ErrTurnInProgress = errors.New("a response is already being generated")
)

// State is the pipeline's position in the turn cycle.
type State int32

const (
	// StateIdle means the pipeline is waiting for input.
	StateIdle State = iota
	// StateGenerating means one request is in flight.
	StateGenerating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// PipelineConfig wires the collaborators of a Pipeline.
type PipelineConfig struct {
	Assembler     *prompt.Assembler
	Client        salestypes.InferenceClient
	Model         string
	Generation    salestypes.GenerationConfig
	Store         *session.Store
	ContextWindow int
}

// Pipeline handles the turns of one conversation. Turns never overlap: a turn
// holds the pipeline for its whole duration.
type Pipeline struct {
	turnMu sync.Mutex
	state  atomic.Int32

	assembler *prompt.Assembler
	client    salestypes.InferenceClient
	model     string
	genCfg    salestypes.GenerationConfig
	store     *session.Store
	window    int
}

// NewPipeline creates a Pipeline. A nil store gets a fresh store with the default limit.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	store := cfg.Store
	if store == nil {
		store = session.NewStore(session.DefaultLimit)
	}
	return &Pipeline{
		assembler: cfg.Assembler,
		client:    cfg.Client,
		model:     cfg.Model,
		genCfg:    cfg.Generation,
		store:     store,
		window:    cfg.ContextWindow,
	}
}

// Store returns the conversation history owned by this pipeline.
func (p *Pipeline) Store() *session.Store {
	return p.store
}

// State reports whether a turn is in flight.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// HandleTurn runs one turn for question, waiting for any running turn to finish first.
// On failure nothing is added to the history.
func (p *Pipeline) HandleTurn(ctx context.Context, question string) (string, error) {
	p.turnMu.Lock()
	defer p.turnMu.Unlock()
	return p.runTurn(ctx, question)
}

// TryHandleTurn is like HandleTurn but returns ErrTurnInProgress instead of waiting.
func (p *Pipeline) TryHandleTurn(ctx context.Context, question string) (string, error) {
	if !p.turnMu.TryLock() {
		return "", ErrTurnInProgress
	}
	defer p.turnMu.Unlock()
	return p.runTurn(ctx, question)
}

func (p *Pipeline) runTurn(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	p.state.Store(int32(StateGenerating))
	defer p.state.Store(int32(StateIdle))

	recent := p.store.RecentWindow(p.window)
	fullPrompt := p.assembler.Build(question, recent)
	logger.TurnOperation("assembled", "history_entries", len(recent), "prompt_length", len(fullPrompt))

	raw, err := p.client.Generate(ctx, p.model, fullPrompt, p.genCfg)
	if err != nil {
		logger.TurnOperation("failed", "provider", p.client.GetProviderName(), "error", err)
		return "", fmt.Errorf("generation failed: %w", err)
	}

	answer := stringprocessing.SanitizeResponse(raw)
	p.store.Append(question, answer)
	logger.TurnOperation("stored", "raw_length", len(raw), "answer_length", len(answer), "history", p.store.Len())

	return answer, nil
}
