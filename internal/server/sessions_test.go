package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/orchestration"
	"salesdesk/internal/prompt"
	"salesdesk/internal/session"
	"salesdesk/internal/testutils"
)

type pipelineFactory struct{}

func (pipelineFactory) NewConversation() *orchestration.Pipeline {
	return orchestration.NewPipeline(orchestration.PipelineConfig{
		Assembler: prompt.NewAssembler(prompt.SystemPrompt, nil),
		Client:    testutils.NewFakeClient("ok"),
		Model:     "test-model",
		Store:     session.NewStore(session.DefaultLimit),
	})
}

func TestSessionManager_CreateAndGet(t *testing.T) {
	m := NewSessionManager(pipelineFactory{}, time.Minute)

	id, created := m.Create()
	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, created, got)

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_GetOrCreate(t *testing.T) {
	m := NewSessionManager(pipelineFactory{}, time.Minute)

	id, first := m.GetOrCreate("")
	assert.NotEmpty(t, id)

	sameID, same := m.GetOrCreate(id)
	assert.Equal(t, id, sameID)
	assert.Same(t, first, same)

	newID, _ := m.GetOrCreate("expired-or-forged")
	assert.NotEqual(t, "expired-or-forged", newID)
	assert.Equal(t, 2, m.Len())
}

func TestSessionManager_Sweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewSessionManager(pipelineFactory{}, 30*time.Minute)
	m.now = func() time.Time { return now }

	stale, _ := m.Create()
	now = now.Add(20 * time.Minute)
	fresh, _ := m.Create()
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	_, err := m.Get(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh)
	assert.NoError(t, err)
}

func TestSessionManager_NoTTLKeepsSessions(t *testing.T) {
	m := NewSessionManager(pipelineFactory{}, 0)
	m.Create()
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}
