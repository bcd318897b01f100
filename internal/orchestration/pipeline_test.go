package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/prompt"
	"salesdesk/internal/session"
	"salesdesk/internal/testutils"
	"salesdesk/pkg/salestypes"
)

func newTestPipeline(client salestypes.InferenceClient) *Pipeline {
	return NewPipeline(PipelineConfig{
		Assembler:     prompt.NewAssembler(prompt.SystemPrompt, &salestypes.Dataset{Content: testutils.SampleCSV}),
		Client:        client,
		Model:         "models/gemini-2.0-flash-001",
		Generation:    salestypes.DefaultGenerationConfig(),
		Store:         session.NewStore(session.DefaultLimit),
		ContextWindow: prompt.DefaultContextWindow,
	})
}

func TestPipeline_HandleTurn_EmptyHistory(t *testing.T) {
	client := testutils.NewFakeClient("The Long Range trim reaches 488 km.")
	p := newTestPipeline(client)

	answer, err := p.HandleTurn(context.Background(), "What is the range?")
	require.NoError(t, err)
	assert.Equal(t, "The Long Range trim reaches 488 km.", answer)

	history := p.Store().All()
	require.Len(t, history, 2)
	assert.Equal(t, salestypes.RoleUser, history[0].Role)
	assert.Equal(t, "What is the range?", history[0].Content)
	assert.Equal(t, salestypes.RoleAssistant, history[1].Role)
	assert.Equal(t, answer, history[1].Content)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "models/gemini-2.0-flash-001", calls[0].Model)
	assert.Equal(t, 0.2, calls[0].Config.Temperature)
	assert.Equal(t, 0.1, calls[0].Config.TopP)
	assert.Contains(t, calls[0].Prompt, "DATASET (CSV):\n"+testutils.SampleCSV)
	assert.True(t, strings.HasSuffix(calls[0].Prompt, "\n\nCustomer: What is the range?"))
	assert.NotContains(t, calls[0].Prompt, "User:")
}

func TestPipeline_HandleTurn_SanitizesAnswer(t *testing.T) {
	client := testutils.NewFakeClient("json\n```json\n{\"x\":1}\n```\n  Hello there!  ")
	p := newTestPipeline(client)

	answer, err := p.HandleTurn(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", answer)
	assert.Equal(t, "Hello there!", p.Store().All()[1].Content)
}

func TestPipeline_HandleTurn_UsesLastFourEntries(t *testing.T) {
	client := testutils.NewFakeClient()
	for i := 0; i < 3; i++ {
		client.Responses = append(client.Responses, fmt.Sprintf("a%d", i))
	}
	p := newTestPipeline(client)

	for i := 0; i < 3; i++ {
		_, err := p.HandleTurn(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	calls := client.Calls()
	require.Len(t, calls, 3)

	last := calls[2].Prompt
	assert.Contains(t, last, "\n\nUser: q0\nAssistant: a0\nUser: q1\nAssistant: a1\n\nCustomer: q2")

	second := calls[1].Prompt
	assert.Contains(t, second, "\n\nUser: q0\nAssistant: a0\n\nCustomer: q1")
}

func TestPipeline_HandleTurn_WindowExcludesOlderEntries(t *testing.T) {
	client := testutils.NewFakeClient("a")
	p := newTestPipeline(client)

	for i := 0; i < 4; i++ {
		_, err := p.HandleTurn(context.Background(), fmt.Sprintf("question-%d", i))
		require.NoError(t, err)
	}

	last := client.Calls()[3].Prompt
	assert.NotContains(t, last, "question-0")
	assert.Contains(t, last, "User: question-1")
	assert.Contains(t, last, "User: question-2")
}

func TestPipeline_HandleTurn_RemoteFailureStoresNothing(t *testing.T) {
	client := testutils.NewFakeClient("first answer")
	p := newTestPipeline(client)

	_, err := p.HandleTurn(context.Background(), "first")
	require.NoError(t, err)

	upstream := errors.New("503 service unavailable")
	client.Err = upstream

	answer, err := p.HandleTurn(context.Background(), "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, answer)
	assert.Equal(t, 2, p.Store().Len())
	assert.Equal(t, StateIdle, p.State())
}

func TestPipeline_HandleTurn_EmptyOutputStored(t *testing.T) {
	p := newTestPipeline(testutils.NewFakeClient(""))

	answer, err := p.HandleTurn(context.Background(), "Hello?")
	require.NoError(t, err)
	assert.Equal(t, "", answer)

	history := p.Store().All()
	require.Len(t, history, 2)
	assert.Equal(t, "", history[1].Content)
}

func TestPipeline_HandleTurn_EmptyQuestion(t *testing.T) {
	client := testutils.NewFakeClient("never")
	p := newTestPipeline(client)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := p.HandleTurn(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}
	assert.Empty(t, client.Calls())
	assert.Equal(t, 0, p.Store().Len())
}

func TestPipeline_HistoryBoundedAcrossTurns(t *testing.T) {
	p := newTestPipeline(testutils.NewFakeClient("ok"))

	for i := 0; i < 30; i++ {
		_, err := p.HandleTurn(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
		assert.LessOrEqual(t, p.Store().Len(), session.DefaultLimit)
	}

	history := p.Store().All()
	require.Len(t, history, session.DefaultLimit)
	assert.Equal(t, "q10", history[0].Content)
	assert.Equal(t, "q29", history[len(history)-2].Content)
}

func TestPipeline_TryHandleTurn_RejectsConcurrentTurn(t *testing.T) {
	client := testutils.NewFakeClient("done")
	client.Block = make(chan struct{})
	client.Started = make(chan struct{}, 1)
	p := newTestPipeline(client)

	type result struct {
		answer string
		err    error
	}
	first := make(chan result, 1)
	go func() {
		answer, err := p.TryHandleTurn(context.Background(), "first")
		first <- result{answer, err}
	}()

	select {
	case <-client.Started:
	case <-time.After(2 * time.Second):
		t.Fatal("first turn did not start")
	}
	assert.Equal(t, StateGenerating, p.State())

	_, err := p.TryHandleTurn(context.Background(), "second")
	assert.ErrorIs(t, err, ErrTurnInProgress)

	close(client.Block)
	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, "done", res.answer)
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, 2, p.Store().Len())
}

func TestPipeline_HandleTurn_ContextCancelled(t *testing.T) {
	client := testutils.NewFakeClient("late")
	client.Block = make(chan struct{})
	p := newTestPipeline(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.HandleTurn(ctx, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.Store().Len())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "generating", StateGenerating.String())
	assert.Equal(t, "state(7)", State(7).String())
}
