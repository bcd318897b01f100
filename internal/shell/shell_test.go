package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/orchestration"
	"salesdesk/internal/prompt"
	"salesdesk/internal/services"
	"salesdesk/internal/session"
	"salesdesk/internal/testutils"
	"salesdesk/pkg/salestypes"
)

// scriptedReader replays lines, then returns end.
type scriptedReader struct {
	lines   []string
	end     error
	history []string
	closed  bool
}

func (r *scriptedReader) Prompt(_ string) (string, error) {
	if len(r.lines) == 0 {
		return "", r.end
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) {
	r.history = append(r.history, item)
}

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

func newTestShell(t *testing.T, client *testutils.FakeClient, lines ...string) (*Shell, *orchestration.Pipeline, *bytes.Buffer, *scriptedReader) {
	t.Helper()

	pipeline := orchestration.NewPipeline(orchestration.PipelineConfig{
		Assembler:     prompt.NewAssembler(prompt.SystemPrompt, &salestypes.Dataset{Content: testutils.SampleCSV}),
		Client:        client,
		Model:         "test-model",
		Generation:    salestypes.DefaultGenerationConfig(),
		Store:         session.NewStore(session.DefaultLimit),
		ContextWindow: prompt.DefaultContextWindow,
	})

	renderer := services.NewMarkdownService()
	require.NoError(t, renderer.InitializeWithStyle("notty"))

	reader := &scriptedReader{lines: lines, end: io.EOF}
	out := &bytes.Buffer{}
	return New(pipeline, reader, renderer, out), pipeline, out, reader
}

func TestShell_Run_OneTurn(t *testing.T) {
	client := testutils.NewFakeClient("The Long Range trim reaches **488 km**.")
	sh, pipeline, out, reader := newTestShell(t, client, "What is the range?")

	require.NoError(t, sh.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, Title)
	assert.Contains(t, output, "You")
	assert.Contains(t, output, "What is the range?")
	assert.Contains(t, output, "Assistant")
	assert.Contains(t, output, "488 km")
	assert.Contains(t, output, "Goodbye!")

	assert.Equal(t, 2, pipeline.Store().Len())
	assert.Equal(t, []string{"What is the range?"}, reader.history)
}

func TestShell_Run_SkipsBlankLines(t *testing.T) {
	client := testutils.NewFakeClient("hi")
	sh, pipeline, _, _ := newTestShell(t, client, "", "   ")

	require.NoError(t, sh.Run(context.Background()))
	assert.Empty(t, client.Calls())
	assert.Equal(t, 0, pipeline.Store().Len())
}

func TestShell_Run_FailedTurnKeepsGoing(t *testing.T) {
	client := testutils.NewFakeClient("unused")
	client.Err = errors.New("quota exceeded")
	sh, pipeline, out, _ := newTestShell(t, client, "first", "second")

	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "quota exceeded")
	assert.Len(t, client.Calls(), 2)
	assert.Equal(t, 0, pipeline.Store().Len())
}

func TestShell_Commands(t *testing.T) {
	client := testutils.NewFakeClient("Sure thing.")
	sh, pipeline, out, _ := newTestShell(t, client, "Hello", "/history", "/clear", "/history", "/bogus", "/help", "/exit", "never reached")

	require.NoError(t, sh.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Conversation cleared.")
	assert.Contains(t, output, "No messages yet.")
	assert.Contains(t, output, "unknown command /bogus")
	assert.Contains(t, output, "/history  show the conversation so far")
	assert.Len(t, client.Calls(), 1)
	assert.Equal(t, 0, pipeline.Store().Len())
}

func TestShell_Run_PromptAborted(t *testing.T) {
	sh, _, out, reader := newTestShell(t, testutils.NewFakeClient("x"))
	reader.end = liner.ErrPromptAborted

	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestShell_Run_ReadError(t *testing.T) {
	sh, _, _, reader := newTestShell(t, testutils.NewFakeClient("x"))
	reader.end = errors.New("terminal gone")

	err := sh.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal gone")
}

func TestShell_HandleLine_WithoutRenderer(t *testing.T) {
	sh, _, out, _ := newTestShell(t, testutils.NewFakeClient("- plain *reply*"))
	sh.renderer = nil

	sh.HandleLine(context.Background(), "Hi")
	assert.Contains(t, out.String(), "- plain *reply*")
}

func TestRenderStartupError(t *testing.T) {
	var out bytes.Buffer
	RenderStartupError(&out, errors.New("data file not found at: ioniq.csv"))

	assert.Contains(t, out.String(), "Startup failed:")
	assert.Contains(t, out.String(), "data file not found at: ioniq.csv")
}
