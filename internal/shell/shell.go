// Package shell provides the interactive terminal chat surface for SalesDesk.
// It reads one line per turn, hands it to the conversation pipeline and renders
// the exchange as labelled bubbles.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"salesdesk/internal/logger"
	"salesdesk/internal/orchestration"
	"salesdesk/pkg/salestypes"
)

const (
	// Title is printed when the shell starts.
	Title = "Hyundai IONIQ 5 Sales Assistant"

	// PromptText is shown before each input line.
	PromptText = "Ask about the IONIQ 5… "
)

// LineReader reads one line of user input. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// Renderer turns assistant markdown into terminal output.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Shell is one terminal conversation.
type Shell struct {
	conversation *orchestration.Pipeline
	input        LineReader
	renderer     Renderer
	out          io.Writer
}

// New creates a Shell. A nil renderer prints assistant replies verbatim.
func New(conversation *orchestration.Pipeline, input LineReader, renderer Renderer, out io.Writer) *Shell {
	return &Shell{
		conversation: conversation,
		input:        input,
		renderer:     renderer,
		out:          out,
	}
}

// NewLiner returns a line editor with Ctrl+C aborting the prompt.
func NewLiner() *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// Run prints the banner and handles input until the user leaves or input ends.
func (s *Shell) Run(ctx context.Context) error {
	s.printBanner()

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.input.Prompt(PromptText)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				s.println("")
				s.println(dimStyle.Render("Goodbye!"))
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.input.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			if !s.handleCommand(line) {
				return nil
			}
			continue
		}

		s.HandleLine(ctx, line)
	}
}

// HandleLine runs one turn and renders it. A failed turn prints an error and
// leaves the history untouched.
func (s *Shell) HandleLine(ctx context.Context, line string) {
	s.renderMessage(salestypes.Message{Role: salestypes.RoleUser, Content: line})

	answer, err := s.conversation.HandleTurn(ctx, line)
	if err != nil {
		logger.Error("Turn failed", "error", err)
		s.println(errorStyle.Render("[Error]") + " " + err.Error())
		return
	}

	s.renderMessage(salestypes.Message{Role: salestypes.RoleAssistant, Content: answer})
}

// handleCommand runs a slash command and reports whether the shell should keep running.
func (s *Shell) handleCommand(line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/exit", "/quit":
		s.println(dimStyle.Render("Goodbye!"))
		return false
	case "/history":
		history := s.conversation.Store().All()
		if len(history) == 0 {
			s.println(dimStyle.Render("No messages yet."))
		}
		for _, msg := range history {
			s.renderMessage(msg)
		}
	case "/clear":
		s.conversation.Store().Reset()
		s.println(dimStyle.Render("Conversation cleared."))
	case "/help":
		s.println("/history  show the conversation so far")
		s.println("/clear    start over")
		s.println("/exit     leave")
	default:
		s.println(errorStyle.Render("[Error]") + fmt.Sprintf(" unknown command %s (try /help)", line))
	}
	return true
}

func (s *Shell) printBanner() {
	s.println(titleStyle.Render("🚗 " + Title))
	s.println(dimStyle.Render("Type /help for commands, /exit to quit."))
	s.println("")
}

func (s *Shell) renderMessage(msg salestypes.Message) {
	if msg.Role == salestypes.RoleUser {
		s.println(userLabelStyle.Render("You") + ": " + msg.Content)
		return
	}

	body := msg.Content
	if s.renderer != nil {
		rendered, err := s.renderer.Render(msg.Content)
		if err != nil {
			logger.Debug("Markdown render failed, printing raw reply", "error", err)
		} else {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	s.println(assistantLabelStyle.Render("Assistant") + ":")
	s.println(body)
	s.println("")
}

func (s *Shell) println(text string) {
	_, _ = fmt.Fprintln(s.out, text)
}

// RenderStartupError prints a fatal startup failure in the shell's error style.
func RenderStartupError(out io.Writer, err error) {
	_, _ = fmt.Fprintln(out, errorStyle.Render("Startup failed:")+" "+err.Error())
}
