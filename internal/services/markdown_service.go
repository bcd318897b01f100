package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"salesdesk/internal/logger"
)

// DefaultWordWrap is the column at which rendered markdown wraps.
const DefaultWordWrap = 80

// MarkdownService renders assistant replies for the terminal using Glamour.
// Terminals without color support get the plain "notty" style.
type MarkdownService struct {
	initialized bool
	wordWrap    int
	style       string
	renderer    *glamour.TermRenderer
}

// NewMarkdownService creates a new MarkdownService instance.
func NewMarkdownService() *MarkdownService {
	return &MarkdownService{wordWrap: DefaultWordWrap}
}

// Initialize creates the renderer, choosing a style from the terminal's color profile.
func (m *MarkdownService) Initialize() error {
	style := "auto"
	if lipgloss.ColorProfile() == termenv.Ascii {
		style = "notty"
	}
	return m.InitializeWithStyle(style)
}

// InitializeWithStyle creates the renderer with an explicit Glamour style
// ("auto", "dark", "light", "notty", "ascii").
func (m *MarkdownService) InitializeWithStyle(style string) error {
	options := []glamour.TermRendererOption{glamour.WithWordWrap(m.wordWrap)}
	if style == "auto" {
		options = append(options, glamour.WithAutoStyle())
	} else {
		options = append(options, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.style = style
	m.initialized = true

	logger.Debug("MarkdownService initialized", "style", style, "word_wrap", m.wordWrap)
	return nil
}

// Style returns the active Glamour style name.
func (m *MarkdownService) Style() string {
	return m.style
}

// Render renders markdown content to terminal output. Blank content renders as an empty string.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return rendered, nil
}
