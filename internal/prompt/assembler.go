// Package prompt builds the single text block sent to the model for each turn.
package prompt

import (
	"strings"

	"salesdesk/pkg/salestypes"
)

const (
	// DatasetHeader introduces the raw dataset text.
	DatasetHeader = "DATASET (CSV):"

	// CustomerLabel prefixes the new question.
	CustomerLabel = "Customer"

	// DefaultContextWindow is how many history entries are included in a prompt.
	DefaultContextWindow = 4
)

// Assembler combines fixed instructions, the dataset and recent history into a prompt.
// It holds only immutable state and is safe to share across sessions.
type Assembler struct {
	instructions string
	dataset      string
}

// NewAssembler creates an Assembler. Surrounding whitespace of systemPrompt is trimmed once here.
func NewAssembler(systemPrompt string, dataset *salestypes.Dataset) *Assembler {
	a := &Assembler{instructions: strings.TrimSpace(systemPrompt)}
	if dataset != nil {
		a.dataset = dataset.Content
	}
	return a
}

// Build returns the prompt for question. Sections are, in order: instructions,
// dataset, rendered recent history (omitted when empty) and the customer line,
// separated by blank lines.
func (a *Assembler) Build(question string, recent []salestypes.Message) string {
	parts := []string{a.instructions, "", DatasetHeader, a.dataset}

	if history := FormatHistory(recent); history != "" {
		parts = append(parts, "", history)
	}

	parts = append(parts, "", CustomerLabel+": "+question)
	return strings.Join(parts, "\n")
}

// FormatHistory renders entries as "<Role>: <text>" lines.
func FormatHistory(entries []salestypes.Message) string {
	lines := make([]string, 0, len(entries))
	for _, msg := range entries {
		lines = append(lines, msg.Role.Label()+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}
