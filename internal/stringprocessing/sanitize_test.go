package stringprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no fences", input: "plain answer", expected: "plain answer"},
		{name: "inline fence", input: "A ```code``` B", expected: "A  B"},
		{name: "multiline fence", input: "Intro\n```json\n{\"a\":1}\n```\nOutro", expected: "Intro\n\nOutro"},
		{name: "two fences", input: "x```1```y```2```z", expected: "xyz"},
		{name: "nearest closing fence", input: "a```b```c```d", expected: "ac```d"},
		{name: "unmatched fence", input: "keep ```this", expected: "keep ```this"},
		{name: "only fence", input: "``````", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripCodeFences(tt.input))
		})
	}
}

func TestStripLeadingLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "uppercase label", input: "JSON {\"a\":1}", expected: "{\"a\":1}"},
		{name: "lowercase label with newline", input: "json\n\t{}", expected: "{}"},
		{name: "mixed case without space", input: "Json{}", expected: "{}"},
		{name: "label not at start", input: " json {}", expected: " json {}"},
		{name: "label in middle", input: "the json file", expected: "the json file"},
		{name: "too short", input: "js", expected: "js"},
		{name: "label only", input: "json   ", expected: ""},
		{name: "non-breaking space after label", input: "json\u00a0ok", expected: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripLeadingLabel(tt.input))
		})
	}
}

func TestSanitizeResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "fence removed and trimmed", input: "A ```code``` B", expected: "A  B"},
		{name: "leading json label", input: "JSON {\"a\":1}", expected: "{\"a\":1}"},
		{name: "label exposed after fence removal", input: "```x```json  hello  ", expected: "hello"},
		{name: "surrounding whitespace", input: "\n  Hi there!  \n", expected: "Hi there!"},
		{name: "empty output", input: "", expected: ""},
		{name: "markdown kept", input: "- Range: 488 km\n- Price: $45,500", expected: "- Range: 488 km\n- Price: $45,500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeResponse(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, "```")
		})
	}
}

func TestSanitizeResponse_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello! The IONIQ 5 offers up to 488 km of range.",
		"  padded  ",
		"- bullet one\n- bullet two\n\nWould you like to book a test drive?",
		"",
	}

	for _, input := range inputs {
		once := SanitizeResponse(input)
		assert.Equal(t, once, SanitizeResponse(once), "input %q", input)
	}
}
