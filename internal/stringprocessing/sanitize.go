package stringprocessing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	codeFence    = "```"
	leadingLabel = "json"
)

// SanitizeResponse cleans raw model output for display: fenced code blocks are
// removed, then a leading "json" label, then surrounding whitespace.
func SanitizeResponse(text string) string {
	return strings.TrimSpace(StripLeadingLabel(StripCodeFences(text)))
}

// StripCodeFences removes every region that starts and ends with a triple backtick,
// delimiters included. Each opening fence pairs with the nearest following fence.
// An opening fence without a partner is kept verbatim.
func StripCodeFences(text string) string {
	var b strings.Builder
	rest := text
	for {
		start := strings.Index(rest, codeFence)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(codeFence):], codeFence)
		if end < 0 {
			break
		}
		b.WriteString(rest[:start])
		rest = rest[start+len(codeFence)+end+len(codeFence):]
	}
	if b.Len() == 0 {
		return rest
	}
	b.WriteString(rest)
	return b.String()
}

// StripLeadingLabel removes a case-insensitive "json" at the very start of text
// together with any whitespace that follows it. Text not starting with the label
// is returned unchanged.
func StripLeadingLabel(text string) string {
	if len(text) < len(leadingLabel) || !strings.EqualFold(text[:len(leadingLabel)], leadingLabel) {
		return text
	}
	rest := text[len(leadingLabel):]
	for len(rest) > 0 {
		r, size := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(r) {
			break
		}
		rest = rest[size:]
	}
	return rest
}
