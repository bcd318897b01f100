// Package salestypes defines session and conversation types for SalesDesk.
// This file contains the types for conversation history entries and the loaded dataset.
package salestypes

import (
	"strings"
	"time"
)

// Role identifies who produced a conversation entry.
type Role string

const (
	// RoleUser marks an entry typed by the customer.
	RoleUser Role = "user"
	// RoleAssistant marks an entry produced by the model.
	RoleAssistant Role = "assistant"
)

// Label returns the capitalized role name used when rendering history into a prompt
// ("User", "Assistant").
func (r Role) Label() string {
	s := string(r)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Message represents a single entry in the conversation history.
// Messages are never modified after creation; order is chronological.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Dataset is the vehicle data loaded once at startup.
// Content is opaque CSV text and is never parsed.
type Dataset struct {
	Path    string
	Content string
}
