// Package session holds the per-session conversation history.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdesk/pkg/salestypes"
)

// DefaultLimit is the number of retained entries (20 question/answer exchanges).
const DefaultLimit = 40

// Store is an ordered, append-only conversation history bounded to the most
// recent limit entries. Entries are added in user/assistant pairs.
type Store struct {
	mu       sync.RWMutex
	limit    int
	messages []salestypes.Message
	now      func() time.Time
}

// NewStore creates an empty Store. A non-positive limit falls back to DefaultLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:    limit,
		messages: make([]salestypes.Message, 0, limit+2),
		now:      time.Now,
	}
}

// Limit returns the maximum number of retained entries.
func (s *Store) Limit() int {
	return s.limit
}

// Append adds the question as a user entry followed by the answer as an assistant
// entry, then drops the oldest entries beyond the limit.
func (s *Store) Append(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	s.messages = append(s.messages,
		salestypes.Message{ID: uuid.New().String(), Role: salestypes.RoleUser, Content: question, Timestamp: ts},
		salestypes.Message{ID: uuid.New().String(), Role: salestypes.RoleAssistant, Content: answer, Timestamp: ts},
	)

	if overflow := len(s.messages) - s.limit; overflow > 0 {
		kept := make([]salestypes.Message, s.limit, s.limit+2)
		copy(kept, s.messages[overflow:])
		s.messages = kept
	}
}

// RecentWindow returns a copy of the last n entries, or all of them when fewer exist.
func (s *Store) RecentWindow(n int) []salestypes.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []salestypes.Message{}
	}
	start := len(s.messages) - n
	if start < 0 {
		start = 0
	}
	return cloneMessages(s.messages[start:])
}

// All returns a copy of every retained entry in chronological order.
func (s *Store) All() []salestypes.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.messages)
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Reset drops every entry.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make([]salestypes.Message, 0, s.limit+2)
}

func cloneMessages(src []salestypes.Message) []salestypes.Message {
	out := make([]salestypes.Message, len(src))
	copy(out, src)
	return out
}
