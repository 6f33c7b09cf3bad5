// Package models defines the conversation data structures shared by the
// pipeline, the store, and both front ends.
package models

import (
	"encoding/json"
	"fmt"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message. Immutable once created.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Entry pairs a raw message with its display-safe annotated text.
//
// On the wire and on disk an Entry is the 2-element JSON array
// [message, annotated], the shape the persisted conversation file uses.
type Entry struct {
	Message   Message
	Annotated string
}

// MarshalJSON encodes the entry as the [message, annotated] tuple.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Message, e.Annotated})
}

// UnmarshalJSON decodes the [message, annotated] tuple form. Arrays of
// any other arity are rejected.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("conversation entry: %w", err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("conversation entry: expected 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &e.Message); err != nil {
		return fmt.Errorf("conversation entry message: %w", err)
	}
	if err := json.Unmarshal(parts[1], &e.Annotated); err != nil {
		return fmt.Errorf("conversation entry annotation: %w", err)
	}
	return nil
}

// Conversation is an ordered, append-only sequence of entries. Insertion
// order is chronological order.
type Conversation []Entry

// Messages projects the raw message history, in order, for the
// completion request.
func (c Conversation) Messages() []Message {
	msgs := make([]Message, len(c))
	for i, e := range c {
		msgs[i] = e.Message
	}
	return msgs
}

// AppendTurn records one completed turn: the sanitized user message
// followed by the assistant reply with its annotated text.
func (c *Conversation) AppendTurn(sanitizedUser string, assistant Message, annotated string) {
	*c = append(*c,
		Entry{Message: Message{Role: RoleUser, Content: sanitizedUser}, Annotated: sanitizedUser},
		Entry{Message: assistant, Annotated: annotated},
	)
}
