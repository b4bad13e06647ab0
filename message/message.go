package message

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Role represents the role of the message sender
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one turn of a conversation as it is sent to a provider.
// A Message is immutable once constructed; use WithContent to derive a new one.
type Message struct {
	role    Role
	content string
	files   []string
}

// NewMessage creates a message with the given role, content and optional file references.
func NewMessage(role Role, content string, files ...string) Message {
	return Message{
		role:    role,
		content: content,
		files:   slices.Clone(files),
	}
}

// Role returns the sender role.
func (m Message) Role() Role { return m.role }

// Content returns the message text.
func (m Message) Content() string { return m.content }

// Files returns a copy of the attached file references.
func (m Message) Files() []string { return slices.Clone(m.files) }

// WithContent returns a copy of m carrying different content.
func (m Message) WithContent(content string) Message {
	return NewMessage(m.role, content, m.files...)
}

type wireMessage struct {
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Files   []string `json:"files,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMessage{Role: m.role, Content: m.content, Files: m.files})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Role.Valid() {
		return fmt.Errorf("message: unknown role %q", w.Role)
	}
	*m = NewMessage(w.Role, w.Content, w.Files...)
	return nil
}

// Last returns the final message of msgs and false when msgs is empty.
func Last(msgs []Message) (Message, bool) {
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}
