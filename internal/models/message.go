// Package models defines the data types shared by the chat client and the
// task list viewer.
package models

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleError marks a failed request surfaced in the transcript.
	RoleError Role = "error"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleError:
		return true
	}
	return false
}

// Message represents one entry in a chat transcript
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user message
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewErrorMessage creates an error message
func NewErrorMessage(content string) Message {
	return Message{Role: RoleError, Content: content}
}
