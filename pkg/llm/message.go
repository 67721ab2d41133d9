// Package llm provides the internal representations of chat completion
// conversations which are sent to, and returned from, the remote LLM service.
package llm

import "fmt"

// Role is the author of a single message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// Conversation is the ordered message log sent as prompt context.
// A conversation always starts with exactly one system message.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation seeded with the given system prompt.
func NewConversation(system string) *Conversation {
	c := &Conversation{}
	c.Reset(system)
	return c
}

// Reset clears the conversation and reseeds it with a new system prompt.
func (c *Conversation) Reset(system string) {
	c.messages = []Message{{Role: RoleSystem, Content: system}}
}

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(role Role, content string) {
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the conversation's messages in order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Validate checks that messages form a well-formed conversation: non-empty,
// led by a system message, and using only known roles.
func Validate(messages []Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("conversation is empty")
	}
	if messages[0].Role != RoleSystem {
		return fmt.Errorf("conversation must start with a system message, got %q", messages[0].Role)
	}
	for i, m := range messages {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d has unknown role %q", i, m.Role)
		}
	}
	return nil
}
