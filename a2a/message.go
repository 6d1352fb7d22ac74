package a2a

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Conversation roles carried by protocol messages.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Message is one conversational turn exchanged between a client and an agent.
type Message struct {
	MessageID string         `json:"messageId"`           // Unique id for this message
	Role      string         `json:"role"`                // RoleUser or RoleAgent
	Parts     Parts          `json:"parts"`               // Ordered content parts
	ContextID string         `json:"contextId,omitempty"` // Conversation thread id
	TaskID    string         `json:"taskId,omitempty"`    // Task this message belongs to
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON adds the "message" kind discriminator.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message

	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{Kind: KindMessage, alias: alias(m)})
}

// Text concatenates the message's text parts, newline separated. Non-text
// parts are skipped. This is the server-side "user input" of a request.
func (m Message) Text() string {
	return m.Parts.Text()
}

// NewUserTextMessage builds a user-role message holding a single text part.
// An empty contextID leaves the thread assignment to the receiving agent.
func NewUserTextMessage(text, contextID string) Message {
	return Message{
		MessageID: uuid.NewString(),
		Role:      RoleUser,
		Parts:     Parts{TextPart{Text: text}},
		ContextID: contextID,
	}
}

// NewAgentTextMessage builds an agent-role message holding a single text
// part, bound to the given conversation context and task.
func NewAgentTextMessage(text, contextID, taskID string) Message {
	return Message{
		MessageID: uuid.NewString(),
		Role:      RoleAgent,
		Parts:     Parts{TextPart{Text: text}},
		ContextID: contextID,
		TaskID:    taskID,
	}
}
