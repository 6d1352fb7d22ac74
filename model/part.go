package model

// Conversation roles accepted by chat models. RoleTool marks content that
// carries function responses back to the model.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Part represents a polymorphic segment of role-based chat content. Concrete
// part types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FunctionCall describes a tool/function invocation requested by the model.
type FunctionCall struct {
	ID        string // Provider-assigned call id, echoed back in the response
	Name      string // Tool / function name
	Arguments string // Serialized argument payload (JSON)
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string // Matches originating FunctionCall ID
	Name     string // Function name
	Response any    // Successful result (any JSON-serializable shape)
	Error    string // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// Content holds role + ordered parts.
type Content struct {
	Role  string // RoleUser or RoleAssistant
	Parts []Part // Ordered heterogeneous parts
}

// NewUserContent builds a user turn holding a single text part.
func NewUserContent(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantContent builds an assistant turn holding a single text part.
func NewAssistantContent(text string) Content {
	return Content{Role: RoleAssistant, Parts: []Part{TextPart{Text: text}}}
}

// NewToolContent builds a tool turn carrying function responses back to the
// model.
func NewToolContent(responses ...FunctionResponse) Content {
	parts := make([]Part, 0, len(responses))
	for _, fr := range responses {
		parts = append(parts, FunctionResponsePart{FunctionResponse: fr})
	}

	return Content{Role: RoleTool, Parts: parts}
}

// Text concatenates the content's text parts in order.
func (c Content) Text() string {
	var out string
	for _, part := range c.Parts {
		if tp, ok := part.(TextPart); ok {
			out += tp.Text
		}
	}

	return out
}

// FunctionCalls extracts the function calls requested by this content, in
// order. Empty when the model produced a plain reply.
func (c Content) FunctionCalls() []FunctionCall {
	var calls []FunctionCall

	for _, part := range c.Parts {
		if fc, ok := part.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}

	return calls
}
