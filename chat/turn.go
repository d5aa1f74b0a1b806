package chat

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRequest is a single tool invocation requested by the model.
// Consumed exactly once by the dispatcher.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolDescriptor describes one advertised tool. Immutable once registered.
// InputSchema holds the raw JSON Schema object supplied by the owning provider.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Turn is one transcript entry.
//
// Field usage by role:
//   - user: Text
//   - assistant: Text (may be empty) and ToolCalls (may be empty)
//   - tool: RequestID, Text (rendered outcome) and IsError
type Turn struct {
	Role      Role
	Text      string
	ToolCalls []ToolCallRequest
	RequestID string
	IsError   bool
}

// UserTurn builds a user turn from query text.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// ToolTurn builds a tool turn answering the request with the given ID.
func ToolTurn(requestID, content string, isError bool) Turn {
	return Turn{Role: RoleTool, RequestID: requestID, Text: content, IsError: isError}
}

// HasToolCalls reports whether the turn carries at least one tool-call request.
func (t Turn) HasToolCalls() bool {
	return t.Role == RoleAssistant && len(t.ToolCalls) > 0
}
