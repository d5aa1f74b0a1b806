package mcpsession

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NormalizeResult flattens a call_tool result into the plain text the model
// consumes. Servers return heterogeneous content shapes; the first text
// element wins, anything else is rendered as JSON best-effort.
//
// A result flagged IsError comes back as a Go error so the dispatcher records
// it as an execution failure rather than a successful tool turn.
func NormalizeResult(res *mcp.CallToolResult) (string, error) {
	if res == nil {
		return "", errors.New("empty tool result")
	}

	text := renderContent(res.Content)
	if res.IsError {
		if text == "" {
			text = "tool reported an error without details"
		}
		return "", fmt.Errorf("tool error: %s", text)
	}
	return text, nil
}

func renderContent(content []mcp.Content) string {
	if len(content) == 0 {
		return ""
	}
	if tc, ok := content[0].(mcp.TextContent); ok {
		return tc.Text
	}
	b, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(b)
}
