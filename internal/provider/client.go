// Package provider holds the model-inference client for the Anthropic
// Messages API. The SDK types stay inside this package: the orchestrator
// exchanges domain turns only.
package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Mithul-Joseph/mcp-project/chat"
)

const defaultMaxTokens = int64(1024)

// Client implements the orchestrator's ModelClient over the Messages API.
type Client struct {
	api       *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewClient(api *anthropic.Client, model anthropic.Model) *Client {
	return &Client{api: api, model: model, maxTokens: defaultMaxTokens}
}

// Chat sends the transcript (plus the tool catalog, when non-empty) and
// decodes the response into one assistant turn. An empty catalog omits the
// tools parameter entirely so the model never sees an empty tool list.
func (c *Client) Chat(ctx context.Context, transcript []chat.Turn, catalog []chat.ToolDescriptor) (chat.Turn, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  toMessages(transcript),
	}
	if len(catalog) > 0 {
		params.Tools = toTools(catalog)
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return chat.Turn{}, err
	}
	return fromMessage(msg), nil
}

// toMessages converts domain turns to Messages API messages. Consecutive tool
// turns collapse into a single user message of tool_result blocks, since the
// API expects every tool_use of an assistant message answered in the one user
// message that follows it.
func toMessages(transcript []chat.Turn) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(transcript))
	for i := 0; i < len(transcript); i++ {
		t := transcript[i]
		switch t.Role {
		case chat.RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))

		case chat.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if t.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(t.Text))
			}
			for _, call := range t.ToolCalls {
				tu := anthropic.ToolUseBlockParam{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: call.Arguments,
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &tu})
			}
			if len(blocks) > 0 {
				msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))
			}

		case chat.RoleTool:
			results := []anthropic.ContentBlockParamUnion{
				anthropic.NewToolResultBlock(t.RequestID, t.Text, t.IsError),
			}
			for i+1 < len(transcript) && transcript[i+1].Role == chat.RoleTool {
				i++
				n := transcript[i]
				results = append(results, anthropic.NewToolResultBlock(n.RequestID, n.Text, n.IsError))
			}
			msgs = append(msgs, anthropic.NewUserMessage(results...))
		}
	}
	return msgs
}

func toTools(catalog []chat.ToolDescriptor) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: toInputSchema(d.InputSchema),
		}})
	}
	return out
}

// toInputSchema lifts the provider-supplied JSON Schema object into the SDK
// param. The schema arrives ready-made from the MCP server; only properties
// and required carry over, the type is always "object".
func toInputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	var p anthropic.ToolInputSchemaParam
	if schema == nil {
		return p
	}
	if props, ok := schema["properties"]; ok {
		p.Properties = props
	}
	switch req := schema["required"].(type) {
	case []string:
		p.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				p.Required = append(p.Required, s)
			}
		}
	}
	return p
}

// fromMessage decodes the response content blocks into one assistant turn.
// A tool_use whose input fails to parse yields nil Arguments; the dispatcher
// treats that as a malformed request and skips it.
func fromMessage(msg *anthropic.Message) chat.Turn {
	turn := chat.Turn{Role: chat.RoleAssistant}
	var texts []string
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				texts = append(texts, v.Text)
			}
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			raw := v.JSON.Input.Raw()
			if raw == "" || json.Unmarshal([]byte(raw), &args) != nil {
				args = nil
			}
			turn.ToolCalls = append(turn.ToolCalls, chat.ToolCallRequest{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: args,
			})
		}
	}
	turn.Text = strings.Join(texts, "\n")
	return turn
}
